package activity

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/agora/core"
	"github.com/trezcool/agora/core/category"
	"github.com/trezcool/agora/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("activity not found")

	errLoginRequired  = "authentication required"
	errInvalidCat     = "invalid category"
	errInvalidAction  = "action must be one of: inscrit, desinscrit"
	actionErrFieldKey = "action"
)

type (
	// UpcomingFilter restricts the repository query to upcoming activities
	// matching the viewer's selection. Zero fields are ignored.
	UpcomingFilter struct {
		Now        time.Time // activities starting before this instant are excluded
		CategoryID string
		ProposerID string
		AttendeeID string
	}

	Repository interface {
		CreateActivity(ctx context.Context, act Activity) (Activity, error)
		GetActivity(ctx context.Context, id string) (Activity, error)
		// QueryUpcomingActivities applies AND on set UpcomingFilter fields;
		// results are ordered ascending by start time.
		QueryUpcomingActivities(ctx context.Context, filter UpcomingFilter) ([]Activity, error)
		// AddAttendee and RemoveAttendee are idempotent set operations;
		// adding a present member or removing an absent one is a no-op.
		AddAttendee(ctx context.Context, activityID, userID string) error
		RemoveAttendee(ctx context.Context, activityID, userID string) error
		QueryAttendees(ctx context.Context, activityID string) ([]user.User, error)
		IsAttending(ctx context.Context, activityID, userID string) (bool, error)
	}

	// Detail is the full detail-view payload for an Activity.
	Detail struct {
		Activity
		Proposer    user.User          `json:"proposer"`
		Category    *category.Category `json:"category,omitempty"`
		Attendees   []user.User        `json:"attendees"`
		AirQuality  string             `json:"air_quality"`
		IsAttending bool               `json:"is_attending"`
	}

	Service interface {
		// Upcoming returns the page of upcoming activities visible to the
		// viewer; the zero viewer is anonymous. Read-only, never errors on
		// bad filter input.
		Upcoming(ctx context.Context, viewer user.User, qf QueryFilter) (Page, error)
		Create(ctx context.Context, actor user.User, na NewActivity) (Activity, error)
		Detail(ctx context.Context, viewer user.User, id string) (Detail, error)
		// Register applies an enroll/withdraw action for the actor and
		// returns the re-read detail view.
		Register(ctx context.Context, actor user.User, activityID, action string) (Detail, error)
	}

	service struct {
		repo    Repository
		usrRepo user.Repository
		catRepo category.Repository
		aqSvc   core.AirQualityService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrRepo user.Repository, catRepo category.Repository, aqSvc core.AirQualityService) Service {
	return &service{
		repo:    repo,
		usrRepo: usrRepo,
		catRepo: catRepo,
		aqSvc:   aqSvc,
	}
}

func (svc *service) Upcoming(ctx context.Context, viewer user.User, qf QueryFilter) (Page, error) {
	qf.Clean()

	filter := UpcomingFilter{
		Now:        NowFunc().UTC(),
		CategoryID: qf.CategoryID,
	}
	// personal view modes silently fall back to `all` for anonymous viewers
	if !viewer.IsAnonymous() {
		switch qf.View {
		case ViewMine:
			filter.ProposerID = viewer.ID
		case ViewAttending:
			filter.AttendeeID = viewer.ID
		}
	}

	acts, err := svc.repo.QueryUpcomingActivities(ctx, filter)
	if err != nil {
		return Page{}, errors.Wrap(err, "querying upcoming activities")
	}
	return paginate(acts, qf.Page), nil
}

// paginate slices acts into fixed-size pages and clamps out-of-range page
// numbers to the nearest valid page.
func paginate(acts []Activity, page int) Page {
	total := len(acts)
	pageCount := (total + PageSize - 1) / PageSize
	if pageCount < 1 {
		pageCount = 1
	}
	if page < 1 {
		page = 1
	} else if page > pageCount {
		page = pageCount
	}

	lo := (page - 1) * PageSize
	hi := lo + PageSize
	if lo > total {
		lo = total
	}
	if hi > total {
		hi = total
	}
	return Page{
		Items:     acts[lo:hi],
		Page:      page,
		PageCount: pageCount,
		Total:     total,
	}
}

func (svc *service) Create(ctx context.Context, actor user.User, na NewActivity) (Activity, error) {
	if actor.IsAnonymous() {
		return Activity{}, core.NewAccessDeniedError(errLoginRequired)
	}
	if err := na.Validate(); err != nil {
		return Activity{}, err
	}
	if na.CategoryID != "" {
		if _, err := svc.catRepo.GetCategory(ctx, na.CategoryID); err != nil {
			if errors.Cause(err) == category.ErrNotFound {
				return Activity{}, core.NewValidationError(nil, core.FieldError{Field: "category", Error: errInvalidCat})
			}
			return Activity{}, errors.Wrap(err, "checking category")
		}
	}

	now := time.Now().UTC()
	act := Activity{
		Title:       na.Title,
		Description: na.Description,
		City:        na.City,
		StartTime:   na.StartTime.UTC(),
		EndTime:     na.EndTime.UTC(),
		ProposerID:  actor.ID,
		CategoryID:  na.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	act, err := svc.repo.CreateActivity(ctx, act)
	return act, errors.Wrap(err, "creating activity")
}

func (svc *service) Detail(ctx context.Context, viewer user.User, id string) (Detail, error) {
	act, err := svc.repo.GetActivity(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	detail := Detail{Activity: act}

	detail.Proposer, err = svc.usrRepo.GetUser(ctx, user.GetFilter{ID: act.ProposerID})
	if err != nil && errors.Cause(err) != user.ErrNotFound {
		return Detail{}, errors.Wrap(err, "finding proposer")
	}
	if act.CategoryID != "" {
		cat, err := svc.catRepo.GetCategory(ctx, act.CategoryID)
		if err == nil {
			detail.Category = &cat
		} else if errors.Cause(err) != category.ErrNotFound {
			return Detail{}, errors.Wrap(err, "finding category")
		}
	}

	detail.Attendees, err = svc.repo.QueryAttendees(ctx, act.ID)
	if err != nil {
		return Detail{}, errors.Wrap(err, "querying attendees")
	}
	if !viewer.IsAnonymous() {
		detail.IsAttending, err = svc.repo.IsAttending(ctx, act.ID, viewer.ID)
		if err != nil {
			return Detail{}, errors.Wrap(err, "checking attendance")
		}
	}

	// the lookup absorbs its own failures; a degraded label never blocks the page
	detail.AirQuality = svc.aqSvc.CityFeed(ctx, act.City).Label()
	return detail, nil
}

func (svc *service) Register(ctx context.Context, actor user.User, activityID, action string) (Detail, error) {
	if actor.IsAnonymous() {
		return Detail{}, core.NewAccessDeniedError(errLoginRequired)
	}

	act, err := svc.repo.GetActivity(ctx, activityID)
	if err != nil {
		return Detail{}, err
	}

	switch action {
	case ActionEnroll:
		err = svc.repo.AddAttendee(ctx, act.ID, actor.ID)
	case ActionWithdraw:
		err = svc.repo.RemoveAttendee(ctx, act.ID, actor.ID)
	default:
		return Detail{}, core.NewValidationError(nil, core.FieldError{Field: actionErrFieldKey, Error: errInvalidAction})
	}
	if err != nil {
		return Detail{}, errors.Wrapf(err, "applying %s", action)
	}

	// re-read so the membership state is fresh
	return svc.Detail(ctx, actor, act.ID)
}
