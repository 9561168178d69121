package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/agora/core/activity"
	"github.com/trezcool/agora/core/user"
)

type dbActivity struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Description string      `db:"description"`
	City        string      `db:"city"`
	StartTime   time.Time   `db:"start_time"`
	EndTime     time.Time   `db:"end_time"`
	ProposerID  string      `db:"proposer_id"`
	CategoryID  null.String `db:"category_id"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

type activityRepository struct {
	db *sqlx.DB
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *sqlx.DB) *activityRepository {
	return &activityRepository{db: db}
}

func (repo activityRepository) pack(act activity.Activity) dbActivity {
	return dbActivity{
		ID:          act.ID,
		Title:       act.Title,
		Description: act.Description,
		City:        act.City,
		StartTime:   act.StartTime.UTC(),
		EndTime:     act.EndTime.UTC(),
		ProposerID:  act.ProposerID,
		CategoryID:  null.NewString(act.CategoryID, act.CategoryID != ""),
		CreatedAt:   act.CreatedAt.UTC(),
		UpdatedAt:   act.UpdatedAt.UTC(),
	}
}

func (repo activityRepository) unpack(a dbActivity) activity.Activity {
	return activity.Activity{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		City:        a.City,
		StartTime:   a.StartTime,
		EndTime:     a.EndTime,
		ProposerID:  a.ProposerID,
		CategoryID:  a.CategoryID.String,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func (repo activityRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return activity.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo activityRepository) CreateActivity(ctx context.Context, act activity.Activity) (activity.Activity, error) {
	act.ID = uuid.New().String()
	a := repo.pack(act)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO activity (id, title, description, city, start_time, end_time,
		                      proposer_id, category_id, created_at, updated_at)
		VALUES (:id, :title, :description, :city, :start_time, :end_time,
		        :proposer_id, :category_id, :created_at, :updated_at)`, a)
	if err != nil {
		return activity.Activity{}, errors.Wrap(err, "inserting activity")
	}
	return repo.unpack(a), nil
}

func (repo activityRepository) GetActivity(ctx context.Context, id string) (activity.Activity, error) {
	if _, err := uuid.Parse(id); err != nil {
		return activity.Activity{}, activity.ErrNotFound
	}
	var a dbActivity
	if err := repo.db.GetContext(ctx, &a, `SELECT * FROM activity WHERE id = $1`, id); err != nil {
		return activity.Activity{}, repo.trapNoRowsErr(err, "finding activity")
	}
	return repo.unpack(a), nil
}

func (repo activityRepository) QueryUpcomingActivities(ctx context.Context, filter activity.UpcomingFilter) ([]activity.Activity, error) {
	q := `SELECT * FROM activity WHERE start_time >= ?`
	args := []interface{}{filter.Now.UTC()}

	if filter.CategoryID != "" {
		// an unknown category id simply matches nothing
		if _, err := uuid.Parse(filter.CategoryID); err != nil {
			return nil, nil
		}
		q += ` AND category_id = ?`
		args = append(args, filter.CategoryID)
	}
	if filter.ProposerID != "" {
		q += ` AND proposer_id = ?`
		args = append(args, filter.ProposerID)
	}
	if filter.AttendeeID != "" {
		q += ` AND EXISTS (SELECT 1 FROM activity_attendee aa WHERE aa.activity_id = activity.id AND aa.user_id = ?)`
		args = append(args, filter.AttendeeID)
	}
	q += ` ORDER BY start_time ASC`

	var rows []dbActivity
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying upcoming activities")
	}
	acts := make([]activity.Activity, 0, len(rows))
	for _, a := range rows {
		acts = append(acts, repo.unpack(a))
	}
	return acts, nil
}

func (repo activityRepository) AddAttendee(ctx context.Context, activityID, userID string) error {
	// single idempotent statement; concurrent enrolls cannot corrupt the set
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO activity_attendee (activity_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, activityID, userID)
	return errors.Wrap(err, "adding attendee")
}

func (repo activityRepository) RemoveAttendee(ctx context.Context, activityID, userID string) error {
	_, err := repo.db.ExecContext(ctx, `
		DELETE FROM activity_attendee WHERE activity_id = $1 AND user_id = $2`, activityID, userID)
	return errors.Wrap(err, "removing attendee")
}

func (repo activityRepository) QueryAttendees(ctx context.Context, activityID string) ([]user.User, error) {
	var rows []dbUser
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT u.* FROM "user" u
		JOIN activity_attendee aa ON aa.user_id = u.id
		WHERE aa.activity_id = $1
		ORDER BY u.username`, activityID)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendees")
	}
	usrRepo := userRepository{db: repo.db}
	return usrRepo.unpackSlice(rows), nil
}

func (repo activityRepository) IsAttending(ctx context.Context, activityID, userID string) (bool, error) {
	var attending bool
	err := repo.db.GetContext(ctx, &attending, `
		SELECT EXISTS (SELECT 1 FROM activity_attendee WHERE activity_id = $1 AND user_id = $2)`,
		activityID, userID)
	return attending, errors.Wrap(err, "checking attendance")
}
