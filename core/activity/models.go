package activity

import (
	"time"

	"github.com/trezcool/agora/core"
)

// View modes for the activity listing.
const (
	ViewAll       = "all"
	ViewMine      = "mine"
	ViewAttending = "attending"
)

// Registration actions, as submitted on the detail resource.
const (
	ActionEnroll   = "inscrit"
	ActionWithdraw = "desinscrit"
)

// CategoryNone is the sentinel category filter value meaning "no filter".
const CategoryNone = "none"

// PageSize is the fixed listing page size.
const PageSize = 3

type Activity struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	City        string    `json:"city"`
	StartTime   time.Time `json:"start_time"` // UTC
	EndTime     time.Time `json:"end_time"`   // UTC
	ProposerID  string    `json:"proposer_id"`
	CategoryID  string    `json:"category_id,omitempty"` // empty when uncategorized
	CreatedAt   time.Time `json:"created_at"`            // UTC
	UpdatedAt   time.Time `json:"updated_at"`            // UTC
}

// NewActivity contains information needed to propose a new Activity.
type NewActivity struct {
	Title       string    `json:"title" validate:"required,min=5,max=200"`
	Description string    `json:"description" validate:"required,min=10,max=500"`
	City        string    `json:"city" validate:"required,min=2,max=100"`
	CategoryID  string    `json:"category"` // optional
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
}

func (na *NewActivity) Validate() error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.City = core.CleanString(na.City)
	na.CategoryID = core.CleanString(na.CategoryID, true /* lower */)
	if na.CategoryID == CategoryNone {
		na.CategoryID = ""
	}
	return core.Validate.Struct(na)
}

// QueryFilter narrows down the activity listing for a viewer.
// All fields degrade gracefully to defaults; see Clean.
type QueryFilter struct {
	View       string `query:"view"`
	CategoryID string `query:"category"`
	Page       int    `query:"page"`
}

// Clean normalizes the filter: unrecognized view modes fall back to ViewAll,
// the CategoryNone sentinel clears the category filter and the page number
// is floored at 1.
func (qf *QueryFilter) Clean() {
	switch qf.View {
	case ViewAll, ViewMine, ViewAttending:
	default:
		qf.View = ViewAll
	}
	qf.CategoryID = core.CleanString(qf.CategoryID, true /* lower */)
	if qf.CategoryID == CategoryNone {
		qf.CategoryID = ""
	}
	if qf.Page < 1 {
		qf.Page = 1
	}
}

// Page is one fixed-size slice of the filtered activity listing.
type Page struct {
	Items     []Activity `json:"items"`
	Page      int        `json:"page"`
	PageCount int        `json:"page_count"`
	Total     int        `json:"total"`
}
