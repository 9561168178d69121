package activity

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/agora/core"
)

var (
	futureStartTag  = "futurestart"
	futureStartText = "start time must be in the future"

	endAfterStartTag  = "endafterstart"
	endAfterStartText = "end time must be after start time"
)

func init() {
	core.Validate.RegisterStructValidation(newActivityStructValidation, NewActivity{})
	core.RegisterCustomTranslation(futureStartTag, futureStartText)
	core.RegisterCustomTranslation(endAfterStartTag, endAfterStartText)
}

// newActivityStructValidation checks the time invariants on NewActivity:
// the start time is strictly in the future (creation-time rule) and the
// end time is strictly after the start time.
func newActivityStructValidation(sl validator.StructLevel) {
	na, ok := sl.Current().Interface().(NewActivity)
	if !ok {
		return
	}
	if na.StartTime.IsZero() || na.EndTime.IsZero() {
		return // `required` covers these
	}
	if !na.StartTime.After(NowFunc()) {
		sl.ReportError(na.StartTime, "start_time", "StartTime", futureStartTag, "")
	}
	if !na.EndTime.After(na.StartTime) {
		sl.ReportError(na.EndTime, "end_time", "EndTime", endAfterStartTag, "")
	}
}

// NowFunc returns the current instant; mockable in tests.
var NowFunc = time.Now
