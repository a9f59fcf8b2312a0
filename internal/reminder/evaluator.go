package reminder

import (
	"time"

	"focusflow/backend/internal/models"
)

// IsDue reports whether a task's reminder should fire at the given instant:
// the reminder is active, a due date is set, and the due date is at or
// before now. The boundary is inclusive.
//
// ReminderLeadMinutes is deliberately not applied here. The field is carried
// on the model but due-ness has always been evaluated straight against the
// due date; subtracting the lead time would be a behavior change pending
// product clarification.
func IsDue(t *models.Task, now time.Time) bool {
	return t.ReminderActive && t.DueDate != nil && !t.DueDate.After(now)
}
