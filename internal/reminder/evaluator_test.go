package reminder

import (
	"testing"
	"time"

	"focusflow/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestIsDue(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		task models.Task
		want bool
	}{
		{
			name: "active reminder past due date",
			task: models.Task{ReminderActive: true, DueDate: &past},
			want: true,
		},
		{
			name: "inactive reminder past due date",
			task: models.Task{ReminderActive: false, DueDate: &past},
			want: false,
		},
		{
			name: "active reminder future due date",
			task: models.Task{ReminderActive: true, DueDate: &future},
			want: false,
		},
		{
			name: "active reminder no due date",
			task: models.Task{ReminderActive: true},
			want: false,
		},
		{
			name: "inactive reminder no due date",
			task: models.Task{},
			want: false,
		},
		{
			name: "due date exactly now is inclusive",
			task: models.Task{ReminderActive: true, DueDate: &now},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDue(&tt.task, now))
		})
	}
}

func TestIsDue_LeadTimeIgnored(t *testing.T) {
	// A task due in 10 minutes with a 30 minute lead is inside its lead
	// window, but due-ness is evaluated strictly against the due date.
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	soon := now.Add(10 * time.Minute)

	task := models.Task{
		ReminderActive:      true,
		DueDate:             &soon,
		ReminderLeadMinutes: 30,
	}

	assert.False(t, IsDue(&task, now))
}
