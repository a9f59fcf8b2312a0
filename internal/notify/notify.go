package notify

import (
	"context"
	"log/slog"

	"focusflow/backend/internal/models"
)

// Notifier delivers a one-way reminder for a due task. Callers do not get
// delivery confirmation; an error only means the attempt itself failed.
type Notifier interface {
	NotifyDue(ctx context.Context, task *models.Task) error
}

// LogNotifier writes the reminder to the log. This is the default delivery
// path; email delivery is opt-in via configuration.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyDue(ctx context.Context, task *models.Task) error {
	attrs := []any{
		slog.String("task_id", task.ID.String()),
		slog.String("content", task.Content),
	}
	if task.DueDate != nil {
		attrs = append(attrs, slog.Time("due_date", *task.DueDate))
	}
	n.logger.Info("reminder: task is due", attrs...)
	return nil
}
