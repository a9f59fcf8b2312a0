package worker

import (
	"context"
	"log/slog"
	"time"

	"focusflow/backend/internal/models"
	"focusflow/backend/internal/notify"

	"github.com/gofrs/uuid"
)

// QueueNotifier hands due-task reminders to the job queue instead of
// delivering them inline. The scheduler treats the enqueue as its
// fire-and-forget notification; the worker owns actual delivery.
type QueueNotifier struct {
	queue     *JobQueue
	queueName string
}

func NewQueueNotifier(queue *JobQueue, queueName string) *QueueNotifier {
	return &QueueNotifier{queue: queue, queueName: queueName}
}

func (n *QueueNotifier) NotifyDue(ctx context.Context, task *models.Task) error {
	payload := map[string]interface{}{
		"task_id": task.ID.String(),
		"content": task.Content,
	}
	if task.DueDate != nil {
		payload["due_date"] = task.DueDate.Format(time.RFC3339)
	}
	if task.User != nil {
		payload["email"] = task.User.Email
	}
	return n.queue.Enqueue(n.queueName, JobTypeTaskReminder, payload)
}

// ReminderHandler builds the job handler that mails a reminder to the task
// owner. Jobs without a recipient are dropped, not retried: retrying will
// never grow an address.
func ReminderHandler(mailer *notify.Mailer, logger *slog.Logger) JobHandler {
	return func(ctx context.Context, job *Job) error {
		email, _ := job.Payload["email"].(string)
		if email == "" {
			logger.Warn("reminder job has no recipient, dropping",
				slog.String("job_id", job.ID))
			return nil
		}

		task := &models.Task{}
		if id, _ := job.Payload["task_id"].(string); id != "" {
			task.ID = uuid.FromStringOrNil(id)
		}
		task.Content, _ = job.Payload["content"].(string)
		if raw, _ := job.Payload["due_date"].(string); raw != "" {
			if due, err := time.Parse(time.RFC3339, raw); err == nil {
				task.DueDate = &due
			}
		}

		return mailer.SendTaskReminder(email, task)
	}
}
