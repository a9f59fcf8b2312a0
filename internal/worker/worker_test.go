package worker

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"focusflow/backend/internal/models"
	"focusflow/backend/internal/notify"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestJobQueue_Enqueue(t *testing.T) {
	client := setupRedis(t)
	queue := NewJobQueue(client)

	err := queue.Enqueue("notifications", JobTypeTaskReminder, map[string]interface{}{
		"task_id": "abc",
	})
	require.NoError(t, err)

	size, err := queue.GetQueueSize("notifications")
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)
}

func TestQueueNotifier_PayloadCarriesTaskAndRecipient(t *testing.T) {
	client := setupRedis(t)
	notifier := NewQueueNotifier(NewJobQueue(client), "notifications")

	due := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	task := &models.Task{
		ID:      uuid.Must(uuid.NewV4()),
		Content: "Submit expense report",
		DueDate: &due,
		User:    &models.User{Email: "worker@example.com"},
	}

	require.NoError(t, notifier.NotifyDue(context.Background(), task))

	raw, err := client.LPop(context.Background(), "notifications").Result()
	require.NoError(t, err)

	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))

	assert.Equal(t, JobTypeTaskReminder, job.Type)
	assert.Equal(t, task.ID.String(), job.Payload["task_id"])
	assert.Equal(t, "Submit expense report", job.Payload["content"])
	assert.Equal(t, "worker@example.com", job.Payload["email"])
	assert.Equal(t, due.Format(time.RFC3339), job.Payload["due_date"])
	assert.Equal(t, 3, job.MaxTries)
}

func TestQueueNotifier_OmitsMissingFields(t *testing.T) {
	client := setupRedis(t)
	notifier := NewQueueNotifier(NewJobQueue(client), "notifications")

	task := &models.Task{
		ID:      uuid.Must(uuid.NewV4()),
		Content: "No deadline, no owner loaded",
	}

	require.NoError(t, notifier.NotifyDue(context.Background(), task))

	raw, err := client.LPop(context.Background(), "notifications").Result()
	require.NoError(t, err)

	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))

	_, hasDue := job.Payload["due_date"]
	assert.False(t, hasDue)
	_, hasEmail := job.Payload["email"]
	assert.False(t, hasEmail)
}

func TestWorker_DispatchesToRegisteredHandler(t *testing.T) {
	client := setupRedis(t)

	var handled atomic.Int32
	got := make(chan *Job, 1)

	w := NewWorker(WorkerConfig{
		RedisClient: client,
		Logger:      testLogger(),
		Queues:      []string{"notifications"},
	})
	w.RegisterHandler(JobTypeTaskReminder, func(ctx context.Context, job *Job) error {
		handled.Add(1)
		got <- job
		return nil
	})

	w.Start(1)
	defer w.Stop()

	queue := NewJobQueue(client)
	require.NoError(t, queue.Enqueue("notifications", JobTypeTaskReminder, map[string]interface{}{
		"task_id": "t-1",
	}))

	select {
	case job := <-got:
		assert.Equal(t, "t-1", job.Payload["task_id"])
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not process the job in time")
	}

	assert.Equal(t, int32(1), handled.Load())
}

func TestWorker_FailedJobLandsInDeadQueue(t *testing.T) {
	client := setupRedis(t)

	w := NewWorker(WorkerConfig{
		RedisClient: client,
		Logger:      testLogger(),
		Queues:      []string{"notifications"},
	})
	w.RegisterHandler(JobTypeTaskReminder, func(ctx context.Context, job *Job) error {
		return context.DeadlineExceeded
	})

	w.Start(1)
	defer w.Stop()

	// A single-try job fails straight into the dead queue.
	job := &Job{
		ID:       "doomed",
		Type:     JobTypeTaskReminder,
		Payload:  map[string]interface{}{"task_id": "t-2"},
		MaxTries: 1,
	}
	data, err := json.Marshal(job)
	require.NoError(t, err)
	require.NoError(t, client.RPush(context.Background(), "notifications", data).Err())

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		n, err := client.LLen(context.Background(), "dead_queue").Result()
		require.NoError(t, err)
		if n == 1 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("failed job never reached the dead queue")
}

func TestWorker_TransientFailureGoesBackOnOriginQueue(t *testing.T) {
	client := setupRedis(t)

	failed := make(chan struct{}, 1)
	w := NewWorker(WorkerConfig{
		RedisClient: client,
		Logger:      testLogger(),
		Queues:      []string{"notifications"},
	})
	w.RegisterHandler(JobTypeTaskReminder, func(ctx context.Context, job *Job) error {
		failed <- struct{}{}
		return context.DeadlineExceeded
	})

	w.Start(1)

	queue := NewJobQueue(client)
	require.NoError(t, queue.Enqueue("notifications", JobTypeTaskReminder, map[string]interface{}{
		"task_id": "t-retry",
	}))

	select {
	case <-failed:
	case <-time.After(5 * time.Second):
		t.Fatal("handler was never invoked")
	}
	w.Stop()

	// The retry waits on the queue the job came from, delayed by backoff,
	// where the drain loop will redeliver it once due.
	n, err := client.LLen(context.Background(), "notifications").Result()
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	raw, err := client.LPop(context.Background(), "notifications").Result()
	require.NoError(t, err)
	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.Equal(t, 1, job.Attempts)
	assert.True(t, job.ProcessAt.After(time.Now()))

	// Nothing strands on a side queue no consumer drains.
	orphaned, err := client.LLen(context.Background(), "retry_queue").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), orphaned)
}

func TestWorker_StopIsIdempotentAndPrompt(t *testing.T) {
	client := setupRedis(t)

	w := NewWorker(WorkerConfig{
		RedisClient: client,
		Logger:      testLogger(),
		Queues:      []string{"notifications"},
	})
	w.Start(2)

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop in time")
	}
}

func TestReminderHandler_DropsJobsWithoutRecipient(t *testing.T) {
	mailer := notify.NewMailer(nil, testLogger())
	handler := ReminderHandler(mailer, testLogger())

	err := handler(context.Background(), &Job{
		ID:      "no-recipient",
		Type:    JobTypeTaskReminder,
		Payload: map[string]interface{}{"task_id": "t-3", "content": "orphaned"},
	})
	assert.NoError(t, err)
}

func TestReminderHandler_SkipsWhenMailUnconfigured(t *testing.T) {
	mailer := notify.NewMailer(nil, testLogger())
	handler := ReminderHandler(mailer, testLogger())

	err := handler(context.Background(), &Job{
		ID:   "unconfigured",
		Type: JobTypeTaskReminder,
		Payload: map[string]interface{}{
			"task_id": uuid.Must(uuid.NewV4()).String(),
			"content": "remind me",
			"email":   "someone@example.com",
		},
	})
	assert.NoError(t, err)
}
