package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskNotificationDeliver is the task type for delivering a stored
	// notification to its recipient.
	TaskNotificationDeliver = "notification:deliver"
	// TaskTestDriveReminders is the task type for the daily scan that
	// reminds customers of upcoming test drives.
	TaskTestDriveReminders = "testdrive:remind"
)

// NotificationDeliverPayload identifies the notification to push out.
type NotificationDeliverPayload struct {
	NotificationID int64  `json:"notification_id"`
	Recipient      string `json:"recipient"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
}

// NewNotificationDeliverTask constructs an Asynq task.
func NewNotificationDeliverTask(payload NotificationDeliverPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationDeliver, data), nil
}

// NewTestDriveRemindersTask constructs the cron-driven reminder task. It
// carries no payload; the handler scans the schedule itself.
func NewTestDriveRemindersTask() *asynq.Task {
	return asynq.NewTask(TaskTestDriveReminders, nil)
}
