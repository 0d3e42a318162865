package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeDueScan is the task type for the daily due-date scan.
	TaskTypeDueScan = "orders:due_scan"
	// TaskTypeCatalogWarmup is the task type for pre-warming the catalog cache.
	TaskTypeCatalogWarmup = "catalog:warmup"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewDueScanTask constructs the due-date scan task. The payload is empty; the
// scan always covers every active order.
func NewDueScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeDueScan, nil)
}

// NewCatalogWarmupTask constructs the catalog cache warmup task.
func NewCatalogWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeCatalogWarmup, nil)
}
