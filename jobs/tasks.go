package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskVendorPaymentOverdueScan is the task type for the periodic overdue scan.
	TaskVendorPaymentOverdueScan = "vendorpay:overdue-scan"
)

// OverdueScanPayload parameterises an overdue scan run.
type OverdueScanPayload struct {
	// Limit caps how many overdue payments are logged individually. Zero logs all.
	Limit int `json:"limit"`
}

// NewOverdueScanTask constructs an Asynq task for the overdue scan.
func NewOverdueScanTask(limit int) (*asynq.Task, error) {
	data, err := json.Marshal(OverdueScanPayload{Limit: limit})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVendorPaymentOverdueScan, data), nil
}
