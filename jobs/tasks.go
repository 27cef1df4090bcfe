package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault carries sweeps and cache refreshes.
	QueueDefault = "default"
	// QueueMail carries transactional email, processed at lower priority so
	// a mail backlog never starves the booking expiry sweep.
	QueueMail = "mail"

	// TaskTypeSendEmail sends a transactional email.
	TaskTypeSendEmail = "mail:send"
	// TaskBookingExpiry releases pending bookings past their hold deadline.
	TaskBookingExpiry = "bookings:expire"
	// TaskReviewRefresh recomputes a venue's cached rating aggregate.
	TaskReviewRefresh = "reviews:refresh"
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
	return asynq.NewTask(TaskTypeSendEmail, data, asynq.Queue(QueueMail)), nil
}

// NewBookingExpiryTask constructs the expiry sweep task. The sweep takes
// no payload; it operates on whatever is stale at execution time.
func NewBookingExpiryTask() *asynq.Task {
	return asynq.NewTask(TaskBookingExpiry, nil)
}

// ReviewRefreshPayload names the venue whose aggregate should refresh.
type ReviewRefreshPayload struct {
	VenueID int64 `json:"venue_id"`
}

// NewReviewRefreshTask constructs an aggregate refresh task.
func NewReviewRefreshTask(payload ReviewRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReviewRefresh, data), nil
}
