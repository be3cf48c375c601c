package domain

import "context"

// Record kinds carried by RecordEvent.
const (
	RecordKindAidRequest = "aid_request"
	RecordKindSOSAlert   = "sos_alert"
)

// RecordEvent announces that a user-submitted record was stored.
type RecordEvent struct {
	Kind      string   `json:"kind"`
	ID        RecordID `json:"id"`
	Status    string   `json:"status"`
	CreatedAt string   `json:"created_at"`
	Record    any      `json:"record"`
}

// RecordPublisher broadcasts RecordEvents to downstream consumers.
type RecordPublisher interface {
	Publish(ctx context.Context, event RecordEvent) error
}
