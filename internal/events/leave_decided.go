package events

import "time"

const LeaveDecidedTopic = "leave.decision.v1"

// LeaveDecidedEvent is published only after the deciding transaction has
// committed; downstream email and document rendering key off it.
type LeaveDecidedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	LeaveID    string    `json:"leave_id"`
	ApprovalID string    `json:"approval_id"`
	EmployeeID string    `json:"employee_id"`
	Decision   string    `json:"decision"`
	OccurredAt time.Time `json:"occurred_at"`
}
