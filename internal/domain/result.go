package domain

import "time"

// Well-known Result status values. Status is otherwise a free-form tag
// set by the provider's webhook event type.
const (
	ResultOpen = "Open"
)

// Result is one provider- or user-observed event about a Request:
// a delivery/bounce/complaint callback, or a tracking-pixel hit.
// Append-only; a Request may accrue many Results.
type Result struct {
	ID        int64     `json:"id" db:"id"`
	RequestID int64     `json:"request_id" db:"request_id"`
	Status    string    `json:"status" db:"status"`
	Raw       string    `json:"raw,omitempty" db:"raw"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
