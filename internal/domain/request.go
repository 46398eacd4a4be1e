package domain

import "time"

// kstOffset is the fixed Asia/Seoul offset (+09:00) used to interpret
// the wire datetime format. A fixed offset rather than an IANA zone
// lookup avoids a tzdata dependency for a zone that never observes DST.
var kstOffset = time.FixedZone("KST", 9*60*60)

// ScheduledAtLayout is the wire format for scheduled_at: no timezone,
// always interpreted in KST.
const ScheduledAtLayout = "2006-01-02 15:04:05"

// Request is one pending or completed outbound email to a single
// recipient. Every Request references a live Content via ContentID.
type Request struct {
	ID                int64     `json:"id" db:"id"`
	TopicID           string    `json:"topic_id" db:"topic_id"`
	ContentID         int64     `json:"content_id" db:"content_id"`
	Content           *Content  `json:"-" db:"-"`
	Email             string    `json:"email" db:"email"`
	ScheduledAt       time.Time `json:"scheduled_at" db:"scheduled_at"`
	Status            Status    `json:"status" db:"status"`
	ProviderMessageID string    `json:"provider_message_id,omitempty" db:"provider_message_id"`
	Error             string    `json:"error,omitempty" db:"error"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// ParseScheduledAt parses a wire-format scheduled_at string, interprets
// it in the fixed +09:00 offset, and returns the equivalent UTC time.
// Unparseable input is treated as "now", and ok reports whether parsing
// succeeded (the caller doesn't need it to decide behavior, but it's
// useful for logging/tests).
func ParseScheduledAt(raw string) (t time.Time, ok bool) {
	if raw == "" {
		return time.Now().UTC(), false
	}
	parsed, err := time.ParseInLocation(ScheduledAtLayout, raw, kstOffset)
	if err != nil {
		return time.Now().UTC(), false
	}
	return parsed.UTC(), true
}
