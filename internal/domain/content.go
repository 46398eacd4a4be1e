package domain

import "time"

// Content is the deduplicated subject+HTML body of one outbound
// message. A single Content is shared (by reference, never copied) by
// every Request generated for its recipients.
type Content struct {
	ID        int64     `json:"id" db:"id"`
	Subject   string    `json:"subject" db:"subject"`
	Body      string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
