package store

import (
	"database/sql"
	"strings"
	"time"

	"github.com/lee-lou2/aws-ses-sender/internal/apperr"
	"github.com/lee-lou2/aws-ses-sender/internal/domain"
)

// requestChunkSize caps each multi-row INSERT at 100 rows × 7 columns
// (topic_id, content_id, email, scheduled_at, status, created_at,
// updated_at), i.e. 700 bound parameters, under SQLite's default ~999.
const requestChunkSize = 100

// SaveRequests bulk-inserts requests inside a single transaction and
// returns the input slice with ids assigned in input order.
func (s *Store) SaveRequests(requests []domain.Request) ([]domain.Request, error) {
	if len(requests) == 0 {
		return requests, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, apperr.Wrap(apperr.StoreError, "begin transaction", err)
	}
	defer tx.Rollback()

	now := nowUTC()
	for i := range requests {
		if requests[i].CreatedAt.IsZero() {
			requests[i].CreatedAt = now
		}
		requests[i].UpdatedAt = now
	}

	for start := 0; start < len(requests); start += requestChunkSize {
		end := start + requestChunkSize
		if end > len(requests) {
			end = len(requests)
		}
		chunk := requests[start:end]

		var b strings.Builder
		b.WriteString("INSERT INTO requests (topic_id, content_id, email, scheduled_at, status, created_at, updated_at) VALUES ")
		args := make([]interface{}, 0, len(chunk)*7)
		for i, r := range chunk {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("(?, ?, ?, ?, ?, ?, ?)")
			args = append(args, r.TopicID, r.ContentID, r.Email, r.ScheduledAt, int(r.Status), r.CreatedAt, r.UpdatedAt)
		}

		res, err := tx.Exec(b.String(), args...)
		if err != nil {
			return nil, apperr.Wrap(apperr.StoreError, "insert requests", err)
		}
		lastID, err := res.LastInsertId()
		if err != nil {
			return nil, apperr.Wrap(apperr.StoreError, "read last insert id", err)
		}
		firstID := lastID - int64(len(chunk)) + 1
		for i := range chunk {
			requests[start+i].ID = firstID + int64(i)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Wrap(apperr.StoreError, "commit requests", err)
	}
	return requests, nil
}

// UpdateRequest performs a single-row update of status, provider
// message id, error, and updated_at.
func (s *Store) UpdateRequest(r domain.Request) error {
	_, err := s.db.Exec(
		`UPDATE requests SET status = ?, provider_message_id = ?, error = ?, updated_at = ? WHERE id = ?`,
		int(r.Status), nullableString(r.ProviderMessageID), nullableString(r.Error), nowUTC(), r.ID,
	)
	if err != nil {
		return apperr.Wrap(apperr.StoreError, "update request", err)
	}
	return nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// BulkUpdate flushes a batch of completed requests in one statement.
// status is always written (every batch row has one); provider_message_id
// and error are written via COALESCE(?, column) so a row that doesn't
// carry one of those values leaves the stored value unchanged, and the
// CASE clause for a column is omitted entirely when no row in the batch
// carries a value for it.
func (s *Store) BulkUpdate(requests []domain.Request) error {
	if len(requests) == 0 {
		return nil
	}

	hasMessageID := false
	hasError := false
	for _, r := range requests {
		if r.ProviderMessageID != "" {
			hasMessageID = true
		}
		if r.Error != "" {
			hasError = true
		}
	}

	var b strings.Builder
	b.WriteString("UPDATE requests SET status = CASE id ")
	statusArgs := make([]interface{}, 0, len(requests)*2)
	for _, r := range requests {
		b.WriteString("WHEN ? THEN ? ")
		statusArgs = append(statusArgs, r.ID, int(r.Status))
	}
	b.WriteString("END")

	var messageIDArgs, errorArgs []interface{}
	if hasMessageID {
		b.WriteString(", provider_message_id = CASE id ")
		for _, r := range requests {
			b.WriteString("WHEN ? THEN COALESCE(?, provider_message_id) ")
			messageIDArgs = append(messageIDArgs, r.ID, nullableString(r.ProviderMessageID))
		}
		b.WriteString("END")
	}
	if hasError {
		b.WriteString(", error = CASE id ")
		for _, r := range requests {
			b.WriteString("WHEN ? THEN COALESCE(?, error) ")
			errorArgs = append(errorArgs, r.ID, nullableString(r.Error))
		}
		b.WriteString("END")
	}
	b.WriteString(", updated_at = ? WHERE id IN (")

	idArgs := make([]interface{}, len(requests))
	for i, r := range requests {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("?")
		idArgs[i] = r.ID
	}
	b.WriteString(")")

	args := make([]interface{}, 0, len(statusArgs)+len(messageIDArgs)+len(errorArgs)+1+len(idArgs))
	args = append(args, statusArgs...)
	args = append(args, messageIDArgs...)
	args = append(args, errorArgs...)
	args = append(args, nowUTC())
	args = append(args, idArgs...)

	if _, err := s.db.Exec(b.String(), args...); err != nil {
		return apperr.Wrap(apperr.StoreError, "bulk update requests", err)
	}
	return nil
}

// ClaimedRequest is a Request claimed by the scheduler, hydrated with
// its content's subject and body for immediate hand-off to the
// dispatcher.
type ClaimedRequest struct {
	ID        int64
	TopicID   string
	ContentID int64
	Email     string
	Subject   string
	Content   string
}

// ClaimDue atomically transitions up to limit rows with
// status=Created AND scheduled_at<=now to Processed, returning the
// claimed rows hydrated with their content. The UPDATE...RETURNING
// statement is the sole mutation of status; Store serializes all
// writes onto a single connection (see Open), so two concurrent
// ClaimDue calls can never observe or claim the same row.
func (s *Store) ClaimDue(limit int) ([]ClaimedRequest, error) {
	rows, err := s.db.Query(`
		UPDATE requests
		SET status = ?, updated_at = ?
		WHERE id IN (
			SELECT id FROM requests
			WHERE status = ? AND scheduled_at <= ?
			ORDER BY scheduled_at ASC
			LIMIT ?
		)
		RETURNING id, topic_id, content_id, email
	`, int(domain.StatusProcessed), nowUTC(), int(domain.StatusCreated), nowUTC(), limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.StoreError, "claim due requests", err)
	}
	defer rows.Close()

	var claimed []ClaimedRequest
	for rows.Next() {
		var c ClaimedRequest
		if err := rows.Scan(&c.ID, &c.TopicID, &c.ContentID, &c.Email); err != nil {
			return nil, apperr.Wrap(apperr.StoreError, "scan claimed request", err)
		}
		claimed = append(claimed, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.StoreError, "iterate claimed requests", err)
	}
	if len(claimed) == 0 {
		return claimed, nil
	}

	return s.hydrateContent(claimed)
}

// hydrateContent joins claimed rows against contents to fill in
// subject/body.
func (s *Store) hydrateContent(claimed []ClaimedRequest) ([]ClaimedRequest, error) {
	byContentID := make(map[int64][2]string, len(claimed))
	ids := make([]int64, 0, len(claimed))
	seen := make(map[int64]bool, len(claimed))
	for _, c := range claimed {
		if !seen[c.ContentID] {
			seen[c.ContentID] = true
			ids = append(ids, c.ContentID)
		}
	}

	var b strings.Builder
	b.WriteString("SELECT id, subject, content FROM contents WHERE id IN (")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("?")
		args[i] = id
	}
	b.WriteString(")")

	rows, err := s.db.Query(b.String(), args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.StoreError, "hydrate content", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var subject, content string
		if err := rows.Scan(&id, &subject, &content); err != nil {
			return nil, apperr.Wrap(apperr.StoreError, "scan hydrated content", err)
		}
		byContentID[id] = [2]string{subject, content}
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.StoreError, "iterate hydrated content", err)
	}

	for i := range claimed {
		if sc, ok := byContentID[claimed[i].ContentID]; ok {
			claimed[i].Subject = sc[0]
			claimed[i].Content = sc[1]
		}
	}
	return claimed, nil
}

// RollbackToCreated resets a set of requests back to Created status,
// used when a queue-publish failure means the scheduler must be given
// another chance to claim them: the only path back from Processed to
// Created is a request that was persisted but never actually reached
// the send queue.
func (s *Store) RollbackToCreated(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("UPDATE requests SET status = ?, updated_at = ? WHERE id IN (")
	args := make([]interface{}, 0, len(ids)+2)
	args = append(args, int(domain.StatusCreated), nowUTC())
	for i, id := range ids {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("?")
		args = append(args, id)
	}
	b.WriteString(")")
	if _, err := s.db.Exec(b.String(), args...); err != nil {
		return apperr.Wrap(apperr.StoreError, "rollback to created", err)
	}
	return nil
}

// StopTopic transitions every Created request in topicID to Stopped,
// leaving requests in any other topic, and any non-Created request in
// this topic, untouched.
func (s *Store) StopTopic(topicID string) error {
	_, err := s.db.Exec(
		`UPDATE requests SET status = ?, updated_at = ? WHERE status = ? AND topic_id = ?`,
		int(domain.StatusStopped), nowUTC(), int(domain.StatusCreated), topicID,
	)
	if err != nil {
		return apperr.Wrap(apperr.StoreError, "stop topic", err)
	}
	return nil
}

// RequestCountsByTopic returns a map from status name to count for all
// requests in topicID. Status values outside the known enum surface as
// "Unknown" rather than being dropped.
func (s *Store) RequestCountsByTopic(topicID string) (map[string]int, error) {
	rows, err := s.db.Query(
		`SELECT status, COUNT(*) FROM requests WHERE topic_id = ? GROUP BY status`, topicID,
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.StoreError, "request counts by topic", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status, count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, apperr.Wrap(apperr.StoreError, "scan request counts", err)
		}
		counts[domain.StatusFromInt(status).String()] += count
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.StoreError, "iterate request counts", err)
	}
	return counts, nil
}

// ResultCountsByTopic counts distinct request ids per result status,
// restricted to requests in topicID, so that a request opened N times
// still contributes 1 to the "Open" count.
func (s *Store) ResultCountsByTopic(topicID string) (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT r.status, COUNT(DISTINCT r.request_id)
		FROM results r
		JOIN requests q ON q.id = r.request_id
		WHERE q.topic_id = ?
		GROUP BY r.status
	`, topicID)
	if err != nil {
		return nil, apperr.Wrap(apperr.StoreError, "result counts by topic", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, apperr.Wrap(apperr.StoreError, "scan result counts", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.StoreError, "iterate result counts", err)
	}
	return counts, nil
}

// SentCountSince counts requests transitioned to Sent whose created_at
// falls within the last `hours` hours.
func (s *Store) SentCountSince(hours int) (int, error) {
	cutoff := nowUTC().Add(-time.Duration(hours) * time.Hour)
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM requests WHERE status = ? AND created_at >= ?`,
		int(domain.StatusSent), cutoff,
	).Scan(&count)
	if err != nil {
		return 0, apperr.Wrap(apperr.StoreError, "sent count since", err)
	}
	return count, nil
}

// LookupRequestIDByProviderMessageID resolves a provider message id
// (assigned at submission time) back to the originating request, for
// webhook ingest. Returns an apperr.NotFound error (with no wrapped
// cause) when no request carries that id.
func (s *Store) LookupRequestIDByProviderMessageID(providerMessageID string) (int64, error) {
	var id int64
	err := s.db.QueryRow(
		`SELECT id FROM requests WHERE provider_message_id = ?`, providerMessageID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, apperr.New(apperr.NotFound, "no request for provider message id")
	}
	if err != nil {
		return 0, apperr.Wrap(apperr.StoreError, "lookup request by provider message id", err)
	}
	return id, nil
}
