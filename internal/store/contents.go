package store

import (
	"fmt"
	"strings"

	"github.com/lee-lou2/aws-ses-sender/internal/apperr"
	"github.com/lee-lou2/aws-ses-sender/internal/domain"
)

// contentChunkSize caps each multi-row INSERT at 150 rows × 3 columns
// (subject, content, created_at) to stay comfortably under SQLite's
// default ~999 bound-parameter limit.
const contentChunkSize = 150

// SaveContents bulk-inserts contents inside a single transaction and
// returns the input slice with ids assigned in input order.
func (s *Store) SaveContents(contents []domain.Content) ([]domain.Content, error) {
	if len(contents) == 0 {
		return contents, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, apperr.Wrap(apperr.StoreError, "begin transaction", err)
	}
	defer tx.Rollback()

	now := nowUTC()
	for i := range contents {
		if contents[i].CreatedAt.IsZero() {
			contents[i].CreatedAt = now
		}
	}

	for start := 0; start < len(contents); start += contentChunkSize {
		end := start + contentChunkSize
		if end > len(contents) {
			end = len(contents)
		}
		chunk := contents[start:end]

		var b strings.Builder
		b.WriteString("INSERT INTO contents (subject, content, created_at) VALUES ")
		args := make([]interface{}, 0, len(chunk)*3)
		for i, c := range chunk {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("(?, ?, ?)")
			args = append(args, c.Subject, c.Body, c.CreatedAt)
		}

		res, err := tx.Exec(b.String(), args...)
		if err != nil {
			return nil, apperr.Wrap(apperr.StoreError, "insert contents", err)
		}
		lastID, err := res.LastInsertId()
		if err != nil {
			return nil, apperr.Wrap(apperr.StoreError, "read last insert id", err)
		}
		// SQLite assigns AUTOINCREMENT ids sequentially within a single
		// statement; the first row of this chunk got (lastID - len + 1).
		firstID := lastID - int64(len(chunk)) + 1
		for i := range chunk {
			contents[start+i].ID = firstID + int64(i)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Wrap(apperr.StoreError, "commit contents", err)
	}
	return contents, nil
}

// GetContent fetches a single content row by id.
func (s *Store) GetContent(id int64) (*domain.Content, error) {
	row := s.db.QueryRow(`SELECT id, subject, content, created_at FROM contents WHERE id = ?`, id)
	var c domain.Content
	if err := row.Scan(&c.ID, &c.Subject, &c.Body, &c.CreatedAt); err != nil {
		return nil, apperr.Wrap(apperr.StoreError, fmt.Sprintf("get content %d", id), err)
	}
	return &c, nil
}
