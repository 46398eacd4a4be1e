package store

import (
	"github.com/lee-lou2/aws-ses-sender/internal/apperr"
	"github.com/lee-lou2/aws-ses-sender/internal/domain"
)

// SaveResult appends a single event about a request. Results are
// append-only: repeated opens or repeated delivery callbacks for the
// same request each get their own row; dedup only happens at the
// counting layer, not at write time.
func (s *Store) SaveResult(r domain.Result) (domain.Result, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = nowUTC()
	}
	res, err := s.db.Exec(
		`INSERT INTO results (request_id, status, raw, created_at) VALUES (?, ?, ?, ?)`,
		r.RequestID, r.Status, nullableString(r.Raw), r.CreatedAt,
	)
	if err != nil {
		return domain.Result{}, apperr.Wrap(apperr.StoreError, "insert result", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Result{}, apperr.Wrap(apperr.StoreError, "read last insert id", err)
	}
	r.ID = id
	return r, nil
}
