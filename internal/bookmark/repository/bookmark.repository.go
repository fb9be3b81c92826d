package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"markhub/internal/bookmark/model"
	"markhub/pkg/logger"

	"github.com/lib/pq"
)

// Postgres error code for unique_violation.
const uniqueViolation = "23505"

type BookmarkRepository struct {
	DB *sql.DB
}

func NewBookmarkRepository(db *sql.DB) *BookmarkRepository {
	return &BookmarkRepository{DB: db}
}

// Create inserts a new record. The (owner_id, url) unique constraint is the
// authoritative duplicate guard; a violation comes back as ErrDuplicateURL.
func (r *BookmarkRepository) Create(id, ownerID, url, title string) (*model.Bookmark, error) {
	var b model.Bookmark
	err := r.DB.QueryRow(`INSERT INTO bookmarks (id, owner_id, url, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, owner_id, url, title, created_at, updated_at`,
		id, ownerID, url, title,
	).Scan(&b.ID, &b.OwnerID, &b.URL, &b.Title, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, r.translate("create bookmark", err)
	}
	return &b, nil
}

// ExistsByURL reports whether the owner already holds a record for url.
func (r *BookmarkRepository) ExistsByURL(ownerID, url string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM bookmarks WHERE owner_id = $1 AND url = $2)`,
		ownerID, url).Scan(&exists)
	if err != nil {
		return false, r.translate("check duplicate url", err)
	}
	return exists, nil
}

// Update patches title and/or url, scoped to (id, owner). A record owned by
// someone else matches no row and reads as ErrNotFound, same as a missing id.
func (r *BookmarkRepository) Update(ownerID, id string, title, url *string) (*model.Bookmark, error) {
	var b model.Bookmark
	err := r.DB.QueryRow(`UPDATE bookmarks
		SET title = COALESCE($1, title), url = COALESCE($2, url), updated_at = NOW()
		WHERE id = $3 AND owner_id = $4
		RETURNING id, owner_id, url, title, created_at, updated_at`,
		title, url, id, ownerID,
	).Scan(&b.ID, &b.OwnerID, &b.URL, &b.Title, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, r.translate("update bookmark", err)
	}
	return &b, nil
}

// Delete removes the record, scoped to (id, owner). Zero rows affected means
// the record does not exist or is not the caller's.
func (r *BookmarkRepository) Delete(ownerID, id string) error {
	result, err := r.DB.Exec(`DELETE FROM bookmarks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return r.translate("delete bookmark", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return r.translate("delete bookmark", err)
	}
	if affected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// ListByOwner returns all of one owner's records, newest first.
func (r *BookmarkRepository) ListByOwner(ownerID string) ([]model.Bookmark, error) {
	rows, err := r.DB.Query(`SELECT id, owner_id, url, title, created_at, updated_at
		FROM bookmarks WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, r.translate("list bookmarks", err)
	}
	defer rows.Close()

	bookmarks := []model.Bookmark{}
	for rows.Next() {
		var b model.Bookmark
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.URL, &b.Title, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, r.translate("scan bookmark row", err)
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, r.translate("list bookmarks", err)
	}
	return bookmarks, nil
}

// translate maps store errors to the domain taxonomy. Raw pq error codes
// must not leak past this package.
func (r *BookmarkRepository) translate(op string, err error) error {
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pqErr) && pqErr.Code == uniqueViolation:
		return model.ErrDuplicateURL
	case errors.Is(err, sql.ErrNoRows):
		return model.ErrNotFound
	case isTransient(err):
		logger.Sugar.Errorf("Store unavailable, failed to %s: %v", op, err)
		return model.ErrUnavailable
	default:
		logger.Sugar.Errorf("Failed to %s: %v", op, err)
		return err
	}
}

func isTransient(err error) bool {
	var netErr net.Error
	return errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.As(err, &netErr)
}
