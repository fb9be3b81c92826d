package service

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"markhub/internal/bookmark/model"
	"markhub/internal/bookmark/repository"
	"markhub/pkg/logger"
	"markhub/socket"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init(false)
	os.Exit(m.Run())
}

// recordingPublisher captures published events instead of fanning them out.
type recordingPublisher struct {
	owners []string
	events []socket.ChangeEvent
}

func (p *recordingPublisher) Publish(ownerID string, ev socket.ChangeEvent) {
	p.owners = append(p.owners, ownerID)
	p.events = append(p.events, ev)
}

func newService(t *testing.T) (*BookmarkService, sqlmock.Sqlmock, *recordingPublisher) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	pub := &recordingPublisher{}
	svc := NewBookmarkService(repository.NewBookmarkRepository(db), pub)
	return svc, mock, pub
}

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestCreateSuccess(t *testing.T) {
	svc, mock, pub := newService(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("owner-a", "https://example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO bookmarks").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "url", "title", "created_at", "updated_at"}).
			AddRow("id-1", "owner-a", "https://example.com", "Example", testTime, testTime))

	b, err := svc.Create("owner-a", " https://example.com ", " Example ")
	require.NoError(t, err)
	assert.Equal(t, "id-1", b.ID)
	assert.Equal(t, "https://example.com", b.URL)
	assert.Equal(t, "Example", b.Title)

	require.Len(t, pub.events, 1)
	assert.Equal(t, socket.InsertType, pub.events[0].Type)
	assert.Equal(t, "owner-a", pub.owners[0])
	assert.Equal(t, "id-1", pub.events[0].Record.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRejectsBadInputBeforeStore(t *testing.T) {
	svc, mock, pub := newService(t)

	_, err := svc.Create("owner-a", "not a url", "Title")
	assert.ErrorIs(t, err, model.ErrInvalidURL)

	_, err = svc.Create("owner-a", "ftp://example.com", "Title")
	assert.ErrorIs(t, err, model.ErrInvalidURL)

	_, err = svc.Create("owner-a", "https://example.com", "   ")
	assert.ErrorIs(t, err, model.ErrInvalidRequest)

	// Validation failures must have zero store side effects and publish
	// nothing.
	assert.Empty(t, pub.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateCaughtByPrecheck(t *testing.T) {
	svc, mock, pub := newService(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("owner-a", "https://example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := svc.Create("owner-a", "https://example.com", "Dup")
	assert.ErrorIs(t, err, model.ErrDuplicateURL)
	assert.Empty(t, pub.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateCaughtByConstraintRace(t *testing.T) {
	svc, mock, pub := newService(t)

	// Both pre-checks of a concurrent pair can pass; the unique constraint
	// on the insert is the deciding guard.
	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO bookmarks").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := svc.Create("owner-a", "https://example.com", "Dup")
	assert.ErrorIs(t, err, model.ErrDuplicateURL)
	assert.Empty(t, pub.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateValidation(t *testing.T) {
	svc, mock, pub := newService(t)

	_, err := svc.Update("owner-a", "id-1", model.UpdatePatch{})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)

	empty := "   "
	_, err = svc.Update("owner-a", "id-1", model.UpdatePatch{Title: &empty})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)

	_, err = svc.Update("owner-a", "id-1", model.UpdatePatch{URL: &empty})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)

	bad := "no-scheme.com"
	_, err = svc.Update("owner-a", "id-1", model.UpdatePatch{URL: &bad})
	assert.ErrorIs(t, err, model.ErrInvalidURL)

	assert.Empty(t, pub.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSuccessPublishesEvent(t *testing.T) {
	svc, mock, pub := newService(t)

	title := "Example Renamed"
	mock.ExpectQuery("UPDATE bookmarks").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "url", "title", "created_at", "updated_at"}).
			AddRow("id-1", "owner-a", "https://example.com", title, testTime, testTime))

	b, err := svc.Update("owner-a", "id-1", model.UpdatePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, b.Title)

	require.Len(t, pub.events, 1)
	assert.Equal(t, socket.UpdateType, pub.events[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateNotOwnedReportsNotFound(t *testing.T) {
	svc, mock, pub := newService(t)

	title := "New"
	mock.ExpectQuery("UPDATE bookmarks").
		WillReturnError(sql.ErrNoRows)

	_, err := svc.Update("owner-b", "id-1", model.UpdatePatch{Title: &title})
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Empty(t, pub.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePublishesIDOnlyEvent(t *testing.T) {
	svc, mock, pub := newService(t)

	mock.ExpectExec("DELETE FROM bookmarks").
		WithArgs("id-1", "owner-a").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.Delete("owner-a", "id-1"))

	require.Len(t, pub.events, 1)
	assert.Equal(t, socket.DeleteType, pub.events[0].Type)
	assert.Equal(t, "id-1", pub.events[0].Record.ID)
	assert.Empty(t, pub.events[0].Record.URL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNotOwnedReportsNotFound(t *testing.T) {
	svc, mock, pub := newService(t)

	mock.ExpectExec("DELETE FROM bookmarks").
		WithArgs("id-1", "owner-b").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.Delete("owner-b", "id-1")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Empty(t, pub.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}
