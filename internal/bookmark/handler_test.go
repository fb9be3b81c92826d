package bookmark

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"markhub/internal/bookmark/model"
	"markhub/internal/bookmark/repository"
	"markhub/internal/bookmark/service"
	"markhub/internal/title"
	"markhub/middleware"
	"markhub/pkg/logger"
	"markhub/socket"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init(false)
	os.Exit(m.Run())
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, socket.ChangeEvent) {}

// fakeAuth binds a fixed owner identity, standing in for the JWT middleware.
func fakeAuth(ownerID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserIDKey, ownerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newTestRouter(t *testing.T, ownerID string) (chi.Router, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := service.NewBookmarkService(repository.NewBookmarkRepository(db), noopPublisher{})
	h := NewBookmarkHandler(svc, title.NewResolver(nil))

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(fakeAuth(ownerID))
		r.Get("/bookmarks", h.List)
		r.Post("/bookmarks", h.Create)
		r.Patch("/bookmarks/{id}", h.Update)
		r.Delete("/bookmarks/{id}", h.Delete)
		r.Get("/resolve-title", h.ResolveTitle)
	})
	return r, mock
}

func doJSON(t *testing.T, r chi.Router, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

var rowColumns = []string{"id", "owner_id", "url", "title", "created_at", "updated_at"}

func TestCreateReturns201WithRecord(t *testing.T) {
	r, mock := newTestRouter(t, "owner-a")
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO bookmarks").
		WillReturnRows(sqlmock.NewRows(rowColumns).
			AddRow("id-1", "owner-a", "https://example.com", "Example", now, now))

	rec := doJSON(t, r, http.MethodPost, "/api/bookmarks", `{"url":"https://example.com","title":"Example"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got model.Bookmark
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "id-1", got.ID)
	assert.NotContains(t, rec.Body.String(), "owner-a", "owner must not appear in responses")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateReturns409(t *testing.T) {
	r, mock := newTestRouter(t, "owner-a")

	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	rec := doJSON(t, r, http.MethodPost, "/api/bookmarks", `{"url":"https://example.com","title":"Dup"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "DUPLICATE_URL")
}

func TestCreateInvalidURLReturns400(t *testing.T) {
	r, _ := newTestRouter(t, "owner-a")

	rec := doJSON(t, r, http.MethodPost, "/api/bookmarks", `{"url":"example.com","title":"No scheme"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_URL")
}

func TestUpdateMissingTargetReturns404(t *testing.T) {
	r, mock := newTestRouter(t, "owner-a")

	mock.ExpectQuery("UPDATE bookmarks").
		WillReturnError(sql.ErrNoRows)

	rec := doJSON(t, r, http.MethodPatch, "/api/bookmarks/id-1", `{"title":"New"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	// The body must not reveal whether the record exists under another owner.
	assert.NotContains(t, rec.Body.String(), "owner")
}

func TestUpdateEmptyPatchReturns400(t *testing.T) {
	r, _ := newTestRouter(t, "owner-a")

	rec := doJSON(t, r, http.MethodPatch, "/api/bookmarks/id-1", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_REQUEST")
}

func TestDeleteReturns200ThenListIsEmpty(t *testing.T) {
	r, mock := newTestRouter(t, "owner-a")

	mock.ExpectExec("DELETE FROM bookmarks").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, owner_id, url, title, created_at, updated_at FROM bookmarks").
		WillReturnRows(sqlmock.NewRows(rowColumns))

	rec := doJSON(t, r, http.MethodDelete, "/api/bookmarks/id-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/bookmarks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestResolveTitleMissingParamReturns400(t *testing.T) {
	r, _ := newTestRouter(t, "owner-a")

	rec := doJSON(t, r, http.MethodGet, "/api/resolve-title", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolveTitleBadURLReturns400(t *testing.T) {
	r, _ := newTestRouter(t, "owner-a")

	rec := doJSON(t, r, http.MethodGet, "/api/resolve-title?url=not-a-url", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_URL")
}
