package router

import (
	"database/sql"
	"net/http"

	"markhub/internal/bookmark"
	"markhub/internal/bookmark/repository"
	"markhub/internal/bookmark/service"
	"markhub/internal/title"
	"markhub/middleware"
	"markhub/pkg/config"
	"markhub/socket"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
)

func Setup(cfg *config.Config, db *sql.DB, hub *socket.Hub, cache *redis.Client) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	bookmarkRepo := repository.NewBookmarkRepository(db)
	bookmarkService := service.NewBookmarkService(bookmarkRepo, hub)
	titleResolver := title.NewResolver(cache)
	bookmarkHandler := bookmark.NewBookmarkHandler(bookmarkService, titleResolver)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Change subscription: one websocket per open tab, scoped to the
	// authenticated owner.
	r.With(middleware.AuthMiddleware).Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ownerID := r.Context().Value(middleware.UserIDKey).(string)
		socket.ServeWs(hub, w, r, ownerID)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)

		r.Get("/bookmarks", bookmarkHandler.List)
		r.Post("/bookmarks", bookmarkHandler.Create)
		r.Patch("/bookmarks/{id}", bookmarkHandler.Update)
		r.Delete("/bookmarks/{id}", bookmarkHandler.Delete)
		r.Get("/resolve-title", bookmarkHandler.ResolveTitle)
	})

	return r
}
