package service

import (
	"fmt"
	"strings"

	"markhub/internal/bookmark/model"
	"markhub/internal/bookmark/repository"
	"markhub/socket"

	"github.com/google/uuid"
)

// EventPublisher is how committed mutations reach open subscriptions.
// Satisfied by *socket.Hub.
type EventPublisher interface {
	Publish(ownerID string, ev socket.ChangeEvent)
}

// BookmarkService is the mutation gateway: it validates requests, applies
// them to the store, and publishes the resulting change event. All ownership
// comes from the authenticated identity bound to the call, never from the
// request payload.
type BookmarkService struct {
	Repo *repository.BookmarkRepository
	Hub  EventPublisher
}

func NewBookmarkService(repo *repository.BookmarkRepository, hub EventPublisher) *BookmarkService {
	return &BookmarkService{Repo: repo, Hub: hub}
}

func (s *BookmarkService) Create(ownerID, rawURL, title string) (*model.Bookmark, error) {
	rawURL = strings.TrimSpace(rawURL)
	title = strings.TrimSpace(title)
	if err := model.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	if err := model.ValidateTitle(title); err != nil {
		return nil, err
	}

	// Fast feedback for the common duplicate case. The unique constraint on
	// (owner_id, url) remains the authoritative guard: two concurrent creates
	// can both pass this check and the insert below still admits only one.
	exists, err := s.Repo.ExistsByURL(ownerID, rawURL)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.ErrDuplicateURL
	}

	b, err := s.Repo.Create(uuid.NewString(), ownerID, rawURL, title)
	if err != nil {
		return nil, err
	}

	s.Hub.Publish(ownerID, socket.ChangeEvent{Type: socket.InsertType, Record: *b})
	return b, nil
}

func (s *BookmarkService) Update(ownerID, id string, patch model.UpdatePatch) (*model.Bookmark, error) {
	if patch.Title == nil && patch.URL == nil {
		return nil, fmt.Errorf("%w: nothing to update", model.ErrInvalidRequest)
	}
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		if err := model.ValidateTitle(trimmed); err != nil {
			return nil, err
		}
		patch.Title = &trimmed
	}
	if patch.URL != nil {
		trimmed := strings.TrimSpace(*patch.URL)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: url cannot be empty", model.ErrInvalidRequest)
		}
		if err := model.ValidateURL(trimmed); err != nil {
			return nil, err
		}
		patch.URL = &trimmed
	}

	b, err := s.Repo.Update(ownerID, id, patch.Title, patch.URL)
	if err != nil {
		return nil, err
	}

	s.Hub.Publish(ownerID, socket.ChangeEvent{Type: socket.UpdateType, Record: *b})
	return b, nil
}

func (s *BookmarkService) Delete(ownerID, id string) error {
	if err := s.Repo.Delete(ownerID, id); err != nil {
		return err
	}

	// Delete events carry the id only; the rest of the record is gone.
	s.Hub.Publish(ownerID, socket.ChangeEvent{Type: socket.DeleteType, Record: model.Bookmark{ID: id}})
	return nil
}

func (s *BookmarkService) List(ownerID string) ([]model.Bookmark, error) {
	return s.Repo.ListByOwner(ownerID)
}
