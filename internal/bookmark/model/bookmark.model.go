package model

import "time"

// Bookmark is one saved URL/title pair. OwnerID is the authenticated
// principal the record belongs to; it is kept out of JSON so responses and
// change events never carry it to the client.
type Bookmark struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"-"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// UpdatePatch is a partial update. Nil means "leave unchanged"; at least one
// field must be set.
type UpdatePatch struct {
	Title *string `json:"title"`
	URL   *string `json:"url"`
}

type TitleResponse struct {
	Title string `json:"title"`
}
