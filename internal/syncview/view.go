// Package syncview is the client half of the change feed: a materialized,
// live-updated list of one owner's bookmarks. A View is seeded once by a
// full fetch and from then on changes only by applying events, never by
// re-fetching.
package syncview

import (
	"strings"
	"sync"

	"markhub/internal/bookmark/model"
	"markhub/socket"
)

type State int

const (
	// StateLoading: initial fetch in flight, nothing shown.
	StateLoading State = iota
	// StateLive: list materialized, events being applied.
	StateLive
	// StateDetached: view disposed; terminal. Events are dropped.
	StateDetached
)

type View struct {
	mu      sync.Mutex
	state   State
	records []model.Bookmark
}

func New() *View {
	return &View{state: StateLoading, records: []model.Bookmark{}}
}

// Seed materializes the initial list and moves the view to Live. Called with
// nil on fetch failure: the view still goes Live with an empty list so it
// never sticks in Loading.
func (v *View) Seed(records []model.Bookmark) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateLoading {
		return
	}
	if records != nil {
		v.records = append([]model.Bookmark{}, records...)
	}
	v.state = StateLive
}

// Apply folds one change event into the list. Events arriving before Live or
// after Detach are dropped.
func (v *View) Apply(ev socket.ChangeEvent) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateLive {
		return
	}
	v.records = Reconcile(v.records, ev)
}

// Detach permanently stops the view. Idempotent.
func (v *View) Detach() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = StateDetached
}

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Records returns a copy of the current list.
func (v *View) Records() []model.Bookmark {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]model.Bookmark{}, v.records...)
}

// Search returns the filtered view of the current list.
func (v *View) Search(query string) []model.Bookmark {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Filter(v.records, query)
}

// Reconcile applies one event to a list and returns the new list. Pure and
// idempotent: applying the same insert or delete twice equals applying it
// once. Events are applied in arrival order, never re-sorted by timestamp.
func Reconcile(list []model.Bookmark, ev socket.ChangeEvent) []model.Bookmark {
	switch ev.Type {
	case socket.InsertType, socket.UpdateType:
		for i := range list {
			if list[i].ID == ev.Record.ID {
				out := append([]model.Bookmark{}, list...)
				out[i] = ev.Record
				return out
			}
		}
		// Unknown id: prepend. For an update this can happen when this view
		// subscribed after the original insert event; prepending may place
		// the record out of creation order, which is accepted.
		return append([]model.Bookmark{ev.Record}, list...)

	case socket.DeleteType:
		out := make([]model.Bookmark, 0, len(list))
		for _, b := range list {
			if b.ID != ev.Record.ID {
				out = append(out, b)
			}
		}
		return out
	}
	return list
}

// Filter returns the ordered sub-sequence of records whose title or url
// contains the trimmed, lowercased query. Empty query returns the full list.
// Always a fresh slice, so Search never hands out the view's backing array.
func Filter(list []model.Bookmark, query string) []model.Bookmark {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]model.Bookmark{}, list...)
	}
	out := []model.Bookmark{}
	for _, b := range list {
		if strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.URL), q) {
			out = append(out, b)
		}
	}
	return out
}
