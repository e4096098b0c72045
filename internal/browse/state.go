package browse

import (
	"github.com/angelmondragon/spesa/internal/catalog"
	"github.com/angelmondragon/spesa/internal/virtual"
)

// Status filters the shopping list by purchase state.
type Status string

const (
	StatusAll     Status = "all"
	StatusPending Status = "pending"
	StatusBought  Status = "bought"
)

// Next cycles all -> pending -> bought -> all.
func (s Status) Next() Status {
	switch s {
	case StatusAll:
		return StatusPending
	case StatusPending:
		return StatusBought
	default:
		return StatusAll
	}
}

// ViewState is the immutable input state of a list view. It changes only
// through Reduce.
type ViewState struct {
	Search   string
	Category string
	Store    int64
	Status   Status
	Range    virtual.Range
}

func DefaultState() ViewState {
	return ViewState{Category: CategoryAll, Store: AllStores, Status: StatusAll}
}

// Criteria projects the state onto the filter/sort engine.
func (s ViewState) Criteria(favorites catalog.IDSet) Criteria {
	return Criteria{Search: s.Search, Category: s.Category, Store: s.Store, Favorites: favorites}
}

// Action is a single state transition.
type Action interface {
	reduce(ViewState) ViewState
}

type SetSearch struct{ Text string }
type SetCategory struct{ Category string }
type SetStore struct{ Store int64 }
type SetStatus struct{ Status Status }
type SetRange struct{ Range virtual.Range }
type Reset struct{}

// Filter changes invalidate the visible range; the view recomputes it from
// the top of the new sequence.
func (a SetSearch) reduce(s ViewState) ViewState {
	s.Search = a.Text
	s.Range = virtual.Range{}
	return s
}

func (a SetCategory) reduce(s ViewState) ViewState {
	if a.Category == "" {
		a.Category = CategoryAll
	}
	s.Category = a.Category
	s.Range = virtual.Range{}
	return s
}

func (a SetStore) reduce(s ViewState) ViewState {
	s.Store = a.Store
	s.Range = virtual.Range{}
	return s
}

func (a SetStatus) reduce(s ViewState) ViewState {
	if a.Status == "" {
		a.Status = StatusAll
	}
	s.Status = a.Status
	return s
}

func (a SetRange) reduce(s ViewState) ViewState {
	s.Range = a.Range
	return s
}

func (Reset) reduce(ViewState) ViewState {
	return DefaultState()
}

// Reduce applies a to s and returns the new state. s is not modified.
func Reduce(s ViewState, a Action) ViewState {
	if a == nil {
		return s
	}
	return a.reduce(s)
}
