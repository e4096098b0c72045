// Package devstore is the in-memory data store behind the development API.
// State lives for the lifetime of the process.
package devstore

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/spesa/internal/catalog"
	"github.com/angelmondragon/spesa/pkg/auth"
	pkgerrors "github.com/angelmondragon/spesa/pkg/errors"
	"github.com/angelmondragon/spesa/pkg/security"
)

const invalidCredentialsMessage = "Could not validate user"

type userRecord struct {
	user catalog.User
	hash string
}

type historyRecord struct {
	entry catalog.HistoryEntry
	items []catalog.HistoryItem
}

// Store holds every collection of the API. All methods are safe for
// concurrent use.
type Store struct {
	mu     sync.RWMutex
	hasher *security.Hasher
	now    func() time.Time

	users        map[int64]*userRecord
	supermarkets []catalog.Supermarket
	products     []catalog.Product
	recipes      []catalog.Recipe
	cart         []catalog.CartItem
	favorites    map[int64][]int64
	history      []historyRecord

	seq map[string]int64
}

type Option func(*Store)

// WithClock overrides the time source used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(hasher *security.Hasher, opts ...Option) *Store {
	s := &Store{
		hasher:    hasher,
		now:       time.Now,
		users:     make(map[int64]*userRecord),
		favorites: make(map[int64][]int64),
		seq:       make(map[string]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) nextID(kind string) int64 {
	s.seq[kind]++
	return s.seq[kind]
}

func notFound(what string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, what+" not found")
}

func badRequest(msg string) error {
	return pkgerrors.New(pkgerrors.CodeConflict, msg)
}

// CreateUser registers a user. Username and email are unique.
func (s *Store) CreateUser(_ context.Context, reg catalog.Registration) (catalog.User, error) {
	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return catalog.User{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid password")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.users {
		if strings.EqualFold(rec.user.Username, reg.Username) || strings.EqualFold(rec.user.Email, reg.Email) {
			return catalog.User{}, badRequest("Username or email already registered")
		}
	}
	role := reg.Role
	if role == "" {
		role = auth.RoleUser
	}
	user := catalog.User{
		ID:        s.nextID("user"),
		Username:  reg.Username,
		Email:     reg.Email,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Role:      role,
		IsActive:  true,
	}
	s.users[user.ID] = &userRecord{user: user, hash: hash}
	return user, nil
}

// Authenticate checks a username and password pair.
func (s *Store) Authenticate(_ context.Context, username, password string) (catalog.User, error) {
	s.mu.RLock()
	var (
		found *userRecord
		hash  string
	)
	for _, rec := range s.users {
		if rec.user.Username == username {
			found, hash = rec, rec.hash
			break
		}
	}
	s.mu.RUnlock()

	if found == nil || !found.user.IsActive {
		return catalog.User{}, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	ok, err := s.hasher.Verify(password, hash)
	if err != nil || !ok {
		return catalog.User{}, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if s.hasher.NeedsRehash(hash) {
		// a failed upgrade leaves the old hash in place, it still verifies
		if upgraded, err := s.hasher.Hash(password); err == nil {
			s.mu.Lock()
			found.hash = upgraded
			s.mu.Unlock()
		}
	}
	return found.user, nil
}

func (s *Store) User(_ context.Context, id int64) (catalog.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[id]
	if !ok {
		return catalog.User{}, notFound("User")
	}
	return rec.user, nil
}

// Users returns every registered user ordered by id.
func (s *Store) Users(context.Context) []catalog.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.User, 0, len(s.users))
	for _, rec := range s.users {
		out = append(out, rec.user)
	}
	slices.SortFunc(out, func(a, b catalog.User) int { return cmp.Compare(a.ID, b.ID) })
	return out
}
