package usecases

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kjayaram/gridpath/internal/core/domain"
)

// SessionView is the externally visible state of a drawing session.
type SessionView struct {
	ID        string            `json:"id"`
	Points    []domain.GeoPoint `json:"points"`
	LengthKm  float64           `json:"length_km"`
	Drawing   bool              `json:"drawing"`
	CreatedAt time.Time         `json:"created_at"`
}

type sessionEntry struct {
	mu        sync.Mutex
	session   *domain.RouteSession
	createdAt time.Time
}

// SessionService manages interactive drawing sessions. Each session is
// mutated under its own lock; the registry lock only guards the map.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

// NewSessionService creates an empty session registry.
func NewSessionService() *SessionService {
	return &SessionService{sessions: make(map[string]*sessionEntry)}
}

// Create starts a new drawing session and returns its state.
func (s *SessionService) Create() SessionView {
	entry := &sessionEntry{
		session:   domain.NewRouteSession(),
		createdAt: time.Now(),
	}
	entry.session.Start()

	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = entry
	s.mu.Unlock()

	return view(id, entry)
}

// Get returns the current state of a session.
func (s *SessionService) Get(id string) (SessionView, error) {
	entry, err := s.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return view(id, entry), nil
}

// List returns all sessions ordered by creation time.
func (s *SessionService) List() []SessionView {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	entries := make([]*sessionEntry, 0, len(s.sessions))
	for id, e := range s.sessions {
		ids = append(ids, id)
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	views := make([]SessionView, 0, len(entries))
	for i, e := range entries {
		e.mu.Lock()
		views = append(views, view(ids[i], e))
		e.mu.Unlock()
	}
	for i := 1; i < len(views); i++ {
		for j := i; j > 0 && views[j].CreatedAt.Before(views[j-1].CreatedAt); j-- {
			views[j], views[j-1] = views[j-1], views[j]
		}
	}
	return views
}

// AddPoint appends a point to a drawing session and returns the updated state.
func (s *SessionService) AddPoint(id string, p domain.GeoPoint) (SessionView, error) {
	entry, err := s.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := entry.session.AddPoint(p); err != nil {
		return SessionView{}, err
	}
	return view(id, entry), nil
}

// Stop pauses drawing, keeping the route.
func (s *SessionService) Stop(id string) (SessionView, error) {
	entry, err := s.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.session.Stop()
	return view(id, entry), nil
}

// Clear resets the session to an empty idle state.
func (s *SessionService) Clear(id string) (SessionView, error) {
	entry, err := s.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.session.Clear()
	return view(id, entry), nil
}

// Commit finalizes the route. The session survives so the caller can still
// inspect or clear it afterwards.
func (s *SessionService) Commit(id string) (*domain.CommittedRoute, error) {
	entry, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.session.Commit()
}

// Delete discards a session entirely.
func (s *SessionService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *SessionService) lookup(id string) (*sessionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return entry, nil
}

func view(id string, e *sessionEntry) SessionView {
	return SessionView{
		ID:        id,
		Points:    e.session.Points(),
		LengthKm:  e.session.TotalLengthKm(),
		Drawing:   e.session.Drawing(),
		CreatedAt: e.createdAt,
	}
}
