package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/riskibarqy/scout-pro/internal/domain/alert"
	"github.com/riskibarqy/scout-pro/internal/domain/clublink"
	"github.com/riskibarqy/scout-pro/internal/domain/player"
	"github.com/riskibarqy/scout-pro/internal/domain/roster"
)

type state struct {
	players      []player.Player
	links        map[int64]clublink.ClubLink
	alerts       []alert.Alert
	nextPlayerID int64
	nextLinkID   int64
	nextAlertID  int64
}

func newState() state {
	return state{
		links:        make(map[int64]clublink.ClubLink),
		nextPlayerID: 1,
		nextLinkID:   1,
		nextAlertID:  1,
	}
}

func (s state) clone() state {
	out := s
	out.players = slices.Clone(s.players)
	out.alerts = slices.Clone(s.alerts)
	out.links = make(map[int64]clublink.ClubLink, len(s.links))
	for k, v := range s.links {
		out.links[k] = v
	}
	return out
}

// RosterStore keeps the roster in process memory. Transactions are
// serialized and work on a copy that replaces the committed state only
// when fn succeeds.
type RosterStore struct {
	mu    sync.RWMutex
	txMu  sync.Mutex
	state state
	now   func() time.Time
}

func NewRosterStore() *RosterStore {
	return &RosterStore{state: newState(), now: time.Now}
}

func (s *RosterStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx roster.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	working := s.state.clone()
	s.mu.RUnlock()

	tx := &rosterTx{state: &working, now: s.now}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = working
	s.mu.Unlock()
	return nil
}

// List returns every player with its club link, ordered by ID.
func (s *RosterStore) List(_ context.Context) ([]player.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]player.Profile, 0, len(s.state.players))
	for _, p := range s.state.players {
		out = append(out, s.profile(p))
	}
	return out, nil
}

func (s *RosterStore) GetByID(_ context.Context, id int64) (player.Profile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.state.players {
		if p.ID == id {
			return s.profile(p), true, nil
		}
	}
	return player.Profile{}, false, nil
}

func (s *RosterStore) profile(p player.Player) player.Profile {
	out := player.Profile{Player: p}
	if link, ok := s.state.links[p.ID]; ok {
		out.ClubLink = &link
	}
	return out
}

// ListActive returns active alerts, newest first.
func (s *RosterStore) ListActive(_ context.Context) ([]alert.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]alert.Alert, 0, len(s.state.alerts))
	for i := len(s.state.alerts) - 1; i >= 0; i-- {
		if s.state.alerts[i].Active {
			out = append(out, s.state.alerts[i])
		}
	}
	return out, nil
}

// ListAlerts returns every alert in insertion order, active or not.
func (s *RosterStore) ListAlerts(_ context.Context) ([]alert.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.state.alerts), nil
}

func (s *RosterStore) Deactivate(_ context.Context, id int64) (bool, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.alerts {
		if s.state.alerts[i].ID != id {
			continue
		}
		if !s.state.alerts[i].Active {
			return false, nil
		}
		s.state.alerts[i].Active = false
		return true, nil
	}
	return false, nil
}

type rosterTx struct {
	state *state
	now   func() time.Time
}

func (t *rosterTx) FindPlayerByExternalID(_ context.Context, externalID string) (player.Player, bool, error) {
	for _, p := range t.state.players {
		if p.HasExternalID(externalID) {
			return p, true, nil
		}
	}
	return player.Player{}, false, nil
}

func (t *rosterTx) FindPlayersByName(_ context.Context, name string) ([]player.Player, error) {
	out := make([]player.Player, 0, 1)
	for _, p := range t.state.players {
		if p.Name == name {
			out = append(out, p)
		}
	}
	return out, nil
}

func (t *rosterTx) InsertPlayer(_ context.Context, p player.Player) (player.Player, error) {
	if err := t.checkExternalID(p); err != nil {
		return player.Player{}, err
	}

	now := t.now().UTC()
	p.ID = t.state.nextPlayerID
	t.state.nextPlayerID++
	p.CreatedAt = now
	p.UpdatedAt = now
	t.state.players = append(t.state.players, p)
	return p, nil
}

func (t *rosterTx) UpdatePlayer(_ context.Context, p player.Player) (player.Player, error) {
	if err := t.checkExternalID(p); err != nil {
		return player.Player{}, err
	}

	for i := range t.state.players {
		if t.state.players[i].ID != p.ID {
			continue
		}
		p.CreatedAt = t.state.players[i].CreatedAt
		p.UpdatedAt = t.now().UTC()
		t.state.players[i] = p
		return p, nil
	}
	return player.Player{}, fmt.Errorf("player id=%d not found", p.ID)
}

func (t *rosterTx) checkExternalID(p player.Player) error {
	if p.ExternalID == nil {
		return nil
	}
	for _, existing := range t.state.players {
		if existing.ID != p.ID && existing.HasExternalID(*p.ExternalID) {
			return fmt.Errorf("%w: external id=%s belongs to player id=%d", roster.ErrConflict, *p.ExternalID, existing.ID)
		}
	}
	return nil
}

func (t *rosterTx) UpsertClubLink(_ context.Context, link clublink.ClubLink) (clublink.ClubLink, error) {
	if existing, ok := t.state.links[link.PlayerID]; ok {
		link.ID = existing.ID
	} else {
		link.ID = t.state.nextLinkID
		t.state.nextLinkID++
	}
	if link.UpdatedAt.IsZero() {
		link.UpdatedAt = t.now().UTC()
	}
	t.state.links[link.PlayerID] = link
	return link, nil
}

func (t *rosterTx) InsertAlert(_ context.Context, a alert.Alert) (alert.Alert, error) {
	if err := a.Validate(); err != nil {
		return alert.Alert{}, err
	}
	a.ID = t.state.nextAlertID
	t.state.nextAlertID++
	if a.CreatedAt.IsZero() {
		a.CreatedAt = t.now().UTC()
	}
	t.state.alerts = append(t.state.alerts, a)
	return a, nil
}

func (t *rosterTx) HasActiveAlert(_ context.Context, playerID int64, alertType string) (bool, error) {
	for _, a := range t.state.alerts {
		if a.PlayerID == playerID && a.Type == alertType && a.Active {
			return true, nil
		}
	}
	return false, nil
}
