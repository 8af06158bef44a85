package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"mbaayadmin/internal/domain"
	"mbaayadmin/internal/querycache"
	"mbaayadmin/internal/repos"
)

// SessionService maps sid cookies to signed-in principals. Memory is the
// source of truth while the process runs; SQLite only lets sessions survive a
// restart and is read once by Restore.
type SessionService struct {
	Repo   *repos.SessionRepo // nil keeps sessions in memory only
	Caches *querycache.Registry

	box  *sealer
	mu   sync.RWMutex
	live map[string]domain.Principal
}

func NewSessionService(repo *repos.SessionRepo, caches *querycache.Registry, secret string) (*SessionService, error) {
	box, err := newSealer(secret)
	if err != nil {
		return nil, err
	}
	if caches == nil {
		caches = querycache.NewRegistry(querycache.Options{})
	}
	return &SessionService{Repo: repo, Caches: caches, box: box, live: make(map[string]domain.Principal)}, nil
}

// Restore loads every unexpired persisted session. Rows sealed with another
// secret are dropped.
func (s *SessionService) Restore(now time.Time) (int, error) {
	if s.Repo == nil {
		return 0, nil
	}
	rows, err := s.Repo.LoadAll(now)
	if err != nil {
		return 0, fmt.Errorf("load sessions: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range rows {
		tok, err := s.box.open(r.TokenSealed)
		if err != nil {
			log.Printf("[session] dropping %s: %v", r.ID, err)
			_ = s.Repo.Delete(r.ID)
			continue
		}
		role, _ := domain.ParseRole(r.Role)
		s.live[r.ID] = domain.Principal{
			ID:          r.AdminID,
			DisplayName: r.DisplayName,
			Email:       r.Email,
			Token:       tok,
			Role:        role,
			ExpiresAt:   r.Expiry(),
		}
		n++
	}
	return n, nil
}

// SetPrincipal replaces whatever sid held. A different admin signing in on
// the same browser starts with an empty cache. The in-memory session is live
// even when persisting it fails; that error is returned for logging.
func (s *SessionService) SetPrincipal(sid string, p domain.Principal) error {
	if sid == "" {
		return ErrNoSession
	}
	sid = strings.Clone(sid)
	s.mu.Lock()
	prev, had := s.live[sid]
	s.live[sid] = p
	s.mu.Unlock()
	if had && prev.ID != p.ID {
		s.Caches.Drop(sid)
	}
	if s.Repo == nil {
		return nil
	}
	sealed, err := s.box.seal(p.Token)
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}
	return s.Repo.Upsert(repos.SessionRow{
		ID:          sid,
		AdminID:     p.ID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Role:        string(p.Role),
		TokenSealed: sealed,
		ExpiresAt:   p.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Principal is a plain read; expiry is judged by the caller.
func (s *SessionService) Principal(sid string) (domain.Principal, bool) {
	if sid == "" {
		return domain.Principal{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.live[sid]
	return p, ok
}

// Logout forgets sid and closes its query cache so that responses still in
// flight are discarded.
func (s *SessionService) Logout(sid string) error {
	if sid == "" {
		return ErrNoSession
	}
	s.mu.Lock()
	_, had := s.live[sid]
	delete(s.live, sid)
	s.mu.Unlock()
	s.Caches.Drop(sid)
	if s.Repo != nil {
		if err := s.Repo.Delete(sid); err != nil {
			return err
		}
	}
	if !had {
		return ErrNoSession
	}
	return nil
}

// Expire forgets sid when its principal had expired by now. A session that
// was renewed in the meantime is left alone.
func (s *SessionService) Expire(sid string, now time.Time) bool {
	s.mu.Lock()
	p, ok := s.live[sid]
	if !ok || !p.Expired(now) {
		s.mu.Unlock()
		return false
	}
	delete(s.live, sid)
	s.mu.Unlock()
	s.Caches.Drop(sid)
	if s.Repo != nil {
		if err := s.Repo.Delete(sid); err != nil {
			log.Printf("[session] delete expired %s: %v", sid, err)
		}
	}
	return true
}

// Sweep expires every session whose token ran out and closes caches that no
// session owns any more. It returns the number of sessions removed.
func (s *SessionService) Sweep(now time.Time) int {
	s.mu.RLock()
	var expired []string
	for sid, p := range s.live {
		if p.Expired(now) {
			expired = append(expired, sid)
		}
	}
	s.mu.RUnlock()

	n := 0
	for _, sid := range expired {
		if s.Expire(sid, now) {
			n++
		}
	}
	s.Caches.Retain(func(sid string) bool {
		_, ok := s.Principal(sid)
		return ok
	})
	return n
}

// RunSweeper calls Sweep every interval until ctx ends.
func (s *SessionService) RunSweeper(ctx context.Context, interval time.Duration, now func() time.Time) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(now()); n > 0 {
				log.Printf("[session] swept %d expired session(s)", n)
			}
		}
	}
}

// Cache returns the query cache of sid.
func (s *SessionService) Cache(sid string) *querycache.Cache {
	return s.Caches.For(sid)
}

func (s *SessionService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.live)
}

// IsNoSession is true for ErrNoSession, which logout treats as success.
func IsNoSession(err error) bool { return errors.Is(err, ErrNoSession) }
