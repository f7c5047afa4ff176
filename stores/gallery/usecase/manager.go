package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viney-shih/goroutines"
	"github.com/x-xyz/nftgallery/base/ctx"
	"github.com/x-xyz/nftgallery/base/log"
	"github.com/x-xyz/nftgallery/base/metrics"
	"github.com/x-xyz/nftgallery/base/validator"
	"github.com/x-xyz/nftgallery/domain"
	"github.com/x-xyz/nftgallery/domain/gallery"
	"github.com/x-xyz/nftgallery/domain/nft"
)

type ManagerCfg struct {
	Fetcher nft.Fetcher
	// Resolver is optional, ens names are passed through to the fetcher without it
	Resolver gallery.Resolver

	PageSize       int
	RecentSearches int
	// SessionTtl expires sessions idle for longer, 0 keeps them until deleted
	SessionTtl time.Duration
	Workers    int
}

type entry struct {
	session    *session
	lastAccess time.Time
}

type manager struct {
	fetcher        nft.Fetcher
	resolver       gallery.Resolver
	pageSize       int
	recentSearches int
	sessionTtl     time.Duration

	pool            *goroutines.Pool
	scheduleTimeout time.Duration
	metrics         metrics.Service
	now             func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewManager(cfg *ManagerCfg) gallery.Usecase {
	return newManager(cfg)
}

func newManager(cfg *ManagerCfg) *manager {
	pageSize := cfg.PageSize
	if pageSize < 1 {
		pageSize = gallery.DefaultPageSize
	}
	recent := cfg.RecentSearches
	if recent < 1 {
		recent = gallery.DefaultRecentSearches
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 16
	}
	return &manager{
		fetcher:         cfg.Fetcher,
		resolver:        cfg.Resolver,
		pageSize:        pageSize,
		recentSearches:  recent,
		sessionTtl:      cfg.SessionTtl,
		pool:            goroutines.NewPool(workers, goroutines.WithTaskQueueLength(1024), goroutines.WithPreAllocWorkers(workers)),
		scheduleTimeout: 3 * time.Second,
		metrics:         metrics.New("gallery"),
		now:             time.Now,
		sessions:        map[string]*entry{},
	}
}

func (m *manager) Create(c ctx.Ctx) gallery.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep(c)

	s := newSession(uuid.New().String(), m)
	m.sessions[s.id] = &entry{session: s, lastAccess: m.now()}
	m.metrics.BumpSum("session.created", 1)
	c.WithField("session", s.id).Info("session created")
	return s
}

func (m *manager) Get(c ctx.Ctx, id string) (gallery.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep(c)

	e, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	e.lastAccess = m.now()
	return e.session, nil
}

func (m *manager) Delete(c ctx.Ctx, id string) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return domain.ErrSessionNotFound
	}
	e.session.Disconnect(c)
	return nil
}

func (m *manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = map[string]*entry{}
	m.mu.Unlock()

	for _, e := range sessions {
		e.session.Disconnect(ctx.Background())
	}
	m.pool.Release()
}

// sweep drops idle sessions, m.mu must be held
func (m *manager) sweep(c ctx.Ctx) {
	if m.sessionTtl <= 0 {
		return
	}
	now := m.now()
	for id, e := range m.sessions {
		if now.Sub(e.lastAccess) <= m.sessionTtl {
			continue
		}
		delete(m.sessions, id)
		e.session.Disconnect(c)
		c.WithField("session", id).Info("session expired")
	}
}

// resolveOrPassthrough maps an ens name to its address, any other input or a
// failed resolution gives back the input unchanged
func (m *manager) resolveOrPassthrough(c ctx.Ctx, input string) string {
	if m.resolver == nil || !validator.IsEnsName(input) {
		return input
	}
	addr, err := m.resolver.Resolve(c, input)
	if err != nil {
		c.WithFields(log.Fields{
			"err":  err,
			"name": input,
		}).Warn("failed to resolve ens name, pass through")
		return input
	}
	if addr.IsEmpty() {
		c.WithField("name", input).Info("ens name not registered, pass through")
		return input
	}
	return string(addr)
}
