package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/x-xyz/nftgallery/base/ctx"
	"github.com/x-xyz/nftgallery/base/goroutine"
	"github.com/x-xyz/nftgallery/base/log"
	"github.com/x-xyz/nftgallery/base/validator"
	"github.com/x-xyz/nftgallery/domain"
	"github.com/x-xyz/nftgallery/domain/gallery"
	"github.com/x-xyz/nftgallery/domain/nft"
	"golang.org/x/xerrors"
)

type session struct {
	id  string
	mgr *manager

	mu         sync.Mutex
	vm         *ViewModel
	owner      domain.Address
	input      string
	loading    bool
	empty      bool
	generation uint64
	cancel     context.CancelFunc
	recent     []string
}

func newSession(id string, mgr *manager) *session {
	return &session{
		id:     id,
		mgr:    mgr,
		vm:     NewViewModel(mgr.pageSize),
		recent: []string{},
	}
}

func (s *session) Id() string {
	return s.id
}

func (s *session) Status() gallery.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gallery.Status{
		Id:             s.id,
		Owner:          s.owner,
		Input:          s.input,
		Loading:        s.loading,
		Empty:          s.empty,
		Generation:     s.generation,
		Count:          s.vm.Len(),
		RecentSearches: append([]string{}, s.recent...),
	}
}

func (s *session) Connect(c ctx.Ctx, address domain.Address) error {
	if !validator.IsValidAddress(string(address)) {
		return domain.ErrInvalidAddress
	}
	lc, gen := s.begin(c, string(address))
	s.load(lc, gen, string(address), false)
	return nil
}

func (s *session) Search(c ctx.Ctx, input string) error {
	input, err := s.prepareSearch(input)
	if err != nil {
		return err
	}
	lc, gen := s.begin(c, input)
	s.load(lc, gen, input, true)
	return nil
}

func (s *session) ConnectAsync(c ctx.Ctx, address domain.Address) error {
	if !validator.IsValidAddress(string(address)) {
		return domain.ErrInvalidAddress
	}
	lc, gen := s.begin(ctx.Detach(c), string(address))
	return s.schedule(lc, gen, string(address), false)
}

func (s *session) SearchAsync(c ctx.Ctx, input string) error {
	input, err := s.prepareSearch(input)
	if err != nil {
		return err
	}
	lc, gen := s.begin(ctx.Detach(c), input)
	return s.schedule(lc, gen, input, true)
}

// Disconnect drops the owner and its collection, favorites and recent searches stay
func (s *session) Disconnect(c ctx.Ctx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.owner = ""
	s.input = ""
	s.loading = false
	s.empty = false
	s.vm.Replace(nil)
	c.WithField("session", s.id).Info("disconnected")
}

func (s *session) View(c ctx.Ctx, change gallery.SelectionChange) (gallery.View, error) {
	if change.SortKey != nil && !change.SortKey.IsValid() {
		return gallery.View{}, domain.ErrBadParamInput
	}
	if change.PageSize != nil && *change.PageSize < 1 {
		return gallery.View{}, domain.ErrBadParamInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if change.SearchTerm != nil {
		s.vm.SetSearchTerm(*change.SearchTerm)
	}
	if change.SortKey != nil {
		if err := s.vm.SetSortKey(*change.SortKey); err != nil {
			return gallery.View{}, err
		}
	}
	if change.CollectionFilter != nil {
		s.vm.SetCollectionFilter(*change.CollectionFilter)
	}
	if change.PageSize != nil {
		if err := s.vm.SetPageSize(*change.PageSize); err != nil {
			return gallery.View{}, err
		}
	}
	if change.PageIndex != nil {
		s.vm.SetPage(*change.PageIndex)
	}
	return s.vm.View(), nil
}

func (s *session) Detail(c ctx.Ctx, contract domain.Address, tokenId domain.TokenId) (gallery.ViewItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vm.Detail(contract, tokenId)
}

func (s *session) ToggleFavorite(c ctx.Ctx, contract domain.Address, tokenId domain.TokenId) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, err := s.vm.Detail(contract, tokenId)
	if err != nil {
		return false, err
	}
	return s.vm.ToggleFavorite(item.Nft), nil
}

func (s *session) Favorites(c ctx.Ctx) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vm.Favorites()
}

func (s *session) prepareSearch(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", domain.ErrEmptyOwner
	}
	s.mu.Lock()
	s.remember(input)
	s.mu.Unlock()
	return input, nil
}

// remember keeps the most recent input first, without duplicates
func (s *session) remember(input string) {
	res := []string{input}
	for _, r := range s.recent {
		if strings.EqualFold(r, input) {
			continue
		}
		res = append(res, r)
	}
	if len(res) > s.mgr.recentSearches {
		res = res[:s.mgr.recentSearches]
	}
	s.recent = res
}

// begin supersedes whatever load is in flight and returns the context and
// generation of the new one
func (s *session) begin(parent ctx.Ctx, input string) (ctx.Ctx, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	lc, cancel := ctx.WithCancel(ctx.WithFields(parent, log.Fields{
		"session":    s.id,
		"generation": s.generation,
	}))
	s.cancel = cancel
	s.input = input
	s.loading = true
	s.empty = false
	return lc, s.generation
}

func (s *session) schedule(lc ctx.Ctx, gen uint64, input string, resolve bool) error {
	task, _ := goroutine.Recoverable(lc, func() {
		s.load(lc, gen, input, resolve)
	}, goroutine.WithAfterRecovered(func(interface{}, []byte) {
		s.abort(gen)
	}))
	if err := s.mgr.pool.ScheduleWithTimeout(s.mgr.scheduleTimeout, task); err != nil {
		lc.WithField("err", err).Error("failed to ScheduleWithTimeout")
		s.abort(gen)
		return xerrors.Errorf("%v: %w", err, domain.ErrBusy)
	}
	return nil
}

func (s *session) load(lc ctx.Ctx, gen uint64, input string, resolve bool) {
	owner := input
	if resolve {
		owner = s.mgr.resolveOrPassthrough(lc, input)
	}
	nfts := s.mgr.fetcher.FetchAll(lc, owner)
	s.commit(lc, gen, domain.Address(owner), nfts)
}

func (s *session) commit(lc ctx.Ctx, gen uint64, owner domain.Address, nfts []nft.Nft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		lc.WithField("current", s.generation).Info("discard stale load")
		s.mgr.metrics.BumpSum("load.stale", 1)
		return
	}
	err := lc.Err()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.loading = false
	if err != nil {
		lc.WithField("err", err).Warn("load canceled")
		return
	}
	s.owner = owner
	s.vm.Replace(nfts)
	s.empty = len(nfts) == 0
	s.mgr.metrics.BumpSum("load.done", 1)
}

// abort ends a load that never committed
func (s *session) abort(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.loading = false
}
