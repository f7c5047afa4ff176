package usecase

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/x-xyz/nftgallery/base/ctx"
	hcdomain "github.com/x-xyz/nftgallery/domain/healthcheck"
	"github.com/x-xyz/nftgallery/service/cache/provider"
	"github.com/x-xyz/nftgallery/stores/healthcheck/repository"
)

type memProvider struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func (p *memProvider) Get(c ctx.Ctx, key string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	v, ok := p.data[key]
	if !ok {
		return nil, provider.ErrNotFound
	}
	return v, nil
}

func (p *memProvider) Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.data[key] = value
	return nil
}

func (p *memProvider) Del(c ctx.Ctx, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.data, key)
	return p.err
}

type upstream bool

func (u upstream) HasApiKey() bool { return bool(u) }

func TestCheck(t *testing.T) {
	cases := []struct {
		name     string
		cache    provider.Provider
		upstream Upstream
		ens      bool
		healthy  bool
		want     map[string]string
	}{
		{
			name:     "no cache no key",
			upstream: upstream(false),
			healthy:  true,
			want: map[string]string{
				hcdomain.ComponentCache:    hcdomain.StateDisabled,
				hcdomain.ComponentUpstream: hcdomain.StateMissingKey,
				hcdomain.ComponentEns:      hcdomain.StateDisabled,
			},
		},
		{
			name:     "all configured",
			cache:    &memProvider{data: map[string][]byte{}},
			upstream: upstream(true),
			ens:      true,
			healthy:  true,
			want: map[string]string{
				hcdomain.ComponentCache:    hcdomain.StateOk,
				hcdomain.ComponentUpstream: hcdomain.StateOk,
				hcdomain.ComponentEns:      hcdomain.StateOk,
			},
		},
		{
			name:     "cache down",
			cache:    &memProvider{data: map[string][]byte{}, err: errors.New("down")},
			upstream: upstream(true),
			healthy:  false,
			want: map[string]string{
				hcdomain.ComponentCache:    hcdomain.StateDown,
				hcdomain.ComponentUpstream: hcdomain.StateOk,
				hcdomain.ComponentEns:      hcdomain.StateDisabled,
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			report := New(&HealthCheckCfg{
				Repo:       repository.New(c.cache),
				Upstream:   c.upstream,
				EnsEnabled: c.ens,
			}).Check(ctx.Background())
			require.Equal(t, c.healthy, report.Healthy)
			require.Equal(t, c.want, report.Components)
		})
	}
}
