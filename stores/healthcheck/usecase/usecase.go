package usecase

import (
	"github.com/x-xyz/nftgallery/base/ctx"
	hcdomain "github.com/x-xyz/nftgallery/domain/healthcheck"
)

// Upstream is the part of the indexing api client the health report needs
type Upstream interface {
	HasApiKey() bool
}

type HealthCheckCfg struct {
	Repo     hcdomain.HealthCheckRepo
	Upstream Upstream
	// EnsEnabled is false when ens names are passed through unresolved
	EnsEnabled bool
}

type impl struct {
	repo       hcdomain.HealthCheckRepo
	upstream   Upstream
	ensEnabled bool
}

// New creates new healthCheckUsecase object representation of HealthCheckUsecase interface
func New(cfg *HealthCheckCfg) hcdomain.HealthCheckUsecase {
	return &impl{
		repo:       cfg.Repo,
		upstream:   cfg.Upstream,
		ensEnabled: cfg.EnsEnabled,
	}
}

func (im *impl) Check(c ctx.Ctx) hcdomain.Report {
	report := hcdomain.Report{
		Healthy:    true,
		Components: map[string]string{},
	}

	switch {
	case !im.repo.Enabled():
		report.Components[hcdomain.ComponentCache] = hcdomain.StateDisabled
	case im.repo.Ping(c) != nil:
		report.Components[hcdomain.ComponentCache] = hcdomain.StateDown
		report.Healthy = false
	default:
		report.Components[hcdomain.ComponentCache] = hcdomain.StateOk
	}

	// a missing key degrades to empty galleries, it does not fail the probe
	if im.upstream != nil && im.upstream.HasApiKey() {
		report.Components[hcdomain.ComponentUpstream] = hcdomain.StateOk
	} else {
		report.Components[hcdomain.ComponentUpstream] = hcdomain.StateMissingKey
	}

	if im.ensEnabled {
		report.Components[hcdomain.ComponentEns] = hcdomain.StateOk
	} else {
		report.Components[hcdomain.ComponentEns] = hcdomain.StateDisabled
	}
	return report
}
