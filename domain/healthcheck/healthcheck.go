package healthcheck

import (
	"github.com/x-xyz/nftgallery/base/ctx"
)

const (
	StateOk       = "ok"
	StateDisabled = "disabled"
	StateDown     = "down"
	// StateMissingKey means the upstream answers every owner with an empty gallery
	StateMissingKey = "missing api key"
)

const (
	ComponentCache    = "cache"
	ComponentUpstream = "upstream"
	ComponentEns      = "ens"
)

// Report is healthy unless a configured dependency is down
type Report struct {
	Healthy    bool              `json:"healthy"`
	Components map[string]string `json:"components"`
}

// HealthCheckUsecase represents the healthCheck's usecases
type HealthCheckUsecase interface {
	Check(c ctx.Ctx) Report
}

// HealthCheckRepo checks the shared cache
type HealthCheckRepo interface {
	Enabled() bool
	Ping(c ctx.Ctx) error
}
