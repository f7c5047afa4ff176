package metrics

import (
	"github.com/x-xyz/nftgallery/base/log"
)

// LogClient is the statsCli used when no datadog agent is configured, every
// sample becomes a debug line
type LogClient struct{}

func (lc *LogClient) Count(name string, value int64, tags []string, rate float64) error {
	return lc.emit("count", name, value, tags)
}

func (lc *LogClient) Histogram(name string, value float64, tags []string, rate float64) error {
	return lc.emit("histogram", name, value, tags)
}

func (lc *LogClient) TimeInMilliseconds(name string, value float64, tags []string, rate float64) error {
	return lc.emit("time_ms", name, value, tags)
}

func (lc *LogClient) emit(kind, name string, value interface{}, tags []string) error {
	log.Log().WithFields(log.Fields{
		"metric": name,
		"kind":   kind,
		"val":    value,
		"tags":   tags,
	}).Debug("metric")
	return nil
}
