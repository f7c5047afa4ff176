package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingCli struct {
	names []string
	tags  [][]string
}

func (r *recordingCli) Count(name string, value int64, tags []string, rate float64) error {
	r.names = append(r.names, name)
	r.tags = append(r.tags, tags)
	return nil
}

func (r *recordingCli) Histogram(name string, value float64, tags []string, rate float64) error {
	r.names = append(r.names, name)
	r.tags = append(r.tags, tags)
	return nil
}

func (r *recordingCli) TimeInMilliseconds(name string, value float64, tags []string, rate float64) error {
	r.names = append(r.names, name)
	r.tags = append(r.tags, tags)
	return nil
}

func TestParseTag(t *testing.T) {
	req := require.New(t)
	req.Equal([]string{}, parseTag(nil))
	req.Equal([]string{"a:b", "c:d"}, parseTag([]string{"a", "b", "c", "d"}))
	req.Equal([]string{"a:b", "c:n/a"}, parseTag([]string{"a", "b", "c"}))
}

func TestMetricsPrefix(t *testing.T) {
	req := require.New(t)
	rec := &recordingCli{}
	mt := &Metrics{pkgName: "fetcher", cli: rec, ddTags: []string{"env:test"}}

	mt.BumpSum("page.err", 1, "reason", "timeout")
	mt.BumpHistogram("all.count", 3)
	mt.BumpTime("page.latency").End()

	req.Equal([]string{"fetcher.page.err", "fetcher.all.count", "fetcher.page.latency"}, rec.names)
	req.Equal([]string{"env:test", "reason:timeout"}, rec.tags[0])
	req.Equal([]string{"env:test"}, rec.tags[1])
}

func TestNewWithoutAgent(t *testing.T) {
	mt := New("test")
	mt.BumpSum("x", 1)
	mt.BumpTime("y").End()
}
