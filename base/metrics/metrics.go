/*Package metrics wraps datadog-go to faciliate metric recording
Following are naming convention of metric:
- Internal process time: *.time
- External latency: *.latency
- Error: *.err
*/
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/spf13/viper"

	"github.com/x-xyz/nftgallery/base/env"
	"github.com/x-xyz/nftgallery/base/log"
)

// DdPort is the dogstatsd port of the agent
const DdPort = 8125

var (
	initOnce = sync.Once{}
	cli      statsCli
)

// Ender provides interface for BumpTime
type Ender interface {
	End()
}

// Service provides interface for metrics
type Service interface {
	BumpSum(key string, val float64, tags ...string)
	BumpHistogram(key string, val float64, tags ...string)

	BumpTime(key string, tags ...string) Ender
}

type statsCli interface {
	Count(name string, value int64, tags []string, rate float64) error
	Histogram(name string, value float64, tags []string, rate float64) error
	TimeInMilliseconds(name string, value float64, tags []string, rate float64) error
}

// initClient talks to the datadog agent when datadog_host is set, otherwise metrics only go to debug logs
func initClient() {
	host := viper.GetString("datadog_host")
	if host == "" {
		cli = &LogClient{}
		return
	}
	addr := fmt.Sprintf("%s:%d", host, DdPort)
	c, err := statsd.New(addr)
	if err != nil {
		log.Log().WithFields(log.Fields{"addr": addr, "err": err}).Error("can't talk to datadog agent, fallback to log client")
		cli = &LogClient{}
		return
	}
	log.Log().WithField("addr", addr).Info("connected to datadog agent")
	cli = c
}

// New creates a metric client with package name as prefix
func New(pkgName string) Service {
	initOnce.Do(initClient)
	return &Metrics{
		pkgName: pkgName,
		cli:     cli,
		ddTags: []string{
			"host:", // remove unused host tag
			"pod:" + env.PodName(),
			"env:" + viper.GetString("env_name"),
			"app:" + viper.GetString("app_name"),
		},
	}
}

type Metrics struct {
	pkgName string
	cli     statsCli
	ddTags  []string
}

func (mt *Metrics) BumpSum(key string, val float64, tags ...string) {
	name := mt.pkgName + `.` + key
	if err := mt.cli.Count(name, int64(val), mt.tags(tags), 1); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": name, "val": val, "func": "BumpSum"}).Error("Bump fail")
	}
}

func (mt *Metrics) BumpHistogram(key string, val float64, tags ...string) {
	name := mt.pkgName + `.` + key
	if err := mt.cli.Histogram(name, val, mt.tags(tags), 1); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": name, "val": val, "func": "BumpHistogram"}).Error("Bump fail")
	}
}

// BumpTime starts a timer, End() reports it:
//
//     defer s.BumpTime("my.function").End()
func (mt *Metrics) BumpTime(key string, tags ...string) Ender {
	return &timeTracker{
		cli:   mt.cli,
		start: time.Now(),
		key:   mt.pkgName + `.` + key,
		tags:  mt.tags(tags),
	}
}

func (mt *Metrics) tags(tags []string) []string {
	res := make([]string, 0, len(mt.ddTags)+len(tags)/2)
	res = append(res, mt.ddTags...)
	return append(res, parseTag(tags)...)
}

// parseTag turns "k1", "v1", "k2", "v2" into "k1:v1", "k2:v2", a dangling key gets n/a
func parseTag(tags []string) []string {
	arr := make([]string, 0, (len(tags)+1)/2)
	for i := 0; i < len(tags); i += 2 {
		if i+1 < len(tags) {
			arr = append(arr, tags[i]+":"+tags[i+1])
		} else {
			arr = append(arr, tags[i]+":n/a")
		}
	}
	return arr
}

type timeTracker struct {
	cli   statsCli
	start time.Time
	key   string
	tags  []string
}

func (t *timeTracker) End() {
	dur := float64(time.Since(t.start)) / float64(time.Millisecond)
	if err := t.cli.TimeInMilliseconds(t.key, dur, t.tags, 1); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": t.key, "val": dur, "func": "BumpTime"}).Error("Bump fail")
	}
}
