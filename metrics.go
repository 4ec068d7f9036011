package flatsearch

import (
	"expvar"
	"fmt"
	"strings"
	"time"
)

type Metrics interface {
	BuildDuration(layout string, numKeys int, duration time.Duration)
	QueryLatency(layout string, numKeys int, nsPerOp float64)
	QueriesVerified(layout string, numQueries int)
	Mismatch(layout string)
}

// ExpVarMetrics is a simple implementation for the metrics.
type ExpVarMetrics struct {
	BuildDurationVar   *expvar.Map
	QueryLatencyVar    *expvar.Map
	QueriesVerifiedVar *expvar.Map
	MismatchVar        *expvar.Map
}

func (m *ExpVarMetrics) String() (out string) {
	var b strings.Builder
	m.BuildDurationVar.Do(func(kv expvar.KeyValue) {
		fmt.Fprintf(&b, "build_duration[%s]: %s\n", kv.Key, kv.Value.String())
	})
	m.QueryLatencyVar.Do(func(kv expvar.KeyValue) {
		fmt.Fprintf(&b, "query_latency[%s]: %s\n", kv.Key, kv.Value.String())
	})
	m.QueriesVerifiedVar.Do(func(kv expvar.KeyValue) {
		fmt.Fprintf(&b, "queries_verified[%s]: %s\n", kv.Key, kv.Value.String())
	})
	m.MismatchVar.Do(func(kv expvar.KeyValue) {
		fmt.Fprintf(&b, "mismatch[%s]: %s\n", kv.Key, kv.Value.String())
	})
	return b.String()
}

func NewExpVarMetrics(publish bool) *ExpVarMetrics {
	newMap := func(name string) *expvar.Map {
		if publish {
			return expvar.NewMap(name)
		}
		return new(expvar.Map).Init()
	}
	return &ExpVarMetrics{
		BuildDurationVar:   newMap("flatsearch_build_duration"),
		QueryLatencyVar:    newMap("flatsearch_query_latency"),
		QueriesVerifiedVar: newMap("flatsearch_queries_verified"),
		MismatchVar:        newMap("flatsearch_mismatch"),
	}
}

func sizedKey(layout string, numKeys int) string {
	return fmt.Sprintf("%s/%d", layout, numKeys)
}

func (m *ExpVarMetrics) BuildDuration(layout string, numKeys int, duration time.Duration) {
	m.BuildDurationVar.AddFloat(sizedKey(layout, numKeys), duration.Seconds())
}

func (m *ExpVarMetrics) QueryLatency(layout string, numKeys int, nsPerOp float64) {
	var floatVar expvar.Float
	floatVar.Set(nsPerOp)
	m.QueryLatencyVar.Set(sizedKey(layout, numKeys), &floatVar)
}

func (m *ExpVarMetrics) QueriesVerified(layout string, numQueries int) {
	m.QueriesVerifiedVar.Add(layout, int64(numQueries))
}

func (m *ExpVarMetrics) Mismatch(layout string) {
	m.MismatchVar.Add(layout, 1)
}

var _ Metrics = &ExpVarMetrics{}

// NopMetrics discards everything.
type NopMetrics struct{}

func (*NopMetrics) BuildDuration(string, int, time.Duration) {}
func (*NopMetrics) QueryLatency(string, int, float64)        {}
func (*NopMetrics) QueriesVerified(string, int)              {}
func (*NopMetrics) Mismatch(string)                          {}

var _ Metrics = &NopMetrics{}
