package utils

import (
	"strconv"
	"time"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a decorator that counts processed transactions by message
// path and result code, and observes the delivery duration.
type Metrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ spades.Decorator = Metrics{}

// NewMetrics creates the collectors and registers them with given
// registerer. It panics if the collectors are registered already.
func NewMetrics(reg prometheus.Registerer) Metrics {
	m := Metrics{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spades",
			Subsystem: "ledger",
			Name:      "transactions_total",
			Help:      "Number of processed transactions.",
		}, []string{"phase", "path", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "spades",
			Subsystem: "ledger",
			Name:      "deliver_duration_seconds",
			Help:      "Time spent delivering a transaction.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"path"}),
	}
	reg.MustRegister(m.total, m.duration)
	return m
}

func (m Metrics) Check(ctx spades.Context, db spades.KVStore, tx spades.Tx, next spades.Checker) (*spades.CheckResult, error) {
	res, err := next.Check(ctx, db, tx)
	m.count("check", tx, err)
	return res, err
}

func (m Metrics) Deliver(ctx spades.Context, db spades.KVStore, tx spades.Tx, next spades.Deliverer) (*spades.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	m.duration.WithLabelValues(spades.GetPath(tx)).Observe(time.Since(start).Seconds())
	m.count("deliver", tx, err)
	return res, err
}

func (m Metrics) count(phase string, tx spades.Tx, err error) {
	code, _ := errors.ABCIInfo(err, false)
	m.total.WithLabelValues(phase, spades.GetPath(tx), strconv.FormatUint(uint64(code), 10)).Inc()
}
