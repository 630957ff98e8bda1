package utils

import (
	"time"

	"github.com/iov-one/spades"
	"github.com/tendermint/tendermint/libs/log"
)

// Logging logs every transaction with its message path and the time the
// rest of the chain took. Failures are logged as errors. Successful checks
// are logged at debug level and successful deliveries at info level.
type Logging struct{}

var _ spades.Decorator = Logging{}

func NewLogging() Logging {
	return Logging{}
}

func (Logging) Check(ctx spades.Context, db spades.KVStore, tx spades.Tx, next spades.Checker) (*spades.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	logger := txLogger(ctx, tx, start)
	if err != nil {
		logger.Error("check failed", "err", err)
		return res, err
	}
	logger.Debug("check", "log", res.Log)
	return res, nil
}

func (Logging) Deliver(ctx spades.Context, db spades.KVStore, tx spades.Tx, next spades.Deliverer) (*spades.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	logger := txLogger(ctx, tx, start)
	if err != nil {
		logger.Error("deliver failed", "err", err)
		return res, err
	}
	logger.Info("deliver", "log", res.Log, "events", len(res.Events))
	return res, nil
}

// txLogger returns the context logger annotated with the message path and
// the microseconds elapsed since start.
func txLogger(ctx spades.Context, tx spades.Tx, start time.Time) log.Logger {
	elapsed := time.Since(start) / time.Microsecond
	return spades.GetLogger(ctx).With("path", spades.GetPath(tx), "duration", int64(elapsed))
}
