package badgerdb

import (
	"fmt"
	"strings"

	"github.com/dgraph-io/badger"
	"github.com/tendermint/tendermint/libs/log"
)

// badgerLogger routes badger's printf style output to a key/value logger.
type badgerLogger struct {
	log.Logger
}

var _ badger.Logger = badgerLogger{}

func (l badgerLogger) format(format string, args ...interface{}) string {
	s := fmt.Sprintf(format, args...)
	return strings.TrimRight(s, "\n")
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.Error(l.format(format, args...), "module", "badger")
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Info(l.format(format, args...), "module", "badger", "level", "warn")
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.Info(l.format(format, args...), "module", "badger")
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.Debug(l.format(format, args...), "module", "badger")
}
