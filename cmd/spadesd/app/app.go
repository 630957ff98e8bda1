/*
Package app links together all the various components
to construct the spadesd ledger.
*/
package app

import (
	"path/filepath"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/app"
	"github.com/iov-one/spades/errors"
	"github.com/iov-one/spades/store/badgerdb"
	"github.com/iov-one/spades/store/iavl"
	"github.com/iov-one/spades/x"
	"github.com/iov-one/spades/x/cash"
	"github.com/iov-one/spades/x/sigs"
	"github.com/iov-one/spades/x/utils"
	"github.com/iov-one/spades/x/wallet"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendermint/tendermint/libs/log"
)

// Authenticator returns the typical authentication,
// just using public key signatures
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication,
// logging, metrics and recovery. Metrics are collected only if a
// registerer is given. Writes of a failing message handler never reach
// the store passed to the chain.
func Chain(reg prometheus.Registerer) app.Decorators {
	chain := app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
	)
	if reg != nil {
		chain = chain.Chain(utils.NewMetrics(reg))
	}
	return chain.Chain(
		sigs.NewDecorator(),
		utils.NewActionTagger(),
		utils.NewSavepoint().OnCheck().OnDeliver(),
	)
}

// Router returns a router dispatching to the cash and wallet handlers. All
// of them move value through the same controller, so the receivers see
// every transfer.
func Router(authFn x.Authenticator, receivers *cash.Receivers) *app.Router {
	r := app.NewRouter()
	ctrl := cash.NewController(receivers)
	cash.RegisterRoutes(r, authFn, ctrl)
	wallet.RegisterRoutes(r, authFn, ctrl)
	return r
}

// QueryRouter returns a default query router,
// allowing access to "/balances", "/auth", "/wallets" and the wallet
// indexes and transactions.
func QueryRouter() spades.QueryRouter {
	r := spades.NewQueryRouter()
	r.RegisterAll(
		cash.RegisterQuery,
		sigs.RegisterQuery,
		wallet.RegisterQuery,
	)
	return r
}

// Initializers returns the genesis initializers of all extensions. Cash
// runs first so that genesis wallets may be funded by plain accounts later.
func Initializers() spades.Initializer {
	return spades.ChainInitializers(
		cash.Initializer{},
		wallet.Initializer{},
	)
}

// Stack wires up a standard router with a standard decorator
// chain. This can be passed into a Ledger.
func Stack(reg prometheus.Registerer, receivers *cash.Receivers) spades.Handler {
	authFn := Authenticator()
	return Chain(reg).WithHandler(Router(authFn, receivers))
}

// Application constructs a ledger over given store.
func Application(kv spades.CommitKVStore, h spades.Handler, logger log.Logger, debug bool) (*app.Ledger, error) {
	l, err := app.NewLedger(kv, h, QueryRouter(), app.TxDecoder)
	if err != nil {
		return nil, err
	}
	return l.WithInit(Initializers()).WithLogger(logger).WithDebug(debug), nil
}

// Supported storage engines.
const (
	EngineBadger = "badger"
	EngineIAVL   = "iavl"
	EngineMemory = "memory"
)

// CommitKVStore opens the store of the named engine under dir. The returned
// function releases it.
func CommitKVStore(engine, dir string, logger log.Logger) (spades.CommitKVStore, func(), error) {
	switch engine {
	case EngineBadger:
		s, err := badgerdb.NewCommitStore(filepath.Join(dir, "badger"), logger.With("module", "badger"))
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case EngineIAVL:
		s, err := iavl.NewCommitStore(dir, "iavl")
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case EngineMemory:
		return iavl.MockCommitStore(), func() {}, nil
	default:
		return nil, nil, errors.Wrapf(errors.ErrInput, "unknown storage engine %q", engine)
	}
}
