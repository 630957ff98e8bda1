package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// Ledger owns the state and applies transactions to it one at a time.
//
// Every transaction runs against its own cache of the working state. The
// cache is written only if the handler succeeds, so a failing transaction
// leaves no trace. Written changes become durable on Commit.
type Ledger struct {
	mu sync.Mutex

	store       spades.CommitKVStore
	handler     spades.Handler
	queries     spades.QueryRouter
	decoder     spades.TxDecoder
	initializer spades.Initializer
	logger      log.Logger
	debug       bool

	// chainID is loaded from the store or set once by InitGenesis
	chainID string
}

// NewLedger loads the latest version of the store and the chain id saved
// in it, if any.
func NewLedger(store spades.CommitKVStore, handler spades.Handler, queries spades.QueryRouter, decoder spades.TxDecoder) (*Ledger, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	chainID, err := loadChainID(store)
	if err != nil {
		return nil, err
	}
	return &Ledger{
		store:   store,
		handler: handler,
		queries: queries,
		decoder: decoder,
		logger:  log.NewNopLogger(),
		chainID: chainID,
	}, nil
}

// WithInit sets the initializer used by InitGenesis.
func (l *Ledger) WithInit(init spades.Initializer) *Ledger {
	l.initializer = init
	return l
}

// WithLogger sets the logger passed to every handler through the context.
func (l *Ledger) WithLogger(logger log.Logger) *Ledger {
	l.logger = logger
	return l
}

// WithDebug makes the ABCI responses carry full error information.
func (l *Ledger) WithDebug(debug bool) *Ledger {
	l.debug = debug
	return l
}

// ChainID returns the chain id or an empty string if the ledger was not
// initialized yet.
func (l *Ledger) ChainID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chainID
}

// LatestVersion returns the last committed version.
func (l *Ledger) LatestVersion() (spades.CommitID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.LatestVersion()
}

// InitGenesis saves the chain id and passes the options to the
// initializer. It can be called only once in the lifetime of the state.
func (l *Ledger) InitGenesis(chainID string, opts spades.Options) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.chainID != "" {
		return errors.Wrapf(errors.ErrState, "genesis already loaded for chain %s", l.chainID)
	}

	cache := l.store.CacheWrap()
	if err := saveChainID(cache, chainID); err != nil {
		cache.Discard()
		return err
	}
	if l.initializer != nil {
		if err := l.initializer.FromGenesis(opts, cache); err != nil {
			cache.Discard()
			return errors.Wrap(err, "genesis")
		}
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "write genesis")
	}
	l.chainID = chainID
	l.logger.Info("genesis loaded", "chain_id", chainID)
	return nil
}

// Check runs the handler stack in check mode. No state change survives.
func (l *Ledger) Check(ctx spades.Context, tx spades.Tx) (*spades.CheckResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, err := l.context(ctx, "check_tx", tx)
	if err != nil {
		return nil, err
	}
	cache := l.store.CacheWrap()
	defer cache.Discard()
	return l.handler.Check(ctx, cache, tx)
}

// Deliver applies the transaction. Either all of its changes are kept or,
// when an error is returned, none.
func (l *Ledger) Deliver(ctx spades.Context, tx spades.Tx) (*spades.DeliverResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, err := l.context(ctx, "deliver_tx", tx)
	if err != nil {
		return nil, err
	}
	cache := l.store.CacheWrap()
	res, err := l.handler.Deliver(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "write transaction changes")
	}
	return res, nil
}

// CheckTx decodes and checks a serialized transaction.
func (l *Ledger) CheckTx(ctx spades.Context, raw []byte) abci.ResponseCheckTx {
	tx, err := l.loadTx(raw)
	if err != nil {
		return spades.CheckTxError(err, l.debug)
	}
	res, err := l.Check(ctx, tx)
	return spades.CheckOrError(res, err, l.debug)
}

// DeliverTx decodes and delivers a serialized transaction. Events are
// returned as tags.
func (l *Ledger) DeliverTx(ctx spades.Context, raw []byte) abci.ResponseDeliverTx {
	tx, err := l.loadTx(raw)
	if err != nil {
		return spades.DeliverTxError(err, l.debug)
	}
	res, err := l.Deliver(ctx, tx)
	return spades.DeliverOrError(res, err, l.debug)
}

// loadTx calls the decoder, and capture any panics
func (l *Ledger) loadTx(raw []byte) (tx spades.Tx, err error) {
	defer errors.Recover(&err)
	return l.decoder(raw)
}

// Commit persists all delivered changes as a new version.
func (l *Ledger) Commit() (spades.CommitID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id, err := l.store.Commit()
	if err != nil {
		return id, errors.Wrap(err, "commit")
	}
	l.logger.Debug("commit synced",
		"height", id.Version,
		"hash", fmt.Sprintf("%X", id.Hash),
	)
	return id, nil
}

/*
Query reads data through the query router.

Path may be "/<bucket>" or "/<bucket>/<index>". It may be followed by
"?prefix" to make a prefix query.
*/
func (l *Ledger) Query(path string, data []byte) ([]spades.Model, error) {
	path, mod := splitPath(path)
	qh := l.queries.Handler(path)
	if qh == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "query path %q", path)
	}

	var res []spades.Model
	err := l.View(func(db spades.ReadOnlyKVStore) error {
		var err error
		res, err = qh.Query(db, mod, data)
		return err
	})
	return res, err
}

// View calls fn with the working state, including delivered but not yet
// committed changes. Nothing fn writes is kept.
func (l *Ledger) View(fn func(db spades.ReadOnlyKVStore) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	db := l.store.CacheWrap()
	defer db.Discard()
	return fn(db)
}

// context extends given context with the ledger information.
func (l *Ledger) context(ctx spades.Context, call string, tx spades.Tx) (spades.Context, error) {
	if l.chainID == "" {
		return nil, errors.Wrap(errors.ErrState, "genesis not loaded")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	id, err := l.store.LatestVersion()
	if err != nil {
		return nil, errors.Wrap(err, "latest version")
	}
	ctx = spades.WithChainID(ctx, l.chainID)
	ctx = spades.WithHeight(ctx, id.Version+1)
	ctx = spades.WithLogger(ctx, l.logger)
	return spades.WithLogInfo(ctx, "call", call, "path", spades.GetPath(tx)), nil
}

// splitPath splits out the real path along with the query
// modifier (everything after the ?)
func splitPath(path string) (string, string) {
	var mod string
	chunks := strings.SplitN(path, "?", 2)
	if len(chunks) == 2 {
		path = chunks[0]
		mod = chunks[1]
	}
	return path, mod
}
