package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// Application exposes a Ledger to a tendermint node over ABCI.
//
// Failures of calls that do not carry user input (Info, InitChain,
// BeginBlock and Commit) cannot be reported back to the node, so they
// panic.
type Application struct {
	ledger *Ledger
	name   string
	logger log.Logger
	debug  bool
}

var _ abci.Application = (*Application)(nil)

// NewApplication returns an ABCI application reporting itself under the
// given name.
func NewApplication(name string, ledger *Ledger) *Application {
	return &Application{
		ledger: ledger,
		name:   name,
		logger: log.NewNopLogger(),
	}
}

// WithLogger sets the logger used for ABCI calls.
func (a *Application) WithLogger(logger log.Logger) *Application {
	a.logger = logger
	return a
}

// WithDebug makes query responses carry full error information.
func (a *Application) WithDebug(debug bool) *Application {
	a.debug = debug
	return a
}

// Info returns the last committed version and hash so that the node can
// replay missing blocks.
func (a *Application) Info(req abci.RequestInfo) abci.ResponseInfo {
	id, err := a.ledger.LatestVersion()
	if err != nil {
		panic(err)
	}
	a.logger.Info("info synced",
		"height", id.Version,
		"hash", fmt.Sprintf("%X", id.Hash))
	return abci.ResponseInfo{
		Data:             a.name,
		Version:          spades.Version(),
		LastBlockHeight:  id.Version,
		LastBlockAppHash: id.Hash,
	}
}

// SetOption is not supported.
func (a *Application) SetOption(req abci.RequestSetOption) abci.ResponseSetOption {
	return abci.ResponseSetOption{Log: "not implemented"}
}

// InitChain loads the genesis wallets and balances. The app state must be
// the JSON object of the genesis file.
func (a *Application) InitChain(req abci.RequestInitChain) abci.ResponseInitChain {
	if len(req.AppStateBytes) == 0 {
		panic(errors.Wrap(errors.ErrEmpty, "app_state not set in genesis"))
	}
	var opts spades.Options
	if err := json.Unmarshal(req.AppStateBytes, &opts); err != nil {
		panic(errors.Wrapf(errors.ErrInput, "app_state: %s", err))
	}
	if err := a.ledger.InitGenesis(req.ChainId, opts); err != nil {
		panic(err)
	}
	return abci.ResponseInitChain{}
}

// BeginBlock ensures the node and the ledger agree on the block height.
func (a *Application) BeginBlock(req abci.RequestBeginBlock) abci.ResponseBeginBlock {
	id, err := a.ledger.LatestVersion()
	if err != nil {
		panic(err)
	}
	if want := id.Version + 1; req.Header.Height != want {
		panic(errors.Wrapf(errors.ErrState, "block %d delivered, ledger expects %d", req.Header.Height, want))
	}
	return abci.ResponseBeginBlock{}
}

// CheckTx validates a transaction before it enters the mempool.
func (a *Application) CheckTx(raw []byte) abci.ResponseCheckTx {
	return a.ledger.CheckTx(context.Background(), raw)
}

// DeliverTx applies a transaction of the current block.
func (a *Application) DeliverTx(raw []byte) abci.ResponseDeliverTx {
	return a.ledger.DeliverTx(context.Background(), raw)
}

// EndBlock does not change the validator set.
func (a *Application) EndBlock(req abci.RequestEndBlock) abci.ResponseEndBlock {
	return abci.ResponseEndBlock{}
}

// Commit persists the block and returns the new application hash.
func (a *Application) Commit() abci.ResponseCommit {
	id, err := a.ledger.Commit()
	if err != nil {
		panic(err)
	}
	return abci.ResponseCommit{Data: id.Hash}
}

/*
Query reads wallets, transactions and balances.

Path is the query router path, optionally followed by "?prefix". Key and
Value of the response are amino encoded ResultSets of equal length.
*/
func (a *Application) Query(req abci.RequestQuery) abci.ResponseQuery {
	id, err := a.ledger.LatestVersion()
	if err != nil {
		return a.queryError(err)
	}
	models, err := a.ledger.Query(req.Path, req.Data)
	if err != nil {
		return a.queryError(err)
	}
	keys := ResultSet{Results: make([][]byte, len(models))}
	values := ResultSet{Results: make([][]byte, len(models))}
	for i, m := range models {
		keys.Results[i] = m.Key
		values.Results[i] = m.Value
	}

	res := abci.ResponseQuery{Height: id.Version}
	if res.Key, err = spades.MarshalBinary(keys); err != nil {
		return a.queryError(err)
	}
	if res.Value, err = spades.MarshalBinary(values); err != nil {
		return a.queryError(err)
	}
	return res
}

func (a *Application) queryError(err error) abci.ResponseQuery {
	code, msg := errors.ABCIInfo(err, a.debug)
	return abci.ResponseQuery{Code: code, Log: msg}
}

// ResultSet holds either the keys or the values of a query response.
type ResultSet struct {
	Results [][]byte
}

// QueryModels decodes the response of an ABCI query.
func QueryModels(res abci.ResponseQuery) ([]spades.Model, error) {
	if res.Code != errors.SuccessABCICode {
		return nil, errors.ABCIError(res.Code, res.Log)
	}
	var keys, values ResultSet
	if err := spades.UnmarshalBinary(res.Key, &keys); err != nil {
		return nil, errors.Wrap(err, "keys")
	}
	if err := spades.UnmarshalBinary(res.Value, &values); err != nil {
		return nil, errors.Wrap(err, "values")
	}
	if len(keys.Results) != len(values.Results) {
		return nil, errors.Wrapf(errors.ErrModel, "%d keys and %d values", len(keys.Results), len(values.Results))
	}
	models := make([]spades.Model, len(keys.Results))
	for i := range models {
		models[i] = spades.Pair(keys.Results[i], values.Results[i])
	}
	return models, nil
}
