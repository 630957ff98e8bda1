package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iov-one/spades"
	"github.com/iov-one/spades/app"
	"github.com/iov-one/spades/errors"
	"github.com/iov-one/spades/x/sigs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// maxTxSize limits the body of a submitted transaction.
const maxTxSize = 64 << 10

// txResult is the outcome of a delivered transaction. Version is set only
// if the transaction succeeded and was committed.
type txResult struct {
	Code    uint32 `json:"code"`
	Log     string `json:"log,omitempty"`
	Data    string `json:"data,omitempty"`
	Tags    []tag  `json:"tags,omitempty"`
	Version int64  `json:"version,omitempty"`
	Hash    string `json:"hash,omitempty"`
}

type tag struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// applyTx delivers a serialized transaction and commits its changes.
func applyTx(ctx context.Context, l *app.Ledger, raw []byte) (*txResult, error) {
	res := l.DeliverTx(ctx, raw)
	out := newTxResult(res)
	if res.Code != errors.SuccessABCICode {
		return out, nil
	}
	id, err := l.Commit()
	if err != nil {
		return nil, err
	}
	out.Version = id.Version
	out.Hash = hex.EncodeToString(id.Hash)
	return out, nil
}

func newTxResult(res abci.ResponseDeliverTx) *txResult {
	out := &txResult{
		Code: res.Code,
		Log:  res.Log,
	}
	if len(res.Data) != 0 {
		out.Data = hex.EncodeToString(res.Data)
	}
	for _, t := range res.Tags {
		value := json.RawMessage(t.Value)
		if !json.Valid(t.Value) {
			value, _ = json.Marshal(string(t.Value))
		}
		out.Tags = append(out.Tags, tag{Key: string(t.Key), Value: value})
	}
	return out
}

type queryResult struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func newQueryResults(models []spades.Model) []queryResult {
	out := make([]queryResult, 0, len(models))
	for _, m := range models {
		out = append(out, queryResult{
			Key:   hex.EncodeToString(m.Key),
			Value: hex.EncodeToString(m.Value),
		})
	}
	return out
}

type sequenceResult struct {
	Address  spades.Address `json:"address"`
	Sequence int64          `json:"sequence"`
}

type statusResult struct {
	ChainID string `json:"chain_id"`
	Build   string `json:"build"`
	Version int64  `json:"version"`
	Hash    string `json:"hash"`
}

// newServer returns the HTTP API of a ledger:
//
//   GET  /status            chain id and latest version
//   GET  /query/<path>      ?data=<hex>&prefix=true
//   GET  /sequence/<address> next signature sequence of an account
//   POST /tx                raw transaction body, delivered and committed
//   GET  /metrics           prometheus metrics
func newServer(l *app.Ledger, metrics prometheus.Gatherer, logger log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		id, err := l.LatestVersion()
		if err != nil {
			writeErr(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResult{
			ChainID: l.ChainID(),
			Build:   spades.Version(),
			Version: id.Version,
			Hash:    hex.EncodeToString(id.Hash),
		})
	})

	r.Get("/query/*", func(w http.ResponseWriter, r *http.Request) {
		path := "/" + chi.URLParam(r, "*")
		data, err := hex.DecodeString(r.URL.Query().Get("data"))
		if err != nil {
			writeErr(w, logger, errors.Wrap(errors.ErrInput, "data must be hex encoded"))
			return
		}
		if prefix, _ := strconv.ParseBool(r.URL.Query().Get("prefix")); prefix {
			path += "?" + spades.PrefixQueryMod
		}
		models, err := l.Query(path, data)
		if err != nil {
			writeErr(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, newQueryResults(models))
	})

	r.Get("/sequence/{address}", func(w http.ResponseWriter, r *http.Request) {
		addr, err := spades.ParseAddress(chi.URLParam(r, "address"))
		if err == nil {
			err = addr.Validate()
		}
		if err != nil {
			writeErr(w, logger, errors.Wrap(errors.ErrInput, err.Error()))
			return
		}
		var seq int64
		err = l.View(func(db spades.ReadOnlyKVStore) error {
			var err error
			seq, err = sigs.NextSequence(db, addr)
			return err
		})
		if err != nil {
			writeErr(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, sequenceResult{Address: addr, Sequence: seq})
	})

	r.Post("/tx", func(w http.ResponseWriter, r *http.Request) {
		raw, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, maxTxSize))
		if err != nil {
			writeErr(w, logger, errors.Wrap(errors.ErrInput, err.Error()))
			return
		}
		res, err := applyTx(r.Context(), l, raw)
		if err != nil {
			writeErr(w, logger, err)
			return
		}
		code := http.StatusOK
		if res.Code != errors.SuccessABCICode {
			code = http.StatusUnprocessableEntity
		}
		writeJSON(w, code, res)
	})

	r.Handle("/metrics", promhttp.HandlerFor(metrics, promhttp.HandlerOpts{}))
	return r
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeErr maps registered errors to a status code. Internal errors and
// recovered panics are logged and not exposed.
func writeErr(w http.ResponseWriter, logger log.Logger, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.ErrNotFound.Is(err):
		code = http.StatusNotFound
	case errors.ErrInput.Is(err):
		code = http.StatusBadRequest
	}
	if code == http.StatusInternalServerError {
		logger.Error("request failed", "err", err)
	}
	abciCode, _ := errors.ABCIInfo(err, false)
	writeJSON(w, code, struct {
		Code  uint32 `json:"code"`
		Error string `json:"error"`
	}{abciCode, errors.Redact(err, false).Error()})
}
