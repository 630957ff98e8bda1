package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
)

// Genesis file format. Every extension reads its own key of AppState.
type Genesis struct {
	ChainID  string         `json:"chain_id"`
	AppState spades.Options `json:"app_state"`
}

// LoadGenesis reads and parses a genesis file.
func LoadGenesis(path string) (*Genesis, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "read genesis: %s", err)
	}
	var gen Genesis
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "parse genesis: %s", err)
	}
	if !spades.IsValidChainID(gen.ChainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id: %q", gen.ChainID)
	}
	return &gen, nil
}

//------- storing chainID ---------

// _sp: is a prefix for ledger internal data
const chainIDKey = "_sp:chainID"

// getter is the part of a store needed to read the chain id. Both committed
// stores and cache-wraps provide it.
type getter interface {
	Get(key []byte) ([]byte, error)
}

// loadChainID returns the chain id stored if any
func loadChainID(kv getter) (string, error) {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(v), nil
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv spades.KVStore, chainID string) error {
	if !spades.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chain id")
	}
	if exists {
		return errors.Wrap(errors.ErrState, "can't modify chain id after genesis init")
	}
	if err := kv.Set(k, []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chain id")
	}
	return nil
}
