package main

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"

	"github.com/iov-one/spades/app"
	"github.com/iov-one/spades/errors"
)

// sequenceID returns a sequence value encoded as implemented in the orm
// package.
func sequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

// writeTx serializes the transaction into the format expected by the
// ledger. Output is the complete transaction with no framing, so the last
// command of a pipeline can be fed to spadesd apply directly.
func writeTx(w io.Writer, tx *app.StdTx) error {
	raw, err := tx.Marshal()
	if err != nil {
		return errors.Wrap(err, "cannot serialize transaction")
	}
	_, err = w.Write(raw)
	return err
}

// readTx reads a complete transaction from the input.
func readTx(r io.Reader) (*app.StdTx, error) {
	raw, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read transaction")
	}
	if len(raw) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "no input data")
	}
	var tx app.StdTx
	if err := tx.Unmarshal(raw); err != nil {
		return nil, errors.Wrap(err, "cannot deserialize transaction")
	}
	return &tx, nil
}

// queryModel is a single query result as returned by the spadesd HTTP API.
type queryModel struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// apiQuery reads the ledger state through the spadesd HTTP API and returns
// the decoded values.
func apiQuery(api, path string, data []byte) ([][]byte, error) {
	u := fmt.Sprintf("%s/query%s?data=%s", api, path, url.QueryEscape(hex.EncodeToString(data)))
	var models []queryModel
	if err := apiGet(u, &models); err != nil {
		return nil, err
	}
	values := make([][]byte, 0, len(models))
	for _, m := range models {
		v, err := hex.DecodeString(m.Value)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInput, "response value is not hex encoded")
		}
		values = append(values, v)
	}
	return values, nil
}

// apiChainID returns the chain id of the ledger served by the API.
func apiChainID(api string) (string, error) {
	var status struct {
		ChainID string `json:"chain_id"`
	}
	if err := apiGet(api+"/status", &status); err != nil {
		return "", err
	}
	if status.ChainID == "" {
		return "", errors.Wrap(errors.ErrState, "ledger has no chain id")
	}
	return status.ChainID, nil
}

func apiGet(u string, dest interface{}) error {
	resp, err := http.Get(u)
	if err != nil {
		return errors.Wrapf(err, "cannot fetch %s", u)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Code  uint32 `json:"code"`
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		return errors.Wrapf(errors.ABCIError(failure.Code, failure.Error), "%s: response %d", u, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return errors.Wrap(errors.ErrInput, "cannot decode response")
	}
	return nil
}
