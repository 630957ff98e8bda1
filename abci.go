package spades

import (
	"encoding/json"
	"fmt"

	"github.com/iov-one/spades/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
)

// CheckResult is the outcome of a successful check. Failures are returned
// as errors, never as a result.
type CheckResult struct {
	// Data is machine readable, for example the ID a delivery would
	// assign.
	Data []byte
	Log  string
}

func (c CheckResult) ToABCI() abci.ResponseCheckTx {
	return abci.ResponseCheckTx{Data: c.Data, Log: c.Log}
}

// DeliverResult is the outcome of a successful delivery.
type DeliverResult struct {
	// Data is machine readable, for example the ID of a submitted
	// transaction.
	Data []byte
	Log  string

	// Events are the state changes of the delivery in the order they
	// happened.
	Events []Event

	// Tags index the transaction for searches.
	Tags []cmn.KVPair
}

// ToABCI returns the response for the node. Each event becomes a tag
// named after the event and holding its JSON encoding.
func (d DeliverResult) ToABCI() abci.ResponseDeliverTx {
	tags := make([]cmn.KVPair, 0, len(d.Tags)+len(d.Events))
	tags = append(tags, d.Tags...)
	tags = append(tags, EventTags(d.Events)...)
	return abci.ResponseDeliverTx{Data: d.Data, Log: d.Log, Tags: tags}
}

// CheckOrError returns the response for a check that returned res and err.
func CheckOrError(res *CheckResult, err error, debug bool) abci.ResponseCheckTx {
	if err != nil {
		return CheckTxError(err, debug)
	}
	return res.ToABCI()
}

// DeliverOrError returns the response for a delivery that returned res and
// err.
func DeliverOrError(res *DeliverResult, err error, debug bool) abci.ResponseDeliverTx {
	if err != nil {
		return DeliverTxError(err, debug)
	}
	return res.ToABCI()
}

// CheckTxError returns the response for a failed check. Outside of debug
// mode unregistered errors are reported as internal.
func CheckTxError(err error, debug bool) abci.ResponseCheckTx {
	code, log := failure("check", err, debug)
	return abci.ResponseCheckTx{Code: code, Log: log}
}

// DeliverTxError returns the response for a failed delivery.
func DeliverTxError(err error, debug bool) abci.ResponseDeliverTx {
	code, log := failure("deliver", err, debug)
	return abci.ResponseDeliverTx{Code: code, Log: log}
}

func failure(phase string, err error, debug bool) (uint32, string) {
	code, log := errors.ABCIInfo(err, debug)
	if code == errors.SuccessABCICode {
		return code, log
	}
	return code, fmt.Sprintf("cannot %s tx: %s", phase, log)
}

// ParseDeliverOrError reads a delivery response back. A failed delivery
// gives the registered error of its code. Events stay among the tags.
func ParseDeliverOrError(res abci.ResponseDeliverTx) (*DeliverResult, error) {
	if res.Code != errors.SuccessABCICode {
		return nil, errors.ABCIError(res.Code, res.Log)
	}
	return &DeliverResult{Data: res.Data, Log: res.Log, Tags: res.Tags}, nil
}

// EventTags returns one tag per event, in order.
func EventTags(events []Event) []cmn.KVPair {
	var tags []cmn.KVPair
	for _, e := range events {
		raw, err := json.Marshal(e)
		if err != nil {
			raw, _ = json.Marshal(err.Error())
		}
		tags = append(tags, cmn.KVPair{Key: []byte(e.EventName()), Value: raw})
	}
	return tags
}
