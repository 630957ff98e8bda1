package utils

import (
	"github.com/iov-one/spades"
	cmn "github.com/tendermint/tendermint/libs/common"
)

// ActionKey is the tag under which ActionTagger records the message path.
const ActionKey = "action"

// ActionTagger tags every delivered transaction with action=<message
// path>, for example action=wallet/confirm, so that a client can search
// the chain for all confirmations. Checks pass through untouched.
type ActionTagger struct{}

var _ spades.Decorator = ActionTagger{}

func NewActionTagger() ActionTagger {
	return ActionTagger{}
}

func (ActionTagger) Check(ctx spades.Context, db spades.KVStore, tx spades.Tx, next spades.Checker) (*spades.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

// Deliver tags successful deliveries only. A transaction without a
// message is rejected before the handler runs.
func (ActionTagger) Deliver(ctx spades.Context, db spades.KVStore, tx spades.Tx, next spades.Deliverer) (*spades.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	res, err := next.Deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	tag := cmn.KVPair{Key: []byte(ActionKey), Value: []byte(msg.Path())}
	res.Tags = append(res.Tags, tag)
	return res, nil
}
