package cash

import (
	"github.com/iov-one/spades"
)

// TransferEvent is emitted by the send handler for every processed SendMsg.
type TransferEvent struct {
	Source      spades.Address
	Destination spades.Address
	Amount      int64
}

var _ spades.Event = TransferEvent{}

func (TransferEvent) EventName() string { return "cash.transfer" }
