package wallet

import (
	"github.com/iov-one/spades"
)

// WalletCreatedEvent is emitted when a new wallet instance is created.
type WalletCreatedEvent struct {
	ID        []byte
	Address   spades.Address
	Owners    []spades.Address
	Threshold uint32
}

func (WalletCreatedEvent) EventName() string { return "wallet.create" }

// SubmitEvent is emitted when a transaction is proposed.
type SubmitEvent struct {
	Wallet  []byte
	Target  spades.Address
	Amount  int64
	Nonce   uint64
	Payload []byte
}

func (SubmitEvent) EventName() string { return "wallet.submit" }

// SignEvent lists the owners credited by a single confirmation.
type SignEvent struct {
	Wallet []byte
	Nonce  uint64
	Owners []spades.Address
	Mode   SignMode
}

func (SignEvent) EventName() string { return "wallet.sign" }

// RevokeEvent is emitted when an owner withdraws a direct confirmation.
type RevokeEvent struct {
	Wallet []byte
	Nonce  uint64
	Owner  spades.Address
}

func (RevokeEvent) EventName() string { return "wallet.revoke" }

// ExecuteEvent is emitted when the value of a transaction was released.
type ExecuteEvent struct {
	Wallet []byte
	Caller spades.Address
	Nonce  uint64
}

func (ExecuteEvent) EventName() string { return "wallet.execute" }

var (
	_ spades.Event = WalletCreatedEvent{}
	_ spades.Event = SubmitEvent{}
	_ spades.Event = SignEvent{}
	_ spades.Event = RevokeEvent{}
	_ spades.Event = ExecuteEvent{}
)
