package wallet

import (
	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
)

const (
	pathCreateWalletMsg       = "wallet/create"
	pathSubmitMsg             = "wallet/submit"
	pathSignTransactionMsg    = "wallet/sign"
	pathRevokeConfirmationMsg = "wallet/revoke"
	pathExecuteTransactionMsg = "wallet/execute"

	maxPayloadSize = 1024
)

func init() {
	spades.RegisterMsg(&CreateWalletMsg{}, pathCreateWalletMsg)
	spades.RegisterMsg(&SubmitMsg{}, pathSubmitMsg)
	spades.RegisterMsg(&SignTransactionMsg{}, pathSignTransactionMsg)
	spades.RegisterMsg(&RevokeConfirmationMsg{}, pathRevokeConfirmationMsg)
	spades.RegisterMsg(&ExecuteTransactionMsg{}, pathExecuteTransactionMsg)
}

// CreateWalletMsg creates a new wallet instance. InitialDeposit is moved
// from the creator into the new wallet.
type CreateWalletMsg struct {
	Owners         []spades.Address `json:"owners"`
	Threshold      uint32           `json:"threshold"`
	InitialDeposit int64            `json:"initial_deposit,omitempty"`
}

var _ spades.Msg = (*CreateWalletMsg)(nil)

func (CreateWalletMsg) Path() string {
	return pathCreateWalletMsg
}

func (m *CreateWalletMsg) Validate() error {
	if err := ValidateConfiguration(m.Owners, m.Threshold); err != nil {
		return err
	}
	if m.InitialDeposit < 0 {
		return errors.Field("InitialDeposit", errors.ErrAmount, "negative")
	}
	return nil
}

func (m *CreateWalletMsg) Marshal() ([]byte, error) {
	return spades.MarshalBinary(m)
}

func (m *CreateWalletMsg) Unmarshal(raw []byte) error {
	return spades.UnmarshalBinary(raw, m)
}

// SubmitMsg proposes a transfer from a wallet.
type SubmitMsg struct {
	WalletID []byte         `json:"wallet_id"`
	Target   spades.Address `json:"target"`
	Amount   int64          `json:"amount"`
	Payload  []byte         `json:"payload,omitempty"`
}

var _ spades.Msg = (*SubmitMsg)(nil)

func (SubmitMsg) Path() string {
	return pathSubmitMsg
}

func (m *SubmitMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "WalletID", validateID(m.WalletID))
	errs = errors.AppendField(errs, "Target", m.Target.Validate())
	if m.Amount < 0 {
		errs = errors.Append(errs, errors.Field("Amount", errors.ErrAmount, "negative"))
	}
	if len(m.Payload) > maxPayloadSize {
		errs = errors.Append(errs, errors.Field("Payload", errors.ErrInput, "cannot be longer than %d", maxPayloadSize))
	}
	return errs
}

func (m *SubmitMsg) Marshal() ([]byte, error) {
	return spades.MarshalBinary(m)
}

func (m *SubmitMsg) Unmarshal(raw []byte) error {
	return spades.UnmarshalBinary(raw, m)
}

// SignMode selects how a SignTransactionMsg credits owners.
type SignMode int32

const (
	// SignModeDirect credits the signer of the host transaction.
	SignModeDirect SignMode = 1
	// SignModeAggregate credits every owner whose key took part in the
	// attached multi signature.
	SignModeAggregate SignMode = 2
)

func (m SignMode) String() string {
	switch m {
	case SignModeDirect:
		return "direct"
	case SignModeAggregate:
		return "aggregate"
	default:
		return "unknown"
	}
}

// AggregateProof is a Schnorr multi signature over the confirmation digest
// of a transaction.
type AggregateProof struct {
	// Signature is the 64 byte MuSig2 signature of the digest.
	Signature []byte `json:"signature"`
	// PublicKeys are the 33 byte compressed secp256k1 keys of all signers.
	PublicKeys [][]byte `json:"public_keys"`
}

// SignTransactionMsg confirms a pending transaction.
type SignTransactionMsg struct {
	WalletID  []byte          `json:"wallet_id"`
	Nonce     uint64          `json:"nonce"`
	Mode      SignMode        `json:"mode"`
	Aggregate *AggregateProof `json:"aggregate,omitempty"`
}

var _ spades.Msg = (*SignTransactionMsg)(nil)

func (SignTransactionMsg) Path() string {
	return pathSignTransactionMsg
}

func (m *SignTransactionMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "WalletID", validateID(m.WalletID))
	switch m.Mode {
	case SignModeDirect:
		if m.Aggregate != nil {
			errs = errors.Append(errs, errors.Field("Aggregate", errors.ErrMsg, "not allowed in direct mode"))
		}
	case SignModeAggregate:
		if m.Aggregate == nil {
			errs = errors.Append(errs, errors.Field("Aggregate", errors.ErrEmpty, "required in aggregate mode"))
		}
	default:
		errs = errors.Append(errs, errors.Field("Mode", errors.ErrMsg, "unknown mode %d", m.Mode))
	}
	return errs
}

func (m *SignTransactionMsg) Marshal() ([]byte, error) {
	return spades.MarshalBinary(m)
}

func (m *SignTransactionMsg) Unmarshal(raw []byte) error {
	return spades.UnmarshalBinary(raw, m)
}

// RevokeConfirmationMsg withdraws the direct confirmation of the signer.
type RevokeConfirmationMsg struct {
	WalletID []byte `json:"wallet_id"`
	Nonce    uint64 `json:"nonce"`
}

var _ spades.Msg = (*RevokeConfirmationMsg)(nil)

func (RevokeConfirmationMsg) Path() string {
	return pathRevokeConfirmationMsg
}

func (m *RevokeConfirmationMsg) Validate() error {
	return errors.Field("WalletID", validateID(m.WalletID), "")
}

func (m *RevokeConfirmationMsg) Marshal() ([]byte, error) {
	return spades.MarshalBinary(m)
}

func (m *RevokeConfirmationMsg) Unmarshal(raw []byte) error {
	return spades.UnmarshalBinary(raw, m)
}

// ExecuteTransactionMsg releases the value of a confirmed transaction.
type ExecuteTransactionMsg struct {
	WalletID []byte `json:"wallet_id"`
	Nonce    uint64 `json:"nonce"`
}

var _ spades.Msg = (*ExecuteTransactionMsg)(nil)

func (ExecuteTransactionMsg) Path() string {
	return pathExecuteTransactionMsg
}

func (m *ExecuteTransactionMsg) Validate() error {
	return errors.Field("WalletID", validateID(m.WalletID), "")
}

func (m *ExecuteTransactionMsg) Marshal() ([]byte, error) {
	return spades.MarshalBinary(m)
}

func (m *ExecuteTransactionMsg) Unmarshal(raw []byte) error {
	return spades.UnmarshalBinary(raw, m)
}

func validateID(id []byte) error {
	switch len(id) {
	case 0:
		return errors.ErrEmpty
	case idLength:
		return nil
	default:
		return errors.Wrapf(errors.ErrInput, "must be %d bytes", idLength)
	}
}
