package wallet

import (
	"crypto/sha256"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
)

// digestDomain separates confirmation digests from any other message an
// owner key may sign.
const digestDomain = "spades/wallet/confirm/v1"

// ConfirmationDigest returns the 32 byte message that owners sign to
// confirm a transaction with an aggregate signature. It binds the wallet
// address, the chain, the nonce and the complete transfer.
//
// The transfer is serialized as protobuf fields
//
//   1: wallet address (bytes)
//   2: chain id (string)
//   3: nonce (varint)
//   4: target (bytes)
//   5: amount (varint)
//   6: payload (bytes)
func ConfirmationDigest(chainID string, wallet spades.Address, nonce uint64, target spades.Address, amount int64, payload []byte) ([]byte, error) {
	buf := proto.NewBuffer(nil)
	fields := []func() error{
		func() error { return encodeBytes(buf, 1, wallet) },
		func() error {
			if err := buf.EncodeVarint(2<<3 | proto.WireBytes); err != nil {
				return err
			}
			return buf.EncodeStringBytes(chainID)
		},
		func() error { return encodeVarint(buf, 3, nonce) },
		func() error { return encodeBytes(buf, 4, target) },
		func() error { return encodeVarint(buf, 5, uint64(amount)) },
		func() error { return encodeBytes(buf, 6, payload) },
	}
	for _, fn := range fields {
		if err := fn(); err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "encode digest: %s", err)
		}
	}

	h := sha256.New()
	_, _ = h.Write([]byte(digestDomain))
	_, _ = h.Write(buf.Bytes())
	return h.Sum(nil), nil
}

// TransactionDigest is ConfirmationDigest of a stored transaction.
func TransactionDigest(chainID string, tx *Transaction) ([]byte, error) {
	return ConfirmationDigest(chainID, WalletAddress(tx.WalletID), tx.Nonce, tx.Target, tx.Amount, tx.Payload)
}

func encodeBytes(buf *proto.Buffer, field uint64, b []byte) error {
	if err := buf.EncodeVarint(field<<3 | proto.WireBytes); err != nil {
		return err
	}
	return buf.EncodeRawBytes(b)
}

func encodeVarint(buf *proto.Buffer, field uint64, v uint64) error {
	if err := buf.EncodeVarint(field<<3 | proto.WireVarint); err != nil {
		return err
	}
	return buf.EncodeVarint(v)
}
