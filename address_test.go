package spades_test

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const firstWalletHex = "a147bd19c075738deb9a504dbf76ad4e7fbdcc9d"

func TestAddressPrinting(t *testing.T) {
	Convey("test hexademical address printing", t, func() {
		b := []byte("ABCD123456LHB")
		addr := spades.Address(b)

		So(addr.String(), ShouldNotEqual, fmt.Sprintf("%X", addr))
	})

	Convey("test hexademical condition printing", t, func() {
		cond := spades.NewCondition("12", "32", []byte("ABCD123456LHB"))

		So(cond.String(), ShouldNotEqual, fmt.Sprintf("%X", cond))
	})
}

func TestSequenceConditionAddress(t *testing.T) {
	cond := spades.SequenceCondition("wallet", "seq", 1)
	assert.Equal(t, "wallet/seq/0000000000000001", cond.String())
	assert.Equal(t, firstWalletHex, hex.EncodeToString(cond.Address()))
	assert.NoError(t, cond.Address().Validate())
}

func TestAddressUnmarshalJSON(t *testing.T) {
	raw, err := hex.DecodeString(firstWalletHex)
	require.NoError(t, err)
	wallet := spades.Address(raw)

	cases := map[string]struct {
		json     string
		wantErr  *errors.Error
		wantAddr spades.Address
	}{
		"default decoding": {
			json:     `"` + firstWalletHex + `"`,
			wantAddr: wallet,
		},
		"hex decoding": {
			json:     `"hex:` + firstWalletHex + `"`,
			wantAddr: wallet,
		},
		"cond decoding": {
			json:     `"cond:wallet/seq/0000000000000001"`,
			wantAddr: wallet,
		},
		"bech32 decoding": {
			json:     `"bech32:spd159rm6xwqw4ecm6u62pxm7a4dfelmmnyaxyatlv"`,
			wantAddr: wallet,
		},
		"too short hex": {
			json:    `"6865782d61646472"`,
			wantErr: errors.ErrInput,
		},
		"invalid condition format": {
			json:    `"cond:foo/636f6e646974696f6e64617461"`,
			wantErr: errors.ErrInput,
		},
		"invalid condition data": {
			json:    `"cond:foo/bar/zzzzz"`,
			wantErr: errors.ErrInput,
		},
		"unknown format": {
			json:    `"foobar:xxx"`,
			wantErr: errors.ErrType,
		},
		"zero address": {
			json:     `""`,
			wantAddr: nil,
		},
		"zero hex address": {
			json:     `"hex:"`,
			wantAddr: nil,
		},
		"zero cond address": {
			json:     `"cond:"`,
			wantAddr: nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var a spades.Address
			err := json.Unmarshal([]byte(tc.json), &a)
			if !tc.wantErr.Is(err) {
				t.Fatalf("got error: %+v", err)
			}
			if err == nil && !reflect.DeepEqual(a, tc.wantAddr) {
				t.Fatalf("got address: %q", a)
			}
		})
	}
}

func TestAddressBech32(t *testing.T) {
	addr := spades.SequenceCondition("wallet", "seq", 1).Address()
	enc, err := addr.Bech32("spd")
	require.NoError(t, err)
	assert.Equal(t, "spd159rm6xwqw4ecm6u62pxm7a4dfelmmnyaxyatlv", enc)

	back, err := spades.ParseAddress("bech32:" + enc)
	require.NoError(t, err)
	assert.True(t, addr.Equals(back))
}

func TestConditionUnmarshalJSON(t *testing.T) {
	cases := map[string]struct {
		json          string
		wantErr       *errors.Error
		wantCondition spades.Condition
	}{
		"default decoding": {
			json:          `"foo/bar/636f6e646974696f6e64617461"`,
			wantCondition: spades.NewCondition("foo", "bar", []byte("conditiondata")),
		},
		"invalid condition format": {
			json:    `"foo/636f6e646974696f6e64617461"`,
			wantErr: errors.ErrInput,
		},
		"invalid condition data": {
			json:    `"foo/bar/zzzzz"`,
			wantErr: errors.ErrInput,
		},
		"zero address": {
			json:          `""`,
			wantCondition: nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got spades.Condition
			err := json.Unmarshal([]byte(tc.json), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("got error: %+v", err)
			}
			if err == nil && !got.Equals(tc.wantCondition) {
				t.Fatalf("expected %q but got condition: %q", tc.wantCondition, got)
			}
		})
	}
}

func TestConditionMarshalJSON(t *testing.T) {
	cases := map[string]struct {
		source   spades.Condition
		wantJson string
	}{
		"cond encoding": {
			source:   spades.NewCondition("foo", "bar", []byte("conditiondata")),
			wantJson: `"foo/bar/636F6E646974696F6E64617461"`,
		},
		"nil encoding": {
			source:   nil,
			wantJson: `""`,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := json.Marshal(tc.source)
			require.NoError(t, err)
			assert.Equal(t, tc.wantJson, string(got))
		})
	}
}

func TestConditionRoundTrip(t *testing.T) {
	key := append([]byte{0x02}, bytes.Repeat([]byte{0xab}, 32)...)
	cases := map[string]spades.Condition{
		"secp256k1 signer": spades.NewCondition("sigs", "secp256k1", key),
		"ed25519 signer":   spades.NewCondition("sigs", "ed25519", key[1:]),
		"wallet":           spades.SequenceCondition("wallet", "seq", 7),
		"longest sections": spades.NewCondition("abcdefghijklmnop", "abcdefghijklmnop", []byte{1}),
	}
	for testName, cond := range cases {
		t.Run(testName, func(t *testing.T) {
			require.NoError(t, cond.Validate())

			ext, typ, data, err := cond.Parse()
			require.NoError(t, err)
			require.Equal(t, cond, spades.NewCondition(ext, typ, data))

			raw, err := json.Marshal(cond)
			require.NoError(t, err)
			var got spades.Condition
			require.NoError(t, json.Unmarshal(raw, &got))
			require.Equal(t, cond, got)
		})
	}

	tooLong := spades.NewCondition("sigs", "abcdefghijklmnopq", key)
	require.True(t, errors.ErrInput.Is(tooLong.Validate()))
}
