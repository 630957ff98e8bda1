package bech32

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/iov-one/spades/errors"
)

func TestBech32EncodeDecode(t *testing.T) {
	// bech32  -e -h tiov 746573742d7061796c6f6164
	const enc = `tiov1w3jhxapdwpshjmr0v9jqymqq4y`

	want, err := hex.DecodeString("746573742d7061796c6f6164")
	if err != nil {
		t.Fatal(err)
	}

	hrp, payload, err := Decode(enc)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(want, payload) {
		t.Logf("want %d", want)
		t.Logf("got  %d", payload)
		t.Fatal("invalid decode")
	}

	raw, err := Encode(hrp, payload)
	if err != nil {
		t.Fatalf("cannot encode: %s", err)
	}

	if string(raw) != enc {
		t.Fatalf("invalid encoding: %q", raw)
	}
}

func TestBech32AddressRoundTrip(t *testing.T) {
	addr, err := hex.DecodeString("a147bd19c075738deb9a504dbf76ad4e7fbdcc9d")
	if err != nil {
		t.Fatal(err)
	}
	raw, err := Encode(HRP, addr)
	if err != nil {
		t.Fatalf("cannot encode: %s", err)
	}
	if string(raw) != "spd159rm6xwqw4ecm6u62pxm7a4dfelmmnyaxyatlv" {
		t.Fatalf("invalid encoding: %q", raw)
	}
	if _, _, err := Decode("spd159rm6xwqw4ecm6u62pxm7a4dfelmmnyaxyatlw"); !errors.ErrInput.Is(err) {
		t.Fatalf("checksum mismatch must fail with invalid input, got %+v", err)
	}
	if _, err := Encode("", addr); !errors.ErrEmpty.Is(err) {
		t.Fatalf("empty human readable part must fail, got %+v", err)
	}
}
