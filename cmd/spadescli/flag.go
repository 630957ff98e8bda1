package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/iov-one/spades"
)

// flAddress returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided.
// If given value cannot be deserialized, process is terminated.
func flAddress(fl *flag.FlagSet, name, defaultVal, usage string) *spades.Address {
	var a spades.Address
	if defaultVal != "" {
		var err error
		a, err = spades.ParseAddress(defaultVal)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q address flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var((*flagAddress)(&a), name, usage)
	return &a
}

type flagAddress spades.Address

func (a flagAddress) String() string {
	if len(a) == 0 {
		return ""
	}
	return spades.Address(a).String()
}

func (a *flagAddress) Set(raw string) error {
	addr, err := spades.ParseAddress(raw)
	if err != nil {
		return err
	}
	*a = flagAddress(addr)
	return nil
}

// flAddresses is like flAddress but accepts a comma separated list.
func flAddresses(fl *flag.FlagSet, name, usage string) *[]spades.Address {
	var list []spades.Address
	fl.Var((*flagAddressList)(&list), name, usage)
	return &list
}

type flagAddressList []spades.Address

func (l flagAddressList) String() string {
	chunks := make([]string, len(l))
	for i, a := range l {
		chunks[i] = a.String()
	}
	return strings.Join(chunks, ",")
}

func (l *flagAddressList) Set(raw string) error {
	for _, chunk := range strings.Split(raw, ",") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		addr, err := spades.ParseAddress(chunk)
		if err != nil {
			return fmt.Errorf("%q: %s", chunk, err)
		}
		*l = append(*l, addr)
	}
	return nil
}

// flHex returns a value that is being initialized with given default value
// and optionally overwritten by a hex encoded command line argument.
func flHex(fl *flag.FlagSet, name, defaultVal, usage string) *[]byte {
	var b []byte
	if defaultVal != "" {
		var err error
		b, err = hex.DecodeString(defaultVal)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q hex encoded flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var((*flagbyte)(&b), name, usage)
	return &b
}

type flagbyte []byte

func (b flagbyte) String() string {
	return hex.EncodeToString(b)
}

func (b *flagbyte) Set(raw string) error {
	val, err := hex.DecodeString(raw)
	if err != nil {
		return err
	}
	*b = val
	return nil
}
