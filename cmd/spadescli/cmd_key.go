package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/iov-one/spades/crypto"
	"github.com/iov-one/spades/errors"
)

func cmdKeygen(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Generate a new private key.

When successful a new file containing the private key is created. This command
fails if the private key file already exists. Only secp256k1 keys can take part
in aggregate wallet confirmations.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use SPADESCLI_PRIV_KEY environment variable to set it.")
		typeFl = fl.String("type", "secp256k1", "Key type: secp256k1 or ed25519.")
	)
	fl.Parse(args)

	if _, err := os.Stat(*keyPathFl); !os.IsNotExist(err) {
		// Never overwrite a key. User must delete it first.
		return fmt.Errorf("private key file %q already exists, delete this file and try again", *keyPathFl)
	}

	var key *crypto.PrivateKey
	switch t, err := crypto.ParseKeyType(*typeFl); {
	case err != nil:
		return err
	case t == crypto.KeyTypeEd25519:
		key = crypto.GenPrivKeyEd25519()
	default:
		key = crypto.GenPrivKeySecp256k1()
	}

	fd, err := os.OpenFile(*keyPathFl, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("cannot create private key file: %s", err)
	}
	defer fd.Close()

	if _, err := io.WriteString(fd, encodePrivateKey(key)); err != nil {
		return fmt.Errorf("cannot write private key: %s", err)
	}
	if err := fd.Close(); err != nil {
		return fmt.Errorf("cannot close private key file: %s", err)
	}
	_, err = fmt.Fprintln(output, key.PublicKey().Address())
	return err
}

func cmdKeyaddr(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out a hex-address associated with your private key. With -pubkey the
public key is printed as well, in the format expected by wallet owners.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use SPADESCLI_PRIV_KEY environment variable to set it.")
		pubkeyFl = fl.Bool("pubkey", false, "Print the public key too.")
	)
	fl.Parse(args)

	key, err := loadPrivateKey(*keyPathFl)
	if err != nil {
		return err
	}
	pub := key.PublicKey()
	if *pubkeyFl {
		_, err = fmt.Fprintf(output, "%s %s\n", pub.Address(), pub)
		return err
	}
	_, err = fmt.Fprintln(output, pub.Address())
	return err
}

// encodePrivateKey returns the "<type>:<hex>" text form of a key.
func encodePrivateKey(key *crypto.PrivateKey) string {
	return fmt.Sprintf("%s:%s\n", key.Type, hex.EncodeToString(key.Data))
}

func decodePrivateKey(raw string) (*crypto.PrivateKey, error) {
	chunks := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(chunks) != 2 {
		return nil, errors.Wrap(errors.ErrInput, "private key must be <type>:<hex>")
	}
	t, err := crypto.ParseKeyType(chunks[0])
	if err != nil {
		return nil, err
	}
	data, err := hex.DecodeString(chunks[1])
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, "private key is not hex encoded")
	}
	key := &crypto.PrivateKey{Type: t, Data: data}
	if key.PublicKey() == nil {
		return nil, errors.Wrapf(errors.ErrInput, "malformed %s key", t)
	}
	return key, nil
}

func loadPrivateKey(path string) (*crypto.PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read private key file: %s", err)
	}
	key, err := decodePrivateKey(string(raw))
	if err != nil {
		return nil, errors.Wrapf(err, "private key file %q", path)
	}
	return key, nil
}
