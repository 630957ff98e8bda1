package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
)

func cmdTransactionView(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Decode and display transaction summary. Before signing you should check what
kind of operation are you authorizing.
`)
		fl.PrintDefaults()
	}
	fl.Parse(args)

	tx, err := readTx(input)
	if err != nil {
		return err
	}
	msg, err := tx.GetMsg()
	if err != nil {
		return err
	}
	view := struct {
		Path       string      `json:"path"`
		Msg        interface{} `json:"msg"`
		Signatures interface{} `json:"signatures"`
	}{
		Path:       msg.Path(),
		Msg:        msg,
		Signatures: tx.Signatures,
	}
	pretty, err := json.MarshalIndent(view, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot JSON serialize: %s", err)
	}
	_, err = fmt.Fprintln(output, string(pretty))
	return err
}
