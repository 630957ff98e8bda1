package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/spades/app"
	"github.com/iov-one/spades/x/cash"
)

func cmdSend(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction for transferring funds from the source account to the
destination account. The source must sign the transaction.
`)
		fl.PrintDefaults()
	}
	var (
		srcFl    = flAddress(fl, "src", "", "Funds owner address.")
		dstFl    = flAddress(fl, "dst", "", "Funds recipient address.")
		amountFl = fl.Int64("amount", 0, "Funds amount.")
		memoFl   = fl.String("memo", "", "A short message attached to the transfer.")
	)
	fl.Parse(args)

	msg := cash.SendMsg{
		Source:      *srcFl,
		Destination: *dstFl,
		Amount:      *amountFl,
		Memo:        *memoFl,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}
	return writeTx(output, app.NewStdTx(&msg))
}
