package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/iov-one/spades"
)

// commands is a register of all available commands that can be executed by
// this program. The name is used to match with the first argument given.
//
// A command function is given stdin, stdout and the command line arguments
// without the program name and the command name. Arguments should be parsed
// using the flag package. A command function reads and writes only the
// provided input and output.
//
// Keep every command small. Transactions are built, signed and applied by
// separate commands that are combined into a pipeline:
//
//   $ spadescli submit -wallet 1 -target 5AE2C58796B0AD48FFE7602EAC3353488C859A2B -amount 60 \
//       | spadescli sign -key alice.key \
//       | spadesd apply
//
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"aggregate":     cmdAggregate,
	"confirm":       cmdConfirm,
	"create-wallet": cmdCreateWallet,
	"execute":       cmdExecute,
	"keyaddr":       cmdKeyaddr,
	"keygen":        cmdKeygen,
	"revoke":        cmdRevoke,
	"send":          cmdSend,
	"sign":          cmdSignTransaction,
	"submit":        cmdSubmit,
	"version":       cmdVersion,
	"view":          cmdTransactionView,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s builds and signs spades ledger transactions.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	if err := run(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	fmt.Fprintln(out, spades.Version())
	return nil
}
