package main

import (
	"github.com/iov-one/spades/app"
	spadesd "github.com/iov-one/spades/cmd/spadesd/app"
	"github.com/iov-one/spades/errors"
	"github.com/iov-one/spades/x/cash"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/log"
)

// node is an opened ledger together with its metrics registry.
type node struct {
	ledger   *app.Ledger
	registry *prometheus.Registry
	close    func()
}

// openNode opens the configured store. A store that was never initialized
// is loaded from the genesis file and committed as the first version.
func openNode(logger log.Logger) (*node, error) {
	n, err := openLedger(logger)
	if err != nil {
		return nil, err
	}
	if n.ledger.ChainID() == "" {
		if err := loadGenesis(n.ledger); err != nil {
			n.close()
			return nil, err
		}
	}
	return n, nil
}

// openLedger opens the configured store as it is.
func openLedger(logger log.Logger) (*node, error) {
	kv, closeStore, err := spadesd.CommitKVStore(viper.GetString(keyDB), viper.GetString(keyHome), logger)
	if err != nil {
		return nil, errors.Wrap(err, "open store")
	}

	reg := prometheus.NewRegistry()
	stack := spadesd.Stack(reg, cash.NewReceivers())
	ledger, err := spadesd.Application(kv, stack, logger, viper.GetString(keyLogLevel) == "debug")
	if err != nil {
		closeStore()
		return nil, err
	}

	return &node{ledger: ledger, registry: reg, close: closeStore}, nil
}

func loadGenesis(ledger *app.Ledger) error {
	gen, err := app.LoadGenesis(genesisPath())
	if err != nil {
		return errors.Wrap(err, "ledger not initialized, run init first")
	}
	if err := ledger.InitGenesis(gen.ChainID, gen.AppState); err != nil {
		return err
	}
	if _, err := ledger.Commit(); err != nil {
		return err
	}
	return nil
}
