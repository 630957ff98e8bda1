package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iov-one/spades/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var cmdServe = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var flagServe struct {
	Addr string
}

func init() {
	cmdServe.Flags().StringVar(&flagServe.Addr, "addr", "localhost:8080", "address to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	n, err := openNode(logger)
	if err != nil {
		return err
	}
	defer n.close()

	n.registry.MustRegister(prometheus.NewGoCollector())

	srv := &http.Server{
		Addr:         flagServe.Addr,
		Handler:      newServer(n.ledger, n.registry, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", flagServe.Addr, "chain_id", n.ledger.ChainID())
		errc <- srv.ListenAndServe()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errc:
		return errors.Wrap(err, "serve")
	case <-sig:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(ctx)
}
