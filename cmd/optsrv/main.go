package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/clarktrimble/sabot"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"picklist/server"
	"picklist/store/duck"
)

const shutdownWait = 5 * time.Second

func main() {

	var addr string
	var loads []string

	rootCmd := &cobra.Command{
		Use:   "optsrv",
		Short: "Serve options from newline delimited json files",
		Long: `Serve options from newline delimited json files, one table per file.

Example:
  optsrv --load people=testdata/people.jsonl --addr :8087`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(addr, loads)
		},
	}

	rootCmd.Flags().StringVar(&addr, "addr", ":8087", "listen address")
	rootCmd.Flags().StringSliceVar(&loads, "load", []string{"people=testdata/people.jsonl"}, "table=path of records to serve")

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func run(addr string, loads []string) (err error) {

	lgr := &sabot.Sabot{Writer: os.Stdout}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dk, err := duck.New(lgr)
	if err != nil {
		return
	}
	defer dk.Close()

	for _, load := range loads {
		table, path, ok := strings.Cut(load, "=")
		if !ok {
			err = errors.Errorf("expected table=path, got %q", load)
			return
		}

		err = dk.Load(ctx, path, table)
		if err != nil {
			return
		}
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.New(dk, lgr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
		defer cancel()

		lgr.Info(shutdownCtx, "shutting down")
		httpServer.Shutdown(shutdownCtx)
	}()

	lgr.Info(ctx, "listening", "addr", addr)

	err = httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	err = errors.Wrapf(err, "failed to serve on %s", addr)
	return
}
