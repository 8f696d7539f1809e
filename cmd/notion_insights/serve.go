package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/notion-insights/internal/server"
)

const shutdownTimeout = 10 * time.Second

var (
	serveFlags commonFlags
	serveAddr  string
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
	Long:  "Starts an HTTP server exposing processing stats, weekly summaries, documents, pipeline runs, and an endpoint to trigger a pipeline run.",
	RunE:  runServeCmd,
}

func init() {
	addCommonFlags(serveCommand, &serveFlags)
	serveCommand.Flags().StringVar(&serveAddr, "addr", "", "Listen address (defaults to :8080)")
	rootCmd.AddCommand(serveCommand)
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := resolveConfig(cmd, &serveFlags)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.ServerAddr = serveAddr
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: server.New(a.store, a.pipeline).Handler(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fmt.Printf("Listening on %s\n", cfg.ServerAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
