package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	glog "github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"interplay/pkg/book"
	"interplay/pkg/server"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("host") {
			cfg.Server.Host = serveHost
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}

		ctx, done := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer done()

		analyzer, err := newAnalyzer(ctx)
		if err != nil {
			return err
		}

		srv := server.NewServer(ctx, analyzer, book.NewFetcher(cfg.BookConfig()), server.Options{
			RequestTimeout: cfg.Server.RequestTimeout.Duration,
			BodyLimit:      cfg.Server.BodyLimit,
		})
		srv.Echo.Logger.SetLevel(glog.DEBUG)

		finishedShutDown := make(chan struct{})
		go func() {
			defer close(finishedShutDown)
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("shutdown failed", "error", err)
			}
		}()

		if err := srv.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			done()
			<-finishedShutDown
			return err
		}
		<-finishedShutDown
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}
