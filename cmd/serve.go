package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/call-insights/internal/api"
	"github.com/sells-group/call-insights/internal/monitoring"
	"github.com/sells-group/call-insights/internal/pipeline"
)

var (
	servePort int
	servePoll bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server",
	Long:  "Serves the call-platform webhook, health and readiness endpoints. With --poll, also runs the polling loop in the same process.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		mode := "serve"
		if servePoll {
			mode = "poll"
		}
		env, err := initPipeline(ctx, mode, servePoll)
		if err != nil {
			return err
		}
		defer env.Close()

		deps := api.Deps{
			WebhookToken: cfg.Server.WebhookToken,
			CORSOrigins:  cfg.Server.CORSOrigins,
			Rows:         env.Sink,
		}
		var orch *pipeline.Orchestrator
		if servePoll {
			var collector *monitoring.Collector
			orch, collector = newOrchestrator(env)
			deps.Status = collector
		}

		server := api.NewServer(deps)
		server.Attach(pipeline.NewEventProcessor(env.Source, env.Stage, env.Deriver, env.Sink,
			cfg.Pipeline.EventMinTranscriptLen))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, port),
			Handler:           server.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gCtx := errgroup.WithContext(ctx)

		g.Go(func() error {
			zap.L().Info("starting server", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})

		g.Go(func() error {
			<-gCtx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gCtx), 30*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		if orch != nil {
			g.Go(func() error {
				return orch.Run(gCtx, pollIntervalOrDefault())
			})
		}

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&servePoll, "poll", false, "also run the polling loop")
	rootCmd.AddCommand(serveCmd)
}
