package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wamigrate/wamigrate/internal/cryptox"
	"github.com/wamigrate/wamigrate/internal/server"
	"github.com/wamigrate/wamigrate/internal/session"
	"github.com/wamigrate/wamigrate/internal/tasks"
)

// Serve starts the HTTP API and blocks until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	host := r.config.Server.Host
	port := r.config.Server.Port
	if cmd.String("host") != "" {
		host = cmd.String("host")
	}
	if cmd.Int("port") != 0 {
		port = cmd.Int("port")
	}

	codec, err := session.NewCodec(r.config.Auth.EncryptionSecret)
	if err != nil {
		return fmt.Errorf("failed to build session codec: %w", err)
	}
	policy := session.NewPolicy(r.config.Auth.AdminPhone, r.config.Migration.AllowedPairs)

	db, sessions, backups, admins, err := r.openRepositories()
	if err != nil {
		return err
	}
	defer db.Close()

	engine := tasks.NewPipelineEngine(sessions, r.config.Migration.StageDelay(), r.logger)
	key := cryptox.DeriveKey(r.config.Auth.EncryptionSecret)

	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger), server.CORS(), server.RateLimit(10, 20))
	router.Handler(server.NewHealthHandler("wamigrate", version, r.config.Auth.AdminPhone))
	router.Handler(server.NewAuthHandler(codec, policy, admins, r.logger))
	router.Handler(server.NewBackupHandler(codec, backups, r.logger))
	router.Handler(server.NewMigrationHandler(codec, policy, sessions, engine, r.logger))
	router.Handler(server.NewExportHandler(backups, key, r.logger))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	// Let in-flight pipelines settle before the database closes.
	engine.Wait()
	return nil
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the backup and migration HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind (overrides config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to bind (overrides config)",
			},
		},
		Action: r.Serve,
	}
}
