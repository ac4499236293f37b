package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskboard/pkg/config"
	"github.com/harrisonrobin/taskboard/pkg/session"
	"github.com/harrisonrobin/taskboard/pkg/store"
	"github.com/harrisonrobin/taskboard/pkg/web"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		listen       string
		secureCookie bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task board over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			secrets, err := a.cfg.LoadSecrets()
			if err != nil {
				return err
			}
			guard, err := session.NewGuard(secrets.Passwords)
			if err != nil {
				return err
			}
			sessionTTL, err := a.cfg.SessionTTL()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var sessions session.Store
			switch a.cfg.Sessions.Backend {
			case config.SessionsRedis:
				client, err := session.NewRedisClient(a.cfg.Sessions.RedisURL)
				if err != nil {
					return err
				}
				defer client.Close()
				if err := client.Ping(ctx).Err(); err != nil {
					return fmt.Errorf("could not reach session redis: %w", err)
				}
				sessions = session.NewRedisStore(client, sessionTTL)
			default:
				sessions = session.NewMemoryStore(sessionTTL)
			}

			st, err := a.newStore()
			if err != nil {
				return err
			}
			checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			_, err = st.Validate(checkCtx)
			cancel()
			switch {
			case errors.Is(err, store.ErrSchemaMismatch):
				return err
			case err != nil:
				log.WithError(err).Warn("task sheet is unreachable, will retry on first request")
			}

			srv, err := web.New(st, guard, session.NewManager(sessions), web.Options{
				DefaultEffort: a.cfg.Effort.Default,
				SecureCookie:  secureCookie,
				SessionTTL:    sessionTTL,
				Logger:        log.StandardLogger(),
			})
			if err != nil {
				return err
			}

			if listen == "" {
				listen = a.cfg.Listen
			}
			log.WithFields(log.Fields{
				"sessions": a.cfg.Sessions.Backend,
				"users":    len(secrets.Passwords),
			}).Info("starting task board")
			return srv.Start(ctx, listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&secureCookie, "secure-cookie", false, "mark the session cookie Secure (serve behind TLS)")
	return cmd
}
