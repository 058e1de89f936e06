package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"wms/internal/client"
	"wms/internal/model"
	"wms/internal/monitor"
)

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in and print the decoded identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ident, err := a.signin(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(ident)
		},
	}
}

// newLogoutCmd revokes the token, then clears the session after the
// configured countdown. Interrupting the countdown keeps the session.
func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the token and sign out after a countdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := a.signin(ctx); err != nil {
				return err
			}
			if err := a.api.Revoke(ctx); err != nil {
				return err
			}

			expiry := monitor.NewExpiry(a.store,
				monitor.WithCountdown(a.cfg.LogoutCountdown, a.cfg.CountdownTick),
				monitor.OnTick(func(remaining time.Duration) {
					fmt.Fprintf(os.Stderr, "Signing out in %s\n", remaining.Round(time.Second))
				}),
				monitor.WithExpiryLogger(a.log),
			)
			expiry.Trigger(ctx)

			select {
			case <-expiry.Expired():
				fmt.Fprintln(os.Stderr, "Signed out")
				return nil
			case <-ctx.Done():
				expiry.Stop()
				return fmt.Errorf("logout interrupted, session kept: %w", ctx.Err())
			}
		},
	}
}

type healthStatus struct {
	Healthy bool      `json:"healthy"`
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}

func newHealthStatus(healthy bool, err error) healthStatus {
	st := healthStatus{Healthy: healthy, At: time.Now()}
	if err != nil {
		st.Error = err.Error()
	}
	return st
}

func newHealthCmd(a *app) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Probe server liveness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if !watch {
				err := a.api.Ping(ctx)
				if perr := a.print(newHealthStatus(err == nil, err)); perr != nil {
					return perr
				}
				return err
			}
			poller := monitor.NewHealthPoller(a.api, a.cfg.HealthInterval, func(healthy bool, err error) {
				_ = a.print(newHealthStatus(healthy, err))
			}, a.log)
			return poller.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep probing on the health interval until interrupted")
	return cmd
}

// watchInventory streams inventory events while a health poller reports
// connectivity on stderr. Either failing stops both.
func watchInventory(ctx context.Context, a *app) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := a.api.WatchInventory(gctx, func(ev model.InventoryEvent) {
			_ = a.print(ev)
		})
		if err == nil && ctx.Err() == nil {
			return fmt.Errorf("%w: inventory watch closed by server", client.ErrTransport)
		}
		return err
	})
	g.Go(func() error {
		return monitor.NewHealthPoller(a.api, a.cfg.HealthInterval, func(healthy bool, err error) {
			if !healthy {
				fmt.Fprintln(os.Stderr, "server unreachable:", err)
			}
		}, a.log).Run(gctx)
	})
	return g.Wait()
}
