// Command wmsctl is a terminal client for the warehouse API. Every invocation
// signs in with the configured credentials, runs one command and exits.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wms/internal/client"
	"wms/internal/config"
	"wms/internal/logger"
	"wms/internal/session"
	"wms/internal/token"
)

type app struct {
	cfg    *config.Client
	log    *zap.Logger
	store  *session.Store
	api    *client.Client
	output string
}

// signin populates the session from the configured credentials.
func (a *app) signin(ctx context.Context) (token.Identity, error) {
	if a.cfg.Username == "" || a.cfg.Password == "" {
		return token.Identity{}, fmt.Errorf("credentials required (--username/--password or WMS_USERNAME/WMS_PASSWORD)")
	}
	return a.api.Login(ctx, a.cfg.Username, a.cfg.Password)
}

func (a *app) print(v any) error {
	return render(os.Stdout, a.output, v)
}

func newRootCmd(a *app) *cobra.Command {
	var (
		envFile  string
		apiURL   string
		username string
		password string
	)

	root := &cobra.Command{
		Use:           "wmsctl",
		Short:         "Warehouse management client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClient(envFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("api") {
				cfg.APIURL = apiURL
			}
			if cmd.Flags().Changed("username") {
				cfg.Username = username
			}
			if cmd.Flags().Changed("password") {
				cfg.Password = password
			}
			if a.output != "json" && a.output != "yaml" {
				return fmt.Errorf("unknown output format %q (json|yaml)", a.output)
			}

			a.cfg = cfg
			a.log = logger.New(logger.Config{Env: cfg.LogEnv, Level: cfg.LogLevel, Service: "wmsctl"})
			a.store = session.New()
			a.api, err = client.New(cfg.APIURL, a.store,
				client.WithTimeout(cfg.RequestTimeout),
				client.WithLogger(a.log),
			)
			return err
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "Optional .env file")
	root.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (env WMS_API_URL)")
	root.PersistentFlags().StringVar(&username, "username", "", "Username (env WMS_USERNAME)")
	root.PersistentFlags().StringVar(&password, "password", "", "Password (env WMS_PASSWORD)")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", "json", "Output format: json|yaml")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newHealthCmd(a),
		newAccountsCmd(a),
		newItemsCmd(a),
		newBoxesCmd(a),
		newInventoryCmd(a),
		newOrdersCmd(a),
		newAuditCmd(a),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	if a.log != nil {
		_ = a.log.Sync()
	}
	if err != nil {
		if a.store != nil {
			if state := a.store.Error(); state.Active {
				fmt.Fprintf(os.Stderr, "%s: %s\n", state.Header, state.Message)
			}
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
