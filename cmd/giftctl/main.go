// Package main provides giftctl, a command-line client for the giftwise API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"giftwise/internal/client"
	"giftwise/internal/logger"
)

const defaultAPIURL = "http://localhost:8080"

func main() {
	logger.Init(envOr("ENV", "production"))
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// app is the state shared by all subcommands.
type app struct {
	out       io.Writer
	apiURL    string
	tokenFile string
	asJSON    bool
	session   *client.Session
}

// restore loads the stored session and fails when there is none.
func (a *app) restore(ctx context.Context) error {
	if err := a.session.Restore(ctx); err != nil {
		if client.IsUnauthorized(err) {
			return fmt.Errorf("session expired, run 'giftctl login'")
		}
		return err
	}
	if a.session.State() != client.StateAuthenticated {
		return fmt.Errorf("not logged in, run 'giftctl login'")
	}
	return nil
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func rootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	cmd := &cobra.Command{
		Use:   "giftctl",
		Short: "Manage people, gifts, occasions and budgets in giftwise",
		Long: `giftctl talks to a giftwise API server.

Log in once; the session token is kept in your config directory and reused
until it expires or you log out.

Examples:
  giftctl register --name Alice --email alice@example.com --password '...'
  giftctl people add "Mom" --relationship family
  giftctl gifts add --to <person-id> --name Scarf --price 2599
  giftctl gifts status <gift-id> purchased
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.tokenFile == "" {
				path, err := client.DefaultTokenPath()
				if err != nil {
					return err
				}
				a.tokenFile = path
			}
			a.session = client.NewSession(client.New(a.apiURL, nil), client.NewFileTokenStore(a.tokenFile))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&a.apiURL, "api", envOr("GIFTWISE_API_URL", defaultAPIURL), "API base URL")
	cmd.PersistentFlags().StringVar(&a.tokenFile, "token-file", os.Getenv("GIFTWISE_TOKEN_FILE"), "Session token file (default: user config dir)")
	cmd.PersistentFlags().BoolVar(&a.asJSON, "json", false, "Print results as JSON")

	cmd.AddCommand(
		registerCmd(a),
		loginCmd(a),
		logoutCmd(a),
		whoamiCmd(a),
		peopleCmd(a),
		giftsCmd(a),
		occasionsCmd(a),
		budgetsCmd(a),
	)
	return cmd
}
