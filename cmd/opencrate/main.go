// OpenCrate - record store CLI
//
// This is the main entry point for the opencrate command. It loads the
// configuration, opens the record database lazily and exposes the bundled
// users model, id generation, connectivity checks and the MQTT change feed.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// configEnv names the environment variable holding the config file path.
const configEnv = "OPENCRATE_CONFIG"

func main() {
	// Cancel on Ctrl+C and SIGTERM so long-running commands (watch) stop cleanly.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the command line in args, separated from main for testability.
func run(ctx context.Context, args []string) error {
	root := newRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "opencrate",
		Short: "Store and look up records in a relational database",
		Long: `opencrate manages the users table through the record library.

Connection settings come from a YAML file (--config or OPENCRATE_CONFIG)
and OPENCRATE_* environment variables. Without a file, defaults plus the
environment are used.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $"+configEnv+")")

	root.AddCommand(newCheckCmd(opts))
	root.AddCommand(newGenIDCmd())
	root.AddCommand(newUsersCmd(opts))
	root.AddCommand(newWatchCmd(opts))
	root.AddCommand(newAuditCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

// getConfigPath returns the configuration file path.
// The --config flag wins over OPENCRATE_CONFIG; empty means no file.
func getConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(configEnv)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "opencrate %s (commit %s, built %s)\n", version, commit, date)
			return err
		},
	}
}
