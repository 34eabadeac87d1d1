// Command dtefiler files weighbridge transport guides on the SII portal.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"dtefiler/internal/config"
	"dtefiler/internal/logging"
	"dtefiler/internal/portal"
	"dtefiler/internal/records"
	"dtefiler/internal/store"

	"github.com/spf13/cobra"
)

// Process exit codes.
const (
	exitOK        = 0
	exitError     = 1
	exitEarlyExit = 2
)

// errEarlyExit marks a graceful stop chosen by the operator.
var errEarlyExit = errors.New("stopped by operator")

var (
	// Global flags
	configPath string
	verbose    bool

	cfg *config.Config
)

// Seams replaced in tests.
var (
	openProvider = func(ctx context.Context, dc config.DatabaseConfig) (records.Provider, func() error, error) {
		db, err := store.Open(ctx, dc)
		if err != nil {
			return nil, nil, err
		}
		return store.NewSQLProvider(db), db.Close, nil
	}
	newDriver = func(c *config.Config) portal.Driver {
		return portal.NewRodDriver(c.Browser, c.Portal)
	}
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dtefiler",
	Short: "File weighbridge transport guides on the SII portal",
	Long: `dtefiler reads a weighing and its documents from the weighbridge database,
walks the operator through the review gates and fills, signs and downloads
the electronic transport guide on the SII MIPE portal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if err := logging.Initialize(cfg.Logging, verbose); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.Boot("config loaded from %s (db driver %s)", configPath, cfg.Database.Driver)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "dtefiler.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(fileCmd, showCmd)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	code := exitCode(err)
	switch code {
	case exitEarlyExit:
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Programa Terminado")
	case exitError:
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return code
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errEarlyExit):
		return exitEarlyExit
	default:
		return exitError
	}
}

// parseWeighingArg accepts "1234" as well as operator input like "Nº 1.234".
func parseWeighingArg(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, nil
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, args[0])
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid weighing number %q", args[0])
	}
	return n, nil
}
