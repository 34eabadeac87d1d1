package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dtefiler/internal/confirm"
	"dtefiler/internal/intake"
	"dtefiler/internal/logging"
	"dtefiler/internal/submission"

	"github.com/spf13/cobra"
)

var fileCmd = &cobra.Command{
	Use:   "file [weighing]",
	Short: "Review a weighing and file its transport guide",
	Long: `Loads the weighing (asking for its number when not given), shows it for
review, lets the operator pick the document when there are several, and files
the confirmed document on the portal.

Answering "n" at a review gate or "e" anywhere ends the run with exit code 2.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFile,
}

func runFile(cmd *cobra.Command, args []string) error {
	weighingID, err := parseWeighingArg(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logging.BootWarn("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	provider, closeDB, err := openProvider(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer func() {
		if err := closeDB(); err != nil {
			logging.BootWarn("closing record store: %v", err)
		}
	}()

	prompter := confirm.NewPrompter(confirm.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout()))

	payload, err := intake.New(provider, prompter).Run(ctx, weighingID)
	if err != nil {
		if intake.Stopped(err) {
			return fmt.Errorf("%w: %v", errEarlyExit, err)
		}
		return err
	}

	opts, err := submission.OptionsFromConfig(cfg.Portal)
	if err != nil {
		return err
	}
	ctrl := submission.New(newDriver(cfg), prompter, payload, opts)
	logging.Session("run %s: filing document %d", ctrl.RunID(), payload.Document.ID)

	out, err := ctrl.Run(ctx)
	if err != nil {
		return err
	}
	if out.State.Phase == submission.Stopped {
		return fmt.Errorf("%w: %s", errEarlyExit, out.Reason)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Documento firmado. Descarga: %s\n", out.ArtifactURL)
	return nil
}
