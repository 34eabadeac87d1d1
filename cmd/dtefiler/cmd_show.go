package main

import (
	"errors"
	"fmt"

	"dtefiler/internal/intake"
	"dtefiler/internal/records"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <weighing>",
	Short: "Print a weighing and its documents without opening the portal",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	weighingID, err := parseWeighingArg(args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	provider, closeDB, err := openProvider(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer closeDB()

	w, err := provider.GetWeighing(ctx, weighingID)
	if err != nil && !errors.Is(err, records.ErrVoidWeighing) {
		return fmt.Errorf("weighing %d: %w", weighingID, err)
	}
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Pesaje %d: %v\n", weighingID, err)
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "DATOS PESAJE")
	fmt.Fprint(out, intake.RenderWeighing(*w))

	docs, err := provider.GetDocumentsForWeighing(ctx, weighingID)
	if errors.Is(err, records.ErrNoDocuments) {
		fmt.Fprintln(out, "Sin documentos.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "DOCUMENTOS")
	fmt.Fprint(out, intake.RenderDocuments(docs))
	return nil
}
