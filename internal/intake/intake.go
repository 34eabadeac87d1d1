// Package intake runs the operator review gates that precede a filing: pick a
// weighing, confirm it, pick one of its documents and confirm the assembled
// payload.
package intake

import (
	"context"
	"errors"
	"fmt"

	"dtefiler/internal/assembler"
	"dtefiler/internal/confirm"
	"dtefiler/internal/logging"
	"dtefiler/internal/records"
)

var (
	// ErrRetryWithCorrectInput means the operator rejected the reviewed data
	// and should start again with the right weighing.
	ErrRetryWithCorrectInput = errors.New("rerun with the correct weighing number")
	// ErrExit means the operator asked to quit.
	ErrExit = errors.New("exit requested")
)

// Stopped reports whether err is a graceful operator stop.
func Stopped(err error) bool {
	return errors.Is(err, ErrRetryWithCorrectInput) || errors.Is(err, ErrExit)
}

const (
	weighingPrompt       = "Ingresar numero de pesaje:"
	linePrompt           = "Ingresa el número de Línea del Documento:"
	documentQuestion     = "¿ Son correctos los datos del Documento ? [ s = SI / n = NO / e = EXIT ]"
	retryMessage         = "Ejecuta el programa de nuevo con el número de pesaje correcto."
	lineOutOfRangeFormat = "Línea fuera de rango (1-%d)."
)

// Intake owns the review conversation for one filing.
type Intake struct {
	provider  records.Provider
	assembler *assembler.Assembler
	prompter  *confirm.Prompter
}

// New creates an Intake.
func New(provider records.Provider, prompter *confirm.Prompter) *Intake {
	return &Intake{
		provider:  provider,
		assembler: assembler.New(provider),
		prompter:  prompter,
	}
}

// Run walks the review gates and returns the confirmed payload. A weighingID
// of zero asks the operator for it.
func (in *Intake) Run(ctx context.Context, weighingID int64) (*assembler.SubmissionPayload, error) {
	if weighingID == 0 {
		n, err := in.prompter.AskNumber(ctx, weighingPrompt)
		if err != nil {
			return nil, err
		}
		weighingID = n
	}

	w, err := in.provider.GetWeighing(ctx, weighingID)
	if err != nil {
		return nil, fmt.Errorf("weighing %d: %w", weighingID, err)
	}
	if err := in.gate(ctx, "DATOS PESAJE", RenderWeighing(*w), ""); err != nil {
		return nil, err
	}

	docs, err := in.provider.GetDocumentsForWeighing(ctx, weighingID)
	if err != nil {
		return nil, fmt.Errorf("documents of weighing %d: %w", weighingID, err)
	}
	if err := in.prompter.Show(ctx, "DOCUMENTOS", RenderDocuments(docs)); err != nil {
		return nil, err
	}
	doc, err := in.chooseDocument(ctx, docs)
	if err != nil {
		return nil, err
	}

	payload, err := in.assembler.Assemble(ctx, *w, doc)
	if err != nil {
		return nil, err
	}
	if err := in.gate(ctx, "DOCUMENTO SELECCIONADO", RenderDocument(payload), documentQuestion); err != nil {
		return nil, err
	}
	logging.Records("weighing %d document %d confirmed for filing", w.ID, doc.ID)
	return payload, nil
}

func (in *Intake) gate(ctx context.Context, title, body, question string) error {
	answer, err := in.prompter.Confirm(ctx, title, body, question)
	if err != nil {
		return err
	}
	switch answer {
	case confirm.No:
		_ = in.prompter.Show(ctx, retryMessage, "")
		return ErrRetryWithCorrectInput
	case confirm.Exit:
		_ = in.prompter.Show(ctx, "Programa Terminado", "")
		return ErrExit
	}
	return nil
}

func (in *Intake) chooseDocument(ctx context.Context, docs []records.DocumentRecord) (records.DocumentRecord, error) {
	if len(docs) == 1 {
		return docs[0], nil
	}
	for {
		n, err := in.prompter.AskNumber(ctx, linePrompt)
		if err != nil {
			return records.DocumentRecord{}, err
		}
		if n >= 1 && int(n) <= len(docs) {
			return docs[n-1], nil
		}
		if err := in.prompter.Show(ctx, fmt.Sprintf(lineOutOfRangeFormat, len(docs)), ""); err != nil {
			return records.DocumentRecord{}, err
		}
	}
}
