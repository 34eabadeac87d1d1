// Package assembler turns weighbridge records into a validated SubmissionPayload.
package assembler

import (
	"context"
	"errors"
	"fmt"

	"dtefiler/internal/logging"
	"dtefiler/internal/records"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var (
	ErrTooManyLines = fmt.Errorf("document has more than %d lines", records.MaxLineItems)
	ErrNoLines      = errors.New("document has no lines")
	ErrInvalid      = errors.New("invalid submission data")
)

// SubmissionPayload is everything one filing needs. It is owned by a single
// controller run.
type SubmissionPayload struct {
	Weighing    records.WeighingRecord
	Document    records.DocumentRecord
	Lines       []records.LineItem `validate:"min=1,max=10"`
	Credentials records.Credentials

	ExpectedTotal decimal.Decimal
	HasProducts   bool
}

var validate = validator.New()

// Compose validates the records and builds the payload. It performs no I/O.
func Compose(w records.WeighingRecord, d records.DocumentRecord, lines []records.LineItem, creds records.Credentials) (*SubmissionPayload, error) {
	if w.Status == records.WeighingVoid {
		return nil, fmt.Errorf("weighing %d: %w", w.ID, records.ErrVoidWeighing)
	}
	if len(lines) > records.MaxLineItems {
		return nil, fmt.Errorf("document %d has %d lines: %w", d.ID, len(lines), ErrTooManyLines)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("document %d: %w", d.ID, ErrNoLines)
	}
	if !creds.Complete() {
		return nil, fmt.Errorf("entity %s: %w", d.Internal.NationalID, records.ErrMissingCredentials)
	}

	p := &SubmissionPayload{
		Weighing:    w,
		Document:    d,
		Lines:       append([]records.LineItem(nil), lines...),
		Credentials: creds,
	}
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	computed := decimal.Zero
	for _, line := range p.Lines {
		if line.IsContainerOnly() {
			continue
		}
		p.HasProducts = true
		computed = computed.Add(line.Price().Mul(line.Kilos))
	}
	if d.DeclaredTotal != nil {
		p.ExpectedTotal = *d.DeclaredTotal
	} else {
		p.ExpectedTotal = computed.Round(0)
	}

	return p, nil
}

// Assembler loads the remaining records of a chosen document and composes the payload.
type Assembler struct {
	provider records.Provider
}

// New creates an Assembler.
func New(provider records.Provider) *Assembler {
	return &Assembler{provider: provider}
}

// Assemble fetches line items and credentials for the document, then composes.
func (a *Assembler) Assemble(ctx context.Context, w records.WeighingRecord, d records.DocumentRecord) (*SubmissionPayload, error) {
	var (
		lines []records.LineItem
		creds *records.Credentials
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lines, err = a.provider.GetLineItems(gctx, d.ID)
		return err
	})
	g.Go(func() error {
		var err error
		creds, err = a.provider.GetCredentials(gctx, d.Internal.NationalID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p, err := Compose(w, d, lines, *creds)
	if err != nil {
		return nil, err
	}
	logging.Records("assembled document %d: %d line(s), expected total %s", d.ID, len(p.Lines), records.FormatAmount(p.ExpectedTotal))
	return p, nil
}
