package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dtefiler/internal/config"
	"dtefiler/internal/portal"
	"dtefiler/internal/records"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	weighErr error
}

func (s *stubProvider) GetWeighing(_ context.Context, id int64) (*records.WeighingRecord, error) {
	if s.weighErr != nil {
		return nil, s.weighErr
	}
	return &records.WeighingRecord{
		ID: id, Status: records.WeighingClosed, Cycle: "Venta", Plate: "KLMN34",
		Driver: records.Person{Name: "PEDRO SOTO", NationalID: "11.111.111-1"},
	}, nil
}

func (s *stubProvider) GetDocumentsForWeighing(context.Context, int64) ([]records.DocumentRecord, error) {
	total := decimal.NewFromInt(4200)
	return []records.DocumentRecord{{
		ID: 9, Line: 1, Date: time.Date(2026, time.May, 2, 0, 0, 0, 0, time.UTC), DeclaredTotal: &total,
		Internal:          records.Entity{Name: "AGRICOLA", NationalID: "76.000.000-1"},
		Destination:       records.Entity{Name: "EXPORTADORA", NationalID: "96.000.000-2"},
		DestinationBranch: records.Branch{Locality: "Molina"},
	}}, nil
}

func (s *stubProvider) GetLineItems(context.Context, int64) ([]records.LineItem, error) {
	label, count := "BIN", 4
	return []records.LineItem{{Container: &label, ContainerCount: &count}}, nil
}

func (s *stubProvider) GetCredentials(context.Context, string) (*records.Credentials, error) {
	return &records.Credentials{Username: "u", Password: "p", SigningPassphrase: "f"}, nil
}

// deadDriver fails to open, like a machine without Chrome.
type deadDriver struct{ closed bool }

var errNoChrome = errors.New("chrome not found")

func (d *deadDriver) Open(context.Context) error { return errNoChrome }
func (d *deadDriver) Goto(context.Context, string) error { return errNoChrome }
func (d *deadDriver) WaitForElement(context.Context, string, time.Duration) error { return errNoChrome }
func (d *deadDriver) Focus(context.Context, string) error { return errNoChrome }
func (d *deadDriver) TypeText(context.Context, string) error { return errNoChrome }
func (d *deadDriver) PressKey(context.Context, portal.Key) error { return errNoChrome }
func (d *deadDriver) Click(context.Context, string) error { return errNoChrome }
func (d *deadDriver) Select(context.Context, string, string) error { return errNoChrome }
func (d *deadDriver) Evaluate(context.Context, string, ...interface{}) (interface{}, error) {
	return nil, errNoChrome
}
func (d *deadDriver) WaitNavigation(context.Context, time.Duration) func() error {
	return func() error { return errNoChrome }
}
func (d *deadDriver) WaitForSignal(context.Context, string, string, time.Duration) (portal.WaitOutcome, error) {
	return 0, errNoChrome
}
func (d *deadDriver) Close() error {
	d.closed = true
	return nil
}

func withStubs(t *testing.T, p records.Provider, d portal.Driver) {
	t.Helper()
	origProvider, origDriver := openProvider, newDriver
	openProvider = func(context.Context, config.DatabaseConfig) (records.Provider, func() error, error) {
		return p, func() error { return nil }, nil
	}
	newDriver = func(*config.Config) portal.Driver { return d }
	t.Cleanup(func() {
		openProvider, newDriver = origProvider, origDriver
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
}

func execute(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	missing := filepath.Join(t.TempDir(), "dtefiler.yaml")
	code := run(append(args, "--config", missing))
	return code, out.String(), errOut.String()
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitEarlyExit, exitCode(fmt.Errorf("%w: giro", errEarlyExit)))
	assert.Equal(t, exitError, exitCode(errors.New("boom")))
}

func TestParseWeighingArg(t *testing.T) {
	n, err := parseWeighingArg(nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = parseWeighingArg([]string{"Nº 1.234"})
	require.NoError(t, err)
	assert.Equal(t, int64(1234), n)

	_, err = parseWeighingArg([]string{"abc"})
	assert.Error(t, err)
}

func TestShowCommand(t *testing.T) {
	withStubs(t, &stubProvider{}, &deadDriver{})

	code, out, _ := execute(t, "", "show", "77")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "Numero:  77")
	assert.Contains(t, out, "Patente: KLMN34")
	assert.Contains(t, out, "1) Doc 9")
	assert.Contains(t, out, "$4.200")
}

func TestShowCommand_NotFound(t *testing.T) {
	withStubs(t, &stubProvider{weighErr: records.ErrNotFound}, &deadDriver{})

	code, _, errOut := execute(t, "", "show", "77")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "record not found")
}

func TestFileCommand_OperatorRejectsWeighing(t *testing.T) {
	d := &deadDriver{}
	withStubs(t, &stubProvider{}, d)

	code, out, errOut := execute(t, "n\n", "file", "77")
	assert.Equal(t, exitEarlyExit, code)
	assert.Contains(t, out, "DATOS PESAJE")
	assert.Contains(t, errOut, "Programa Terminado")
	assert.False(t, d.closed, "portal must not be opened")
}

func TestFileCommand_BrowserUnavailable(t *testing.T) {
	d := &deadDriver{}
	withStubs(t, &stubProvider{}, d)

	code, _, errOut := execute(t, "s\ns\n", "file", "77")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "chrome not found")
	assert.True(t, d.closed)
}
