package submission

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"dtefiler/internal/assembler"
	"dtefiler/internal/config"
	"dtefiler/internal/portal"
	"dtefiler/internal/records"

	"github.com/shopspring/decimal"
)

type call struct {
	Op     string
	Target string
	Value  string
}

// fakeDriver scripts the portal and records every call in order.
type fakeDriver struct {
	calls []call

	structured bool
	netTotal   string
	giroText   string
	href       string

	// navErrs are returned by successive armed navigation waits.
	navErrs []error
	// fail maps "op target" to the error that call returns.
	fail   map[string]error
	signal portal.WaitOutcome

	closed bool
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		structured: true,
		netTotal:   "1.200",
		giroText:   "VENTA AL POR MAYOR DE FRUTAS",
		href:       "https://www1.sii.cl/cgi-bin/Portal001/mipeShowPdf.cgi?CODIGO=1",
		signal:     portal.Signaled,
		fail:       map[string]error{},
	}
}

func (f *fakeDriver) record(op, target, value string) error {
	f.calls = append(f.calls, call{Op: op, Target: target, Value: value})
	return f.fail[op+" "+target]
}

func (f *fakeDriver) Open(context.Context) error { return f.record("open", "", "") }

func (f *fakeDriver) Goto(_ context.Context, url string) error { return f.record("goto", url, "") }

func (f *fakeDriver) WaitForElement(_ context.Context, selector string, _ time.Duration) error {
	return f.record("wait", selector, "")
}

func (f *fakeDriver) Focus(_ context.Context, selector string) error {
	return f.record("focus", selector, "")
}

func (f *fakeDriver) TypeText(_ context.Context, text string) error {
	return f.record("type", "", text)
}

func (f *fakeDriver) PressKey(_ context.Context, key portal.Key) error {
	return f.record("key", "", string(key))
}

func (f *fakeDriver) Click(_ context.Context, selector string) error {
	return f.record("click", selector, "")
}

func (f *fakeDriver) Select(_ context.Context, selector, value string) error {
	return f.record("select", selector, value)
}

func (f *fakeDriver) Evaluate(_ context.Context, script string, args ...interface{}) (interface{}, error) {
	target := ""
	if len(args) > 0 {
		target = fmt.Sprint(args[0])
	}
	var (
		name   string
		result interface{}
	)
	switch script {
	case probeElementJS:
		name, result = "probe", f.structured
	case clearValueJS:
		name, result = "clear", true
	case presentGiroJS:
		name, result = "present-giro", true
	case selectedGiroJS:
		name, result = "read-giro", f.giroText
	case readValueJS:
		name, result = "read-total", f.netTotal
	case linkHrefJS:
		name, result = "read-href", f.href
	default:
		name = "eval"
	}
	if err := f.record(name, target, ""); err != nil {
		return nil, err
	}
	return result, nil
}

func (f *fakeDriver) WaitNavigation(context.Context, time.Duration) func() error {
	f.record("arm-navigation", "", "")
	var err error
	if len(f.navErrs) > 0 {
		err, f.navErrs = f.navErrs[0], f.navErrs[1:]
	}
	return func() error {
		f.record("wait-navigation", "", "")
		return err
	}
}

func (f *fakeDriver) WaitForSignal(_ context.Context, selector, event string, _ time.Duration) (portal.WaitOutcome, error) {
	if err := f.record("signal", selector, event); err != nil {
		return 0, err
	}
	return f.signal, nil
}

func (f *fakeDriver) Close() error {
	f.closed = true
	return nil
}

func (f *fakeDriver) count(op, target string) int {
	n := 0
	for _, c := range f.calls {
		if c.Op == op && (target == "" || c.Target == target) {
			n++
		}
	}
	return n
}

// index returns the position of the first call matching op and target, or -1.
func (f *fakeDriver) index(op, target string) int {
	for i, c := range f.calls {
		if c.Op == op && c.Target == target {
			return i
		}
	}
	return -1
}

func (f *fakeDriver) typed() []string {
	var out []string
	for _, c := range f.calls {
		if c.Op == "type" {
			out = append(out, c.Value)
		}
	}
	return out
}

// fakeChannel answers from a script and records what the operator saw.
type fakeChannel struct {
	answers []string
	shown   []string
	asked   []string
}

func (c *fakeChannel) Show(_ context.Context, title, body string) error {
	c.shown = append(c.shown, title+"\n"+body)
	return nil
}

func (c *fakeChannel) Ask(_ context.Context, prompt string) (string, error) {
	c.asked = append(c.asked, prompt)
	if len(c.answers) == 0 {
		return "", io.EOF
	}
	a := c.answers[0]
	c.answers = c.answers[1:]
	return a, nil
}

func (c *fakeChannel) askedCount(prompt string) int {
	n := 0
	for _, p := range c.asked {
		if p == prompt {
			n++
		}
	}
	return n
}

func (c *fakeChannel) sawText(s string) bool {
	for _, shown := range c.shown {
		if strings.Contains(shown, s) {
			return true
		}
	}
	return false
}

func yesTimes(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "s"
	}
	return out
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func decPtr(d decimal.Decimal) *decimal.Decimal { return &d }

func productLine(label string, price, kilos int64, container string, count int) records.LineItem {
	l := records.LineItem{
		Product:   strPtr(label),
		UnitPrice: decPtr(decimal.NewFromInt(price)),
		Kilos:     decimal.NewFromInt(kilos),
	}
	if container != "" {
		l.Container = strPtr(container)
		l.ContainerCount = intPtr(count)
	}
	return l
}

func containerLine(label string, count int) records.LineItem {
	return records.LineItem{Container: strPtr(label), ContainerCount: intPtr(count)}
}

func testPayload(lines ...records.LineItem) *assembler.SubmissionPayload {
	total := decimal.NewFromInt(1200)
	w := records.WeighingRecord{
		ID:     100,
		Status: records.WeighingClosed,
		Cycle:  "Recepcion",
		Plate:  "HJKL12",
		Driver: records.Person{Name: "JUAN PEREZ", NationalID: "12.345.678-5"},
	}
	d := records.DocumentRecord{
		ID:            7,
		Line:          1,
		Date:          time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC),
		DeclaredTotal: &total,
		Internal:      records.Entity{ID: 1, Name: "AGRICOLA", NationalID: "76.543.210-K"},
		Destination:   records.Entity{ID: 2, Name: "EXPORTADORA", NationalID: "96.111.222-3"},
		DestinationBranch: records.Branch{
			Name: "CASA MATRIZ", Address: "RUTA 5 KM 200", Locality: "Curicó",
		},
	}
	creds := records.Credentials{Username: "76543210-K", Password: "secret", SigningPassphrase: "firma"}
	p, err := assembler.Compose(w, d, lines, creds)
	if err != nil {
		panic(err)
	}
	return p
}

func testOptions() Options {
	o, err := OptionsFromConfig(config.DefaultConfig().Portal)
	if err != nil {
		panic(err)
	}
	return o
}
