// Package submission drives one filing of a transport guide on the SII portal:
// a strictly ordered state machine over a portal.Driver, with operator
// confirmations at the judgment points.
package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dtefiler/internal/assembler"
	"dtefiler/internal/confirm"
	"dtefiler/internal/logging"
	"dtefiler/internal/portal"
	"dtefiler/internal/records"

	"github.com/google/uuid"
)

// ReasonAuthFailed is the abort reason of every authentication failure.
const ReasonAuthFailed = "authentication failed"

var ErrZeroWeight = errors.New("product line has zero weight")

// Outcome is the terminal result of a run.
type Outcome struct {
	State       State
	Reason      string
	ArtifactURL string
	RunID       string
}

// AbortError is returned when a filing is aborted. At is the last state
// reached before the abort.
type AbortError struct {
	At     State
	Reason string
	Err    error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("filing aborted at %s: %s: %v", e.At, e.Reason, e.Err)
}

func (e *AbortError) Unwrap() error { return e.Err }

// stopError ends a run gracefully on an operator decision.
type stopError struct {
	reason string
}

func (e *stopError) Error() string { return "stopped: " + e.reason }

// Controller files one payload. It owns its driver and is not reusable: build
// a new one for every filing attempt.
type Controller struct {
	driver   portal.Driver
	prompter *confirm.Prompter
	payload  *assembler.SubmissionPayload
	opts     Options

	runID       string
	state       State
	observers   []Observer
	artifactURL string
	log         *logging.Logger
}

// New creates a controller in the Init state.
func New(driver portal.Driver, prompter *confirm.Prompter, payload *assembler.SubmissionPayload, opts Options) *Controller {
	runID := uuid.NewString()
	return &Controller{
		driver:   driver,
		prompter: prompter,
		payload:  payload,
		opts:     opts,
		runID:    runID,
		state:    State{Phase: Init},
		log: logging.Get(logging.CategorySession).With(
			"run", runID,
			"weighing", payload.Weighing.ID,
			"document", payload.Document.ID,
		),
	}
}

// Observe registers an observer for state transitions.
func (c *Controller) Observe(o Observer) {
	c.observers = append(c.observers, o)
}

// RunID identifies this filing attempt in logs.
func (c *Controller) RunID() string { return c.runID }

// State returns the current state.
func (c *Controller) State() State { return c.state }

func (c *Controller) transition(to State) {
	if !canAdvance(c.state, to) {
		panic(fmt.Sprintf("submission: illegal transition %s -> %s", c.state, to))
	}
	c.log.Info("%s -> %s", c.state, to)
	c.state = to
	for _, o := range c.observers {
		o.OnTransition(to)
	}
}

type step struct {
	to     Phase
	reason string
	run    func(context.Context) error
}

// Run performs the filing. A graceful operator stop returns a Stopped outcome
// and a nil error. Any other failure returns an Aborted outcome and an
// *AbortError. The driver is closed before Run returns.
func (c *Controller) Run(ctx context.Context) (Outcome, error) {
	defer func() {
		if err := c.driver.Close(); err != nil {
			c.log.Warn("closing portal session: %v", err)
		}
	}()

	c.log.Info("filing document %d for weighing %d (%d line(s))",
		c.payload.Document.ID, c.payload.Weighing.ID, len(c.payload.Lines))

	err := c.run(ctx)
	if err == nil {
		return Outcome{State: c.state, ArtifactURL: c.artifactURL, RunID: c.runID}, nil
	}

	var stop *stopError
	if errors.As(err, &stop) {
		c.transition(State{Phase: Stopped})
		c.log.Info("stopped by operator: %s", stop.reason)
		return Outcome{State: c.state, Reason: stop.reason, RunID: c.runID}, nil
	}

	var abort *AbortError
	if !errors.As(err, &abort) {
		abort = &AbortError{At: c.state, Reason: "unexpected failure", Err: err}
	}
	if ctx.Err() != nil && abort.Reason != ReasonAuthFailed {
		abort.Reason = "cancelled"
	}
	c.transition(State{Phase: Aborted})
	c.log.Error("aborted at %s: %s: %v", abort.At, abort.Reason, abort.Err)
	return Outcome{State: c.state, Reason: abort.Reason, RunID: c.runID}, abort
}

func (c *Controller) run(ctx context.Context) error {
	header := []step{
		{Authenticated, ReasonAuthFailed, c.authenticate},
		{HeaderPopulated, "header population failed", c.populateHeader},
		{DestinationCityPending, "origin city entry failed", c.setOriginCity},
		{DateSelected, "date selection failed", c.selectDate},
		{DestinationCitySet, "destination city entry failed", c.setDestinationCity},
		{VehicleSectionResolved, "vehicle section failed", c.resolveVehicle},
	}
	if err := c.runSteps(ctx, header); err != nil {
		return err
	}

	for i, line := range c.payload.Lines {
		row := i + 1
		c.transition(State{Phase: LineItem, Line: row})
		if err := c.enterLine(ctx, row, line); err != nil {
			return c.abortOrStop(fmt.Sprintf("line %d failed", row), err)
		}
		if err := c.confirmGiro(ctx, row); err != nil {
			return c.abortOrStop(fmt.Sprintf("giro selection on line %d failed", row), err)
		}
	}
	c.transition(State{Phase: AllLinesEntered})

	tail := []step{
		{TotalsReconciled, "total reconciliation failed", c.reconcileTotals},
		{Visualized, "visualization failed", c.visualize},
		{Signed, "signing failed", c.sign},
		{ArtifactReady, "download failed", c.download},
	}
	return c.runSteps(ctx, tail)
}

func (c *Controller) runSteps(ctx context.Context, steps []step) error {
	for _, s := range steps {
		if err := s.run(ctx); err != nil {
			return c.abortOrStop(s.reason, err)
		}
		c.transition(State{Phase: s.to})
	}
	return nil
}

func (c *Controller) abortOrStop(reason string, err error) error {
	var stop *stopError
	if errors.As(err, &stop) {
		return err
	}
	if errors.Is(err, ErrZeroWeight) {
		reason = "zero weight product line"
	}
	return &AbortError{At: c.state, Reason: reason, Err: err}
}

func (c *Controller) authenticate(ctx context.Context) error {
	creds := c.payload.Credentials
	if err := c.driver.Open(ctx); err != nil {
		return err
	}
	if err := c.driver.Goto(ctx, c.opts.PortalURL); err != nil {
		return err
	}
	if err := c.driver.WaitForElement(ctx, portal.At(portal.SectionLogin, portal.FieldSubmit).Selector(), c.opts.NavigationTimeout); err != nil {
		return err
	}
	if err := c.focus(ctx, portal.At(portal.SectionLogin, portal.FieldUser)); err != nil {
		return err
	}
	if err := c.driver.TypeText(ctx, creds.Username); err != nil {
		return err
	}
	if err := c.focus(ctx, portal.At(portal.SectionLogin, portal.FieldPassword)); err != nil {
		return err
	}
	if err := c.driver.TypeText(ctx, creds.Password); err != nil {
		return err
	}

	c.log.Debug("credentials entered, waiting for the form")
	wait := c.driver.WaitNavigation(ctx, c.opts.AuthTimeout)
	if err := c.click(ctx, portal.At(portal.SectionLogin, portal.FieldSubmit)); err != nil {
		return err
	}
	if err := wait(); err != nil {
		return err
	}
	// Rejected credentials land back on the login page instead of the form.
	return c.driver.WaitForElement(ctx, portal.At(portal.SectionReceiver, portal.FieldNationalID).Selector(), c.opts.ElementTimeout)
}

func (c *Controller) populateHeader(ctx context.Context) error {
	doc := c.payload.Document
	if !doc.IsSale {
		if err := c.driver.Select(ctx, portal.At(portal.SectionEmitter, portal.FieldSaleIndicator).Selector(), c.opts.NotSaleValue); err != nil {
			return err
		}
	}

	body, check := records.SplitNationalID(doc.Destination.NationalID)
	if err := c.focus(ctx, portal.At(portal.SectionReceiver, portal.FieldNationalID)); err != nil {
		return err
	}
	if err := c.typeSequence(ctx, body, check); err != nil {
		return err
	}

	// The receiver block reloads after the id is complete. Missing the reload
	// only means the form was already up to date.
	wait := c.driver.WaitNavigation(ctx, c.opts.RefreshTimeout)
	if err := c.driver.PressKey(ctx, portal.KeyTab); err != nil {
		return err
	}
	if err := wait(); err != nil {
		if !portal.IsTimeout(err) || ctx.Err() != nil {
			return err
		}
		c.log.Debug("no receiver refresh within %s, continuing", c.opts.RefreshTimeout)
	}
	return nil
}

func (c *Controller) setOriginCity(ctx context.Context) error {
	city := strings.ToUpper(c.payload.Document.DestinationBranch.Locality)
	return c.replaceText(ctx, portal.At(portal.SectionEmitter, portal.FieldOriginCity), city)
}

func (c *Controller) selectDate(ctx context.Context) error {
	date := c.payload.Document.Date
	day := portal.At(portal.SectionEmitter, portal.FieldDay).Selector()
	if err := c.driver.WaitForElement(ctx, day, c.opts.ElementTimeout); err != nil {
		return err
	}
	if err := c.driver.Select(ctx, day, date.Format("02")); err != nil {
		return err
	}
	return c.driver.Select(ctx, portal.At(portal.SectionEmitter, portal.FieldMonth).Selector(), date.Format("01"))
}

func (c *Controller) setDestinationCity(ctx context.Context) error {
	loc := portal.At(portal.SectionReceiver, portal.FieldCity)
	if err := c.driver.WaitForElement(ctx, loc.Selector(), c.opts.ElementTimeout); err != nil {
		return err
	}
	return c.replaceText(ctx, loc, c.payload.Document.DestinationBranch.Locality)
}

const clearValueJS = `(selector) => {
	const el = document.querySelector(selector);
	if (!el) return false;
	el.value = '';
	return true;
}`

// replaceText clears a text field and types text into it.
func (c *Controller) replaceText(ctx context.Context, loc portal.FieldLocator, text string) error {
	ok, err := c.evalBool(ctx, clearValueJS, loc.Selector())
	if err != nil {
		return err
	}
	if !ok {
		return &portal.DriverError{Op: "clear", Target: loc.Selector(), Err: errors.New("element not found")}
	}
	if err := c.focus(ctx, loc); err != nil {
		return err
	}
	return c.driver.TypeText(ctx, text)
}

func (c *Controller) focus(ctx context.Context, loc portal.FieldLocator) error {
	return c.driver.Focus(ctx, loc.Selector())
}

func (c *Controller) click(ctx context.Context, loc portal.FieldLocator) error {
	return c.driver.Click(ctx, loc.Selector())
}

func (c *Controller) evalBool(ctx context.Context, script string, args ...interface{}) (bool, error) {
	v, err := c.driver.Evaluate(ctx, script, args...)
	if err != nil {
		return false, err
	}
	b, _ := v.(bool)
	return b, nil
}

func (c *Controller) evalString(ctx context.Context, script string, args ...interface{}) (string, error) {
	v, err := c.driver.Evaluate(ctx, script, args...)
	if err != nil {
		return "", err
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case nil:
		return "", nil
	default:
		return fmt.Sprint(t), nil
	}
}
