package submission

import (
	"context"
	"fmt"
	"strings"

	"dtefiler/internal/confirm"
	"dtefiler/internal/portal"
	"dtefiler/internal/records"

	"github.com/shopspring/decimal"
)

// GiroQuestion is asked after every giro selection.
const GiroQuestion = "¿ Giro correcto ? [ s = SI / n = NO / e = EXIT ]"

func (c *Controller) enterLine(ctx context.Context, row int, line records.LineItem) error {
	if row > 1 {
		if err := c.click(ctx, portal.At(portal.SectionDetail, portal.FieldAddLine)); err != nil {
			return err
		}
		if err := c.driver.WaitForElement(ctx, portal.Row(row, portal.FieldRow).Selector(), c.opts.ElementTimeout); err != nil {
			return err
		}
	}

	var err error
	if line.IsContainerOnly() {
		err = c.enterContainerLine(ctx, row, line)
	} else {
		err = c.enterProductLine(ctx, row, line)
	}
	if err != nil {
		return err
	}
	return c.driver.PressKey(ctx, portal.KeyTab)
}

func (c *Controller) enterContainerLine(ctx context.Context, row int, line records.LineItem) error {
	label := line.ContainerLabel()
	c.log.Debug("line %d: %d empty %s", row, line.Count(), label)

	if err := c.writeField(ctx, portal.Row(row, portal.FieldName), records.FirstToken(label)); err != nil {
		return err
	}
	if err := c.openDescription(ctx, row); err != nil {
		return err
	}
	if err := c.driver.TypeText(ctx, c.opts.emptyContainerDescription(label)); err != nil {
		return err
	}
	if err := c.writeField(ctx, portal.Row(row, portal.FieldQuantity), fmt.Sprint(line.Count())); err != nil {
		return err
	}
	if err := c.writeField(ctx, portal.Row(row, portal.FieldUnit), "UN"); err != nil {
		return err
	}
	return c.writeField(ctx, portal.Row(row, portal.FieldPrice), c.opts.EmptyContainerPrice.String())
}

func (c *Controller) enterProductLine(ctx context.Context, row int, line records.LineItem) error {
	product := line.ProductLabel()
	if line.Kilos.IsZero() {
		return fmt.Errorf("line %d (%s): %w", row, product, ErrZeroWeight)
	}
	c.log.Debug("line %d: %s %s kg", row, product, line.Kilos)

	nameField := portal.Row(row, portal.FieldName)
	if err := c.driver.WaitForElement(ctx, nameField.Selector(), c.opts.ElementTimeout); err != nil {
		return err
	}
	if err := c.writeField(ctx, nameField, records.FirstToken(product)); err != nil {
		return err
	}
	if err := c.openDescription(ctx, row); err != nil {
		return err
	}
	if err := c.driver.TypeText(ctx, product); err != nil {
		return err
	}
	if line.Container != nil {
		if err := c.driver.PressKey(ctx, portal.KeyEnter); err != nil {
			return err
		}
		if err := c.driver.TypeText(ctx, containerDescription(line)); err != nil {
			return err
		}
	}
	if err := c.writeField(ctx, portal.Row(row, portal.FieldQuantity), line.Kilos.String()); err != nil {
		return err
	}
	if err := c.writeField(ctx, portal.Row(row, portal.FieldUnit), c.opts.unitFor(product)); err != nil {
		return err
	}
	return c.writeField(ctx, portal.Row(row, portal.FieldPrice), line.Price().String())
}

// openDescription enables the extended description of row and focuses it.
func (c *Controller) openDescription(ctx context.Context, row int) error {
	if err := c.click(ctx, portal.Row(row, portal.FieldExtended)); err != nil {
		return err
	}
	desc := portal.Row(row, portal.FieldDescription)
	if err := c.driver.WaitForElement(ctx, desc.Selector(), c.opts.ElementTimeout); err != nil {
		return err
	}
	return c.focus(ctx, desc)
}

func (c *Controller) writeField(ctx context.Context, loc portal.FieldLocator, text string) error {
	if err := c.focus(ctx, loc); err != nil {
		return err
	}
	return c.driver.TypeText(ctx, text)
}

const presentGiroJS = `(selector) => {
	const select = document.querySelector(selector);
	if (!select) return false;
	select.scrollIntoView();
	select.focus();
	return true;
}`

const selectedGiroJS = `(selector) => {
	const select = document.querySelector(selector);
	if (!select || select.selectedIndex < 0) return '';
	return select.options[select.selectedIndex].innerText;
}`

// confirmGiro repeats present, wait and confirm until the operator accepts the
// selected giro. There is no attempt limit.
func (c *Controller) confirmGiro(ctx context.Context, row int) error {
	giro := portal.At(portal.SectionReceiver, portal.FieldGiro).Selector()
	for attempt := 1; ; attempt++ {
		ok, err := c.evalBool(ctx, presentGiroJS, giro)
		if err != nil {
			return err
		}
		if !ok {
			return &portal.DriverError{Op: "present", Target: giro, Err: fmt.Errorf("giro select not found")}
		}
		if err := c.driver.PressKey(ctx, portal.KeySpace); err != nil {
			return err
		}
		if err := c.prompter.Show(ctx, "Selecciona el giro", fmt.Sprintf("Línea %d de %d", row, len(c.payload.Lines))); err != nil {
			return err
		}

		outcome, err := c.driver.WaitForSignal(ctx, giro, "change", c.opts.GiroSignalTimeout)
		if err != nil {
			return err
		}
		if outcome == portal.DeadlineElapsed {
			c.log.Debug("line %d: no giro change within %s (attempt %d)", row, c.opts.GiroSignalTimeout, attempt)
		}

		selected, err := c.evalString(ctx, selectedGiroJS, giro)
		if err != nil {
			return err
		}
		answer, err := c.prompter.Confirm(ctx, "GIRO", "Giro Seleccionado: "+strings.TrimSpace(selected), GiroQuestion)
		if err != nil {
			return err
		}
		switch answer {
		case confirm.Yes:
			c.log.Info("line %d: giro %q confirmed after %d attempt(s)", row, selected, attempt)
			return nil
		case confirm.Exit:
			return &stopError{reason: "giro selection exited"}
		}
	}
}

const readValueJS = `(selector) => {
	const el = document.querySelector(selector);
	return el ? el.value : '';
}`

// parseAmount keeps the digits of a portal amount ("1.234" -> 1234).
func parseAmount(raw string) (decimal.Decimal, bool) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if digits == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func (c *Controller) reconcileTotals(ctx context.Context) error {
	if !c.payload.HasProducts {
		return nil
	}
	raw, err := c.evalString(ctx, readValueJS, portal.At(portal.SectionTotals, portal.FieldNet).Selector())
	if err != nil {
		return err
	}
	expected := c.payload.ExpectedTotal.Round(0)
	remote, ok := parseAmount(raw)
	if ok && remote.Equal(expected) {
		c.log.Debug("net total matches: %s", records.FormatAmount(remote))
		return nil
	}

	shown := raw
	if ok {
		shown = records.FormatAmount(remote)
	}
	body := fmt.Sprintf("Total Doc.: $%s\nTotal SII: $%s", records.FormatAmount(expected), shown)
	c.log.Warn("net total mismatch: document %s, portal %s", records.FormatAmount(expected), shown)
	if err := c.prompter.Show(ctx, "Total Neto no coincide en Servicio de Impuestos Internos.", body); err != nil {
		return err
	}
	answer, err := c.prompter.Ask(ctx, confirm.DefaultQuestion)
	if err != nil {
		return err
	}
	if answer == confirm.No || answer == confirm.Exit {
		return &stopError{reason: "net total mismatch not accepted"}
	}
	return nil
}

func (c *Controller) visualize(ctx context.Context) error {
	if err := c.click(ctx, portal.At(portal.SectionPreview, portal.FieldUpdate)); err != nil {
		return err
	}
	return c.driver.WaitForElement(ctx, portal.At(portal.SectionPreview, portal.FieldToSign).Selector(), c.opts.NavigationTimeout)
}

func (c *Controller) sign(ctx context.Context) error {
	wait := c.driver.WaitNavigation(ctx, c.opts.NavigationTimeout)
	if err := c.click(ctx, portal.At(portal.SectionPreview, portal.FieldToSign)); err != nil {
		return err
	}
	if err := wait(); err != nil {
		return err
	}

	pass := portal.At(portal.SectionSign, portal.FieldPassphrase)
	if err := c.driver.WaitForElement(ctx, pass.Selector(), c.opts.ElementTimeout); err != nil {
		return err
	}
	if err := c.writeField(ctx, pass, c.payload.Credentials.SigningPassphrase); err != nil {
		return err
	}
	btn := portal.At(portal.SectionSign, portal.FieldSign)
	if err := c.driver.WaitForElement(ctx, btn.Selector(), c.opts.ElementTimeout); err != nil {
		return err
	}
	return c.click(ctx, btn)
}

const linkHrefJS = `(selector) => {
	const a = document.querySelector(selector);
	return a ? a.href : '';
}`

func (c *Controller) download(ctx context.Context) error {
	link := portal.At(portal.SectionDownload, portal.FieldLink)
	if err := c.driver.WaitForElement(ctx, link.Selector(), c.opts.NavigationTimeout); err != nil {
		return err
	}
	href, err := c.evalString(ctx, linkHrefJS, link.Selector())
	if err != nil {
		return err
	}
	if err := c.click(ctx, link); err != nil {
		return err
	}
	c.artifactURL = href
	return c.prompter.Show(ctx, "Documento firmado", href)
}
