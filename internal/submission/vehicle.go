package submission

import (
	"context"

	"dtefiler/internal/portal"
	"dtefiler/internal/records"
)

// VehicleSection is the result of probing the form for a transport block.
// It is either StructuredVehicleForm or FreeTextFallback.
type VehicleSection interface {
	vehicleSection()
}

// StructuredVehicleForm means the form has dedicated hauler, plate and driver fields.
type StructuredVehicleForm struct{}

// FreeTextFallback means the vehicle data is appended as free text.
type FreeTextFallback struct{}

func (StructuredVehicleForm) vehicleSection() {}
func (FreeTextFallback) vehicleSection()      {}

const probeElementJS = `(selector) => document.querySelector(selector) !== null`

func (c *Controller) probeVehicle(ctx context.Context) (VehicleSection, error) {
	ok, err := c.evalBool(ctx, probeElementJS, portal.At(portal.SectionVehicle, portal.FieldHaulerID).Selector())
	if err != nil {
		return nil, err
	}
	if ok {
		return StructuredVehicleForm{}, nil
	}
	return FreeTextFallback{}, nil
}

func (c *Controller) resolveVehicle(ctx context.Context) error {
	section, err := c.probeVehicle(ctx)
	if err != nil {
		return err
	}
	w := c.payload.Weighing
	driverBody, driverCheck := records.SplitNationalID(w.Driver.NationalID)

	switch section.(type) {
	case StructuredVehicleForm:
		c.log.Debug("transport block present, filling structured fields")
		if err := c.focus(ctx, portal.At(portal.SectionVehicle, portal.FieldHaulerID)); err != nil {
			return err
		}
		return c.typeSequence(ctx,
			c.opts.HaulerBody, c.opts.HaulerCheck,
			w.Plate,
			driverBody, driverCheck,
			w.Driver.Name,
		)
	case FreeTextFallback:
		c.log.Debug("transport block not found, appending vehicle data as text")
		if err := c.focus(ctx, portal.At(portal.SectionReceiver, portal.FieldNotes)); err != nil {
			return err
		}
		for _, text := range []string{
			"PATENTE VEHICULO: " + w.Plate,
			"CHOFER: " + w.Driver.Name,
			"RUT CHOFER: " + w.Driver.NationalID,
		} {
			if err := c.driver.PressKey(ctx, portal.KeyEnter); err != nil {
				return err
			}
			if err := c.driver.TypeText(ctx, text); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

// typeSequence types each value, advancing to the next field between values.
func (c *Controller) typeSequence(ctx context.Context, values ...string) error {
	for i, v := range values {
		if i > 0 {
			if err := c.driver.PressKey(ctx, portal.KeyTab); err != nil {
				return err
			}
		}
		if err := c.driver.TypeText(ctx, v); err != nil {
			return err
		}
	}
	return nil
}
