package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPortalURL is the SII login page that redirects into the MIPE
// transport-guide form once authenticated.
const DefaultPortalURL = "https://zeusr.sii.cl/AUT2000/InicioAutenticacion/IngresoRutClave.html?https://www1.sii.cl/cgi-bin/Portal001/mipeSelEmpresa.cgi?DESDE_DONDE_URL=OPCION%3D52%26TIPO%3D4"

// PortalConfig configures the filing session against the portal.
type PortalConfig struct {
	URL       string `yaml:"url"`
	UserAgent string `yaml:"user_agent"`

	AuthTimeout       string `yaml:"auth_timeout"`
	NavigationTimeout string `yaml:"navigation_timeout"`
	ElementTimeout    string `yaml:"element_timeout"`
	GiroSignalTimeout string `yaml:"giro_signal_timeout"`
	RefreshTimeout    string `yaml:"refresh_timeout"` // form refresh after the receiver RUT, never fatal

	// Fixed values the portal form is filled with. The hauler id is always the
	// institutional one, whatever hauler the weighing recorded.
	HaulerNationalID      string   `yaml:"hauler_national_id"`
	EmptyContainerPrice   string   `yaml:"empty_container_price"`
	EmptyContainerSuffix  string   `yaml:"empty_container_suffix"`
	NotSaleIndicatorValue string   `yaml:"not_sale_indicator_value"`
	KiloUnitMarkers       []string `yaml:"kilo_unit_markers"`
}

// GetAuthTimeout returns the login navigation timeout.
func (p PortalConfig) GetAuthTimeout() time.Duration {
	return parseDuration(p.AuthTimeout, 45*time.Second)
}

// GetNavigationTimeout returns the timeout for structural page transitions.
func (p PortalConfig) GetNavigationTimeout() time.Duration {
	return parseDuration(p.NavigationTimeout, 45*time.Second)
}

// GetElementTimeout returns the timeout for elements to appear.
func (p PortalConfig) GetElementTimeout() time.Duration {
	return parseDuration(p.ElementTimeout, 10*time.Second)
}

// GetGiroSignalTimeout returns how long to wait for the operator to change the giro.
func (p PortalConfig) GetGiroSignalTimeout() time.Duration {
	return parseDuration(p.GiroSignalTimeout, 35*time.Second)
}

// GetRefreshTimeout returns how long to wait for the receiver block refresh.
func (p PortalConfig) GetRefreshTimeout() time.Duration {
	return parseDuration(p.RefreshTimeout, 5*time.Second)
}

// EmptyContainerUnitPrice parses the placeholder price for empty containers.
func (p PortalConfig) EmptyContainerUnitPrice() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(p.EmptyContainerPrice))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid empty_container_price %q: %w", p.EmptyContainerPrice, err)
	}
	return d, nil
}

// Hauler returns the configured hauler id split into body and check digit.
func (p PortalConfig) Hauler() (body, check string) {
	id := strings.TrimSpace(p.HaulerNationalID)
	body, check, _ = strings.Cut(id, "-")
	return strings.ReplaceAll(body, ".", ""), strings.ToUpper(check)
}
