package submission

import (
	"fmt"
	"strings"
	"time"

	"dtefiler/internal/config"
	"dtefiler/internal/records"

	"github.com/shopspring/decimal"
)

// Options are the per-run constants of a filing.
type Options struct {
	PortalURL string

	AuthTimeout       time.Duration
	NavigationTimeout time.Duration
	ElementTimeout    time.Duration
	GiroSignalTimeout time.Duration
	RefreshTimeout    time.Duration

	HaulerBody  string
	HaulerCheck string

	EmptyContainerPrice  decimal.Decimal
	EmptyContainerSuffix string
	NotSaleValue         string
	KiloMarkers          []string
}

// OptionsFromConfig resolves the portal section of the configuration.
func OptionsFromConfig(pc config.PortalConfig) (Options, error) {
	price, err := pc.EmptyContainerUnitPrice()
	if err != nil {
		return Options{}, err
	}
	body, check := pc.Hauler()
	if body == "" || check == "" {
		return Options{}, fmt.Errorf("invalid hauler_national_id %q", pc.HaulerNationalID)
	}
	return Options{
		PortalURL:            pc.URL,
		AuthTimeout:          pc.GetAuthTimeout(),
		NavigationTimeout:    pc.GetNavigationTimeout(),
		ElementTimeout:       pc.GetElementTimeout(),
		GiroSignalTimeout:    pc.GetGiroSignalTimeout(),
		RefreshTimeout:       pc.GetRefreshTimeout(),
		HaulerBody:           body,
		HaulerCheck:          check,
		EmptyContainerPrice:  price,
		EmptyContainerSuffix: pc.EmptyContainerSuffix,
		NotSaleValue:         pc.NotSaleIndicatorValue,
		KiloMarkers:          append([]string(nil), pc.KiloUnitMarkers...),
	}, nil
}

// unitFor returns "KG" for products sold by weight and "UN" otherwise.
func (o Options) unitFor(product string) string {
	upper := strings.ToUpper(product)
	for _, marker := range o.KiloMarkers {
		if marker != "" && strings.Contains(upper, strings.ToUpper(marker)) {
			return "KG"
		}
	}
	return "UN"
}

func (o Options) emptyContainerDescription(label string) string {
	return label + " - " + o.EmptyContainerSuffix
}

func containerDescription(line records.LineItem) string {
	return fmt.Sprintf("%d %s", line.Count(), line.ContainerLabel())
}
