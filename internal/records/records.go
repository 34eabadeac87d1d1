// Package records defines the read-only weighbridge records the filer works from
// and the Provider contract used to fetch them.
package records

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxLineItems is the number of detail rows the portal form supports.
const MaxLineItems = 10

var (
	ErrNotFound           = errors.New("record not found")
	ErrVoidWeighing       = errors.New("weighing is void")
	ErrNoDocuments        = errors.New("no documents for weighing")
	ErrMissingCredentials = errors.New("portal credentials are incomplete")
)

// WeighingStatus is the lifecycle state of a weighing.
type WeighingStatus string

const (
	WeighingVoid       WeighingStatus = "N"
	WeighingInProgress WeighingStatus = "I"
	WeighingClosed     WeighingStatus = "T"
)

// String returns the operator-facing label.
func (s WeighingStatus) String() string {
	switch s {
	case WeighingVoid:
		return "Nulo"
	case WeighingInProgress:
		return "En Proceso"
	case WeighingClosed:
		return "Terminado"
	default:
		return string(s)
	}
}

// Person is a driver or hauler.
type Person struct {
	Name       string `validate:"required"`
	NationalID string `validate:"required"`
}

// WeighingRecord is a snapshot of one physical weigh-in/weigh-out.
type WeighingRecord struct {
	ID     int64
	Status WeighingStatus
	Cycle  string
	Plate  string `validate:"required"`
	Driver Person
	Hauler *Person
}

// Entity is a legal entity with an optional branch name.
type Entity struct {
	ID         int64
	Name       string
	NationalID string `validate:"required"`
	Branch     string
}

// Branch is a destination branch.
type Branch struct {
	Name     string
	Address  string
	Locality string `validate:"required"`
}

// DocumentRecord is one commercial document tied to a weighing.
type DocumentRecord struct {
	ID                int64
	Line              int
	Date              time.Time `validate:"required"`
	DeclaredTotal     *decimal.Decimal
	IsSale            bool
	Internal          Entity
	Destination       Entity
	DestinationBranch Branch
}

// LineItem is a document detail row. A row without a product is a
// container-only line.
type LineItem struct {
	Product        *string
	UnitPrice      *decimal.Decimal
	Kilos          decimal.Decimal
	Container      *string
	ContainerCount *int
}

// IsContainerOnly reports whether the row carries only empty containers.
func (l LineItem) IsContainerOnly() bool {
	return l.Product == nil
}

// ProductLabel returns the product label or "".
func (l LineItem) ProductLabel() string {
	if l.Product == nil {
		return ""
	}
	return *l.Product
}

// ContainerLabel returns the container label or "".
func (l LineItem) ContainerLabel() string {
	if l.Container == nil {
		return ""
	}
	return *l.Container
}

// Price returns the unit price, zero when absent.
func (l LineItem) Price() decimal.Decimal {
	if l.UnitPrice == nil {
		return decimal.Zero
	}
	return *l.UnitPrice
}

// Count returns the container count, zero when absent.
func (l LineItem) Count() int {
	if l.ContainerCount == nil {
		return 0
	}
	return *l.ContainerCount
}

// Credentials authenticate against the portal and sign documents.
type Credentials struct {
	Username          string
	Password          string
	SigningPassphrase string
}

// Complete reports whether every field is present.
func (c Credentials) Complete() bool {
	return strings.TrimSpace(c.Username) != "" &&
		strings.TrimSpace(c.Password) != "" &&
		strings.TrimSpace(c.SigningPassphrase) != ""
}

// Provider is the read contract over the weighbridge record store.
type Provider interface {
	GetWeighing(ctx context.Context, id int64) (*WeighingRecord, error)
	GetDocumentsForWeighing(ctx context.Context, weighingID int64) ([]DocumentRecord, error)
	GetLineItems(ctx context.Context, documentID int64) ([]LineItem, error)
	GetCredentials(ctx context.Context, internalNationalID string) (*Credentials, error)
}
