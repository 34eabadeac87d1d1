package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dtefiler/internal/logging"
	"dtefiler/internal/records"

	"github.com/shopspring/decimal"
)

// SQLProvider reads weighbridge records. It never writes.
type SQLProvider struct {
	db *sql.DB
}

// NewSQLProvider creates a provider over an open database.
func NewSQLProvider(db *sql.DB) *SQLProvider {
	return &SQLProvider{db: db}
}

var _ records.Provider = (*SQLProvider)(nil)

// GetWeighing loads one weighing with its cycle, driver and optional hauler.
func (p *SQLProvider) GetWeighing(ctx context.Context, id int64) (*records.WeighingRecord, error) {
	var (
		status, cycle, driverRut, driverName string
		plates, haulerRut, haulerName        sql.NullString
	)
	err := p.db.QueryRowContext(ctx, `
		SELECT weights.status, cycles.name, drivers.rut, drivers.name,
			weights.primary_plates, transport.rut, transport.name
		FROM weights
		INNER JOIN cycles ON weights.cycle = cycles.id
		INNER JOIN drivers ON weights.driver_id = drivers.id
		LEFT OUTER JOIN entities transport ON weights.transport_id = transport.id
		WHERE weights.id = ?
	`, id).Scan(&status, &cycle, &driverRut, &driverName, &plates, &haulerRut, &haulerName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("weighing %d: %w", id, records.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query weighing %d: %w", id, err)
	}

	w := &records.WeighingRecord{
		ID:     id,
		Status: records.WeighingStatus(status),
		Cycle:  cycle,
		Plate:  plates.String,
		Driver: records.Person{Name: driverName, NationalID: driverRut},
	}
	if haulerRut.Valid {
		w.Hauler = &records.Person{Name: haulerName.String, NationalID: haulerRut.String}
	}
	if w.Status == records.WeighingVoid {
		return nil, fmt.Errorf("weighing %d: %w", id, records.ErrVoidWeighing)
	}

	logging.RecordsDebug("loaded weighing %d (status=%s plate=%s)", id, status, w.Plate)
	return w, nil
}

// GetDocumentsForWeighing lists the open or closed documents of a weighing,
// numbered 1..n in id order.
func (p *SQLProvider) GetDocumentsForWeighing(ctx context.Context, weighingID int64) ([]records.DocumentRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT header.id, header.date, header.document_total, header.sale,
			internal_entities.id, internal_entities.name, internal_entities.rut, internal_branches.name,
			entity.id, entity.rut, entity.name,
			branch.name, branch.address, comunas.comuna,
			weights.status
		FROM documents_header header
		INNER JOIN weights ON header.weight_id = weights.id
		INNER JOIN entities entity ON header.client_entity = entity.id
		INNER JOIN entity_branches branch ON header.client_branch = branch.id
		INNER JOIN internal_entities ON header.internal_entity = internal_entities.id
		INNER JOIN internal_branches ON header.internal_branch = internal_branches.id
		INNER JOIN comunas ON branch.comuna = comunas.id
		WHERE weights.id = ? AND (header.status = 'I' OR header.status = 'T')
		ORDER BY header.id
	`, weighingID)
	if err != nil {
		return nil, fmt.Errorf("query documents of weighing %d: %w", weighingID, err)
	}
	defer rows.Close()

	var docs []records.DocumentRecord
	for rows.Next() {
		var (
			d             records.DocumentRecord
			date          dbDate
			total         decimal.NullDecimal
			sale          int
			address       sql.NullString
			weighingState string
		)
		if err := rows.Scan(&d.ID, &date, &total, &sale,
			&d.Internal.ID, &d.Internal.Name, &d.Internal.NationalID, &d.Internal.Branch,
			&d.Destination.ID, &d.Destination.NationalID, &d.Destination.Name,
			&d.DestinationBranch.Name, &address, &d.DestinationBranch.Locality,
			&weighingState,
		); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if records.WeighingStatus(weighingState) == records.WeighingVoid {
			return nil, fmt.Errorf("weighing %d: %w", weighingID, records.ErrVoidWeighing)
		}
		d.Date = time.Time(date)
		if total.Valid {
			v := total.Decimal
			d.DeclaredTotal = &v
		}
		d.IsSale = sale != 0
		d.DestinationBranch.Address = address.String
		d.Line = len(docs) + 1
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	if len(docs) == 0 {
		var status string
		err := p.db.QueryRowContext(ctx, `SELECT status FROM weights WHERE id = ?`, weighingID).Scan(&status)
		if err == nil && records.WeighingStatus(status) == records.WeighingVoid {
			return nil, fmt.Errorf("weighing %d: %w", weighingID, records.ErrVoidWeighing)
		}
		return nil, fmt.Errorf("weighing %d: %w", weighingID, records.ErrNoDocuments)
	}

	logging.RecordsDebug("weighing %d has %d document(s)", weighingID, len(docs))
	return docs, nil
}

// GetLineItems loads the detail rows of a document in entry order.
func (p *SQLProvider) GetLineItems(ctx context.Context, documentID int64) ([]records.LineItem, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT body.product_code, products.name, body.cut, body.price, body.kilos,
			body.container_code, containers.name, body.container_amount
		FROM documents_body body
		LEFT OUTER JOIN products ON body.product_code = products.code
		LEFT OUTER JOIN containers ON body.container_code = containers.code
		WHERE body.document_id = ? AND (body.status = 'T' OR body.status = 'I')
		ORDER BY body.id
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query lines of document %d: %w", documentID, err)
	}
	defer rows.Close()

	var lines []records.LineItem
	for rows.Next() {
		var (
			productCode, productName, cut sql.NullString
			containerCode, containerName  sql.NullString
			price                         decimal.NullDecimal
			kilos                         decimal.NullDecimal
			amount                        sql.NullInt64
		)
		if err := rows.Scan(&productCode, &productName, &cut, &price, &kilos,
			&containerCode, &containerName, &amount); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}

		var line records.LineItem
		if productCode.Valid {
			label := strings.ToUpper(productName.String) + " DESCARTE " + strings.ToUpper(cut.String)
			line.Product = &label
			if price.Valid {
				v := price.Decimal
				line.UnitPrice = &v
			}
		}
		if kilos.Valid {
			line.Kilos = kilos.Decimal
		}
		if containerCode.Valid {
			name := strings.ToUpper(containerName.String)
			line.Container = &name
			if amount.Valid && amount.Int64 > 0 {
				n := int(amount.Int64)
				line.ContainerCount = &n
			}
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lines: %w", err)
	}

	logging.RecordsDebug("document %d has %d line(s)", documentID, len(lines))
	return lines, nil
}

// GetCredentials loads the portal credentials of an internal entity by RUT.
func (p *SQLProvider) GetCredentials(ctx context.Context, internalNationalID string) (*records.Credentials, error) {
	var user, pass, firm sql.NullString
	err := p.db.QueryRowContext(ctx, `
		SELECT dte_user, dte_pass, dte_firm FROM internal_entities WHERE rut = ?
	`, internalNationalID).Scan(&user, &pass, &firm)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("credentials for %s: %w", internalNationalID, records.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query credentials: %w", err)
	}

	creds := &records.Credentials{Username: user.String, Password: pass.String, SigningPassphrase: firm.String}
	if !creds.Complete() {
		return nil, fmt.Errorf("credentials for %s: %w", internalNationalID, records.ErrMissingCredentials)
	}
	return creds, nil
}

// dbDate scans DATE columns from either driver: MySQL with parseTime yields
// time.Time, SQLite may yield text.
type dbDate time.Time

func (d *dbDate) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = dbDate(v)
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case nil:
		return fmt.Errorf("date is null")
	default:
		return fmt.Errorf("unsupported date type %T", src)
	}
}

func (d *dbDate) parse(s string) error {
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			*d = dbDate(t)
			return nil
		}
	}
	return fmt.Errorf("unparseable date %q", s)
}
