package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"dtefiler/internal/config"
	"dtefiler/internal/records"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `
INSERT INTO cycles (id, name) VALUES (1, 'Venta');
INSERT INTO drivers (id, name, rut) VALUES (1, 'JUAN PEREZ', '12.345.678-9');
INSERT INTO entities (id, name, rut) VALUES (1, 'AGRICOLA DESTINO', '76.543.210-5'), (2, 'TRANSPORTES SUR', '77.111.222-3');
INSERT INTO comunas (id, comuna) VALUES (1, 'Rancagua');
INSERT INTO entity_branches (id, entity_id, name, address, comuna) VALUES (1, 1, 'CASA MATRIZ', 'Ruta 5 km 80', 1);
INSERT INTO internal_entities (id, name, rut, dte_user, dte_pass, dte_firm) VALUES
	(1, 'EXPORTADORA', '76.000.000-1', '760000001', 'secret', 'firma'),
	(2, 'SIN CLAVE', '76.000.000-2', '760000002', NULL, 'firma');
INSERT INTO internal_branches (id, name) VALUES (1, 'PLANTA');
INSERT INTO weights (id, status, cycle, driver_id, primary_plates, transport_id) VALUES
	(100, 'T', 1, 1, 'ABCD12', 2),
	(101, 'N', 1, 1, 'ZZZZ99', NULL),
	(102, 'I', 1, 1, 'EFGH34', NULL);
INSERT INTO documents_header (id, weight_id, date, document_total, sale, status, client_entity, client_branch, internal_entity, internal_branch) VALUES
	(10, 100, '2026-10-05', 315000, 1, 'T', 1, 1, 1, 1),
	(11, 100, '2026-10-06', NULL, 0, 'I', 1, 1, 2, 1),
	(12, 100, '2026-10-06', 5, 0, 'N', 1, 1, 1, 1);
INSERT INTO products (code, name) VALUES ('UV1', 'Uva Roja');
INSERT INTO containers (code, name) VALUES ('B1', 'Bin Plastico');
INSERT INTO documents_body (id, document_id, product_code, cut, price, kilos, container_code, container_amount, status) VALUES
	(1, 10, 'UV1', 'primera', 350, 900, 'B1', 40, 'T'),
	(2, 10, NULL, NULL, NULL, 0, 'B1', 12, 'T'),
	(3, 10, 'UV1', 'segunda', 120, 0, NULL, NULL, 'I'),
	(4, 10, 'UV1', 'tercera', 10, 10, 'B1', 0, 'N');
`

func newTestProvider(t *testing.T) *SQLProvider {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "romana.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(ctx, db))
	seed(t, db)
	return NewSQLProvider(db)
}

func seed(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(fixture)
	require.NoError(t, err)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)
}

func TestGetWeighing(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	w, err := p.GetWeighing(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, records.WeighingClosed, w.Status)
	assert.Equal(t, "Venta", w.Cycle)
	assert.Equal(t, "ABCD12", w.Plate)
	assert.Equal(t, "12.345.678-9", w.Driver.NationalID)
	require.NotNil(t, w.Hauler)
	assert.Equal(t, "TRANSPORTES SUR", w.Hauler.Name)

	w, err = p.GetWeighing(ctx, 102)
	require.NoError(t, err)
	assert.Nil(t, w.Hauler)

	_, err = p.GetWeighing(ctx, 101)
	assert.ErrorIs(t, err, records.ErrVoidWeighing)

	_, err = p.GetWeighing(ctx, 999)
	assert.ErrorIs(t, err, records.ErrNotFound)
}

func TestGetDocumentsForWeighing(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	docs, err := p.GetDocumentsForWeighing(ctx, 100)
	require.NoError(t, err)
	require.Len(t, docs, 2, "voided headers are skipped")

	first := docs[0]
	assert.Equal(t, int64(10), first.ID)
	assert.Equal(t, 1, first.Line)
	assert.Equal(t, time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC), first.Date.UTC())
	require.NotNil(t, first.DeclaredTotal)
	assert.True(t, decimal.NewFromInt(315000).Equal(*first.DeclaredTotal))
	assert.True(t, first.IsSale)
	assert.Equal(t, "76.000.000-1", first.Internal.NationalID)
	assert.Equal(t, "PLANTA", first.Internal.Branch)
	assert.Equal(t, "76.543.210-5", first.Destination.NationalID)
	assert.Equal(t, "Rancagua", first.DestinationBranch.Locality)
	assert.Equal(t, "Ruta 5 km 80", first.DestinationBranch.Address)

	second := docs[1]
	assert.Equal(t, 2, second.Line)
	assert.Nil(t, second.DeclaredTotal)
	assert.False(t, second.IsSale)

	_, err = p.GetDocumentsForWeighing(ctx, 102)
	assert.ErrorIs(t, err, records.ErrNoDocuments)

	_, err = p.GetDocumentsForWeighing(ctx, 101)
	assert.ErrorIs(t, err, records.ErrVoidWeighing)
}

func TestGetLineItems(t *testing.T) {
	p := newTestProvider(t)

	lines, err := p.GetLineItems(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, lines, 3)

	product := lines[0]
	assert.Equal(t, "UVA ROJA DESCARTE PRIMERA", product.ProductLabel())
	assert.True(t, decimal.NewFromInt(350).Equal(product.Price()))
	assert.True(t, decimal.NewFromInt(900).Equal(product.Kilos))
	assert.Equal(t, "BIN PLASTICO", product.ContainerLabel())
	assert.Equal(t, 40, product.Count())

	empty := lines[1]
	assert.True(t, empty.IsContainerOnly())
	assert.Nil(t, empty.UnitPrice)
	assert.Equal(t, 12, empty.Count())

	zero := lines[2]
	assert.True(t, zero.Kilos.IsZero())
	assert.Nil(t, zero.Container)
	assert.Nil(t, zero.ContainerCount)
}

func TestGetCredentials(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	creds, err := p.GetCredentials(ctx, "76.000.000-1")
	require.NoError(t, err)
	assert.Equal(t, "760000001", creds.Username)
	assert.Equal(t, "firma", creds.SigningPassphrase)

	_, err = p.GetCredentials(ctx, "76.000.000-2")
	assert.ErrorIs(t, err, records.ErrMissingCredentials)

	_, err = p.GetCredentials(ctx, "1-9")
	assert.ErrorIs(t, err, records.ErrNotFound)
}
