package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is the subset of the weighbridge schema the filer reads. It is only
// applied to SQLite replicas; the MySQL database is owned by the weighbridge
// application.
const Schema = `
CREATE TABLE IF NOT EXISTS cycles (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS drivers (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	rut TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS entities (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	rut TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS comunas (
	id INTEGER PRIMARY KEY,
	comuna TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS entity_branches (
	id INTEGER PRIMARY KEY,
	entity_id INTEGER,
	name TEXT NOT NULL,
	address TEXT,
	comuna INTEGER NOT NULL REFERENCES comunas(id)
);

CREATE TABLE IF NOT EXISTS internal_entities (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	rut TEXT NOT NULL,
	dte_user TEXT,
	dte_pass TEXT,
	dte_firm TEXT
);

CREATE TABLE IF NOT EXISTS internal_branches (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS weights (
	id INTEGER PRIMARY KEY,
	status TEXT NOT NULL,
	cycle INTEGER NOT NULL REFERENCES cycles(id),
	driver_id INTEGER NOT NULL REFERENCES drivers(id),
	primary_plates TEXT,
	transport_id INTEGER REFERENCES entities(id)
);

CREATE TABLE IF NOT EXISTS documents_header (
	id INTEGER PRIMARY KEY,
	weight_id INTEGER NOT NULL REFERENCES weights(id),
	date DATE NOT NULL,
	document_total DECIMAL(14,2),
	sale INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	client_entity INTEGER NOT NULL REFERENCES entities(id),
	client_branch INTEGER NOT NULL REFERENCES entity_branches(id),
	internal_entity INTEGER NOT NULL REFERENCES internal_entities(id),
	internal_branch INTEGER NOT NULL REFERENCES internal_branches(id)
);

CREATE TABLE IF NOT EXISTS products (
	code TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS containers (
	code TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS documents_body (
	id INTEGER PRIMARY KEY,
	document_id INTEGER NOT NULL REFERENCES documents_header(id),
	product_code TEXT REFERENCES products(code),
	cut TEXT,
	price DECIMAL(14,2),
	kilos DECIMAL(14,2) NOT NULL DEFAULT 0,
	container_code TEXT REFERENCES containers(code),
	container_amount INTEGER,
	status TEXT NOT NULL
);
`

// Migrate applies Schema to a SQLite replica.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
