// Copyright 2015-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"database/sql"

	"github.com/rubenv/sql-migrate"
)

// This file maintains the database migration code.  See
// https://github.com/rubenv/sql-migrate for details of what goes in
// here.  This runs "outside" the normal collection flow, either at
// initial startup or from an external tool.

var migrationSource = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "1-base",
			Up: []string{
				`CREATE TABLE collections (
					id SERIAL PRIMARY KEY,
					name VARCHAR(255) UNIQUE NOT NULL,
					default_page_size INTEGER NOT NULL,
					max_page_size INTEGER NOT NULL,
					known_fields TEXT[] NOT NULL
				)`,
				`CREATE TABLE records (
					id BIGSERIAL PRIMARY KEY,
					collection_id INTEGER NOT NULL
						REFERENCES collections(id)
						ON DELETE CASCADE,
					data JSONB NOT NULL
				)`,
				`CREATE INDEX records_collection_id
					ON records(collection_id)`,
			},
			Down: []string{
				`DROP TABLE records`,
				`DROP TABLE collections`,
			},
		},
	},
}

// Upgrade upgrades a database to the latest database schema version.
func Upgrade(db *sql.DB) error {
	_, err := migrate.Exec(db, "postgres", migrationSource, migrate.Up)
	return err
}

// Drop clears a database by running all of the migrations in reverse,
// ultimately resulting in dropping all of the tables.
func Drop(db *sql.DB) error {
	_, err := migrate.Exec(db, "postgres", migrationSource, migrate.Down)
	return err
}
