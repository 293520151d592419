package migrations

import (
	"fmt"

	"src.goblgobl.com/utils/sqlite"
)

// called from within a transaction
func Migrate_0000(conn sqlite.Conn) error {
	if err := createUsers(conn); err != nil {
		return err
	}
	if err := createBoletos(conn); err != nil {
		return err
	}
	if err := createScans(conn); err != nil {
		return err
	}
	return nil
}

func createUsers(conn sqlite.Conn) error {
	err := conn.Exec(`
		create table boleto_users (
			id integer primary key autoincrement,
			email text not null unique,
			name text not null,
			role text not null default('user'),
			created int not null default(unixepoch()),
			updated int not null default(unixepoch())
	)`)

	if err != nil {
		return fmt.Errorf("sqlite 0000 boleto_users - %w", err)
	}

	return nil
}

func createBoletos(conn sqlite.Conn) error {
	if err := conn.Exec(`
		create table boletos (
			id integer primary key autoincrement,
			user_id int not null,
			lote text not null,
			code text not null unique,
			state text not null default('pending'),
			active int not null default(1),
			usage_count int not null default(0),
			first_use int null,
			valid_until int null,
			qr_active int not null default(0),
			qr_valid_until int null,
			created int not null default(unixepoch())
	)`); err != nil {
		return fmt.Errorf("sqlite 0000 boletos - %w", err)
	}

	if err := conn.Exec(`
		create index boletos_user_id on boletos(user_id)
	`); err != nil {
		return fmt.Errorf("sqlite 0000 boletos_user_id - %w", err)
	}

	return nil
}

func createScans(conn sqlite.Conn) error {
	if err := conn.Exec(`
		create table boleto_scans (
			id text not null primary key,
			boleto_id int not null,
			scanned_by int not null,
			created int not null default(unixepoch())
	)`); err != nil {
		return fmt.Errorf("sqlite 0000 boleto_scans - %w", err)
	}

	if err := conn.Exec(`
		create index boleto_scans_boleto_id on boleto_scans(boleto_id)
	`); err != nil {
		return fmt.Errorf("sqlite 0000 boleto_scans_boleto_id - %w", err)
	}

	return nil
}
