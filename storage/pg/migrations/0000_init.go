package migrations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

func Migrate_0000(tx pgx.Tx) error {
	if err := createUsers(tx); err != nil {
		return err
	}
	if err := createBoletos(tx); err != nil {
		return err
	}
	if err := createScans(tx); err != nil {
		return err
	}
	return nil
}

func createUsers(tx pgx.Tx) error {
	bg := context.Background()
	if _, err := tx.Exec(bg, `
		create table boleto_users (
			id bigint generated by default as identity primary key,
			email text not null unique,
			name text not null,
			role text not null default 'user',
			created timestamptz not null default now(),
			updated timestamptz not null default now()
		)`); err != nil {
		return fmt.Errorf("pg 0000 boleto_users - %w", err)
	}

	if _, err := tx.Exec(bg, `
		create index boleto_users_updated on boleto_users(updated)
	`); err != nil {
		return fmt.Errorf("pg 0000 boleto_users_updated - %w", err)
	}

	return nil
}

func createBoletos(tx pgx.Tx) error {
	bg := context.Background()
	if _, err := tx.Exec(bg, `
		create table boletos (
			id bigint generated by default as identity primary key,
			user_id bigint not null,
			lote text not null,
			code text not null unique,
			state text not null default 'pending',
			active bool not null default true,
			usage_count int not null default 0,
			first_use timestamptz null,
			valid_until timestamptz null,
			qr_active bool not null default false,
			qr_valid_until timestamptz null,
			created timestamptz not null default now()
		)`); err != nil {
		return fmt.Errorf("pg 0000 boletos - %w", err)
	}

	if _, err := tx.Exec(bg, `
		create index boletos_user_id on boletos(user_id)
	`); err != nil {
		return fmt.Errorf("pg 0000 boletos_user_id - %w", err)
	}

	if _, err := tx.Exec(bg, `
		create index boletos_state on boletos(state)
	`); err != nil {
		return fmt.Errorf("pg 0000 boletos_state - %w", err)
	}

	return nil
}

func createScans(tx pgx.Tx) error {
	bg := context.Background()
	if _, err := tx.Exec(bg, `
		create table boleto_scans (
			id uuid not null primary key,
			boleto_id bigint not null,
			scanned_by bigint not null,
			created timestamptz not null default now()
		)`); err != nil {
		return fmt.Errorf("pg 0000 boleto_scans - %w", err)
	}

	if _, err := tx.Exec(bg, `
		create index boleto_scans_boleto_id on boleto_scans(boleto_id)
	`); err != nil {
		return fmt.Errorf("pg 0000 boleto_scans_boleto_id - %w", err)
	}

	return nil
}
