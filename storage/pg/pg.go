package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"src.goblgobl.com/boleto/storage/data"
	"src.goblgobl.com/boleto/storage/pg/migrations"
	upg "src.goblgobl.com/utils/pg"
)

type Config struct {
	URL string `json:"url"`
}

type DB struct {
	upg.DB
}

func New(config Config) (DB, error) {
	db, err := upg.New(config.URL)
	if err != nil {
		return DB{}, err
	}
	return DB{db}, nil
}

func (db DB) Ping() error {
	_, err := db.Exec(context.Background(), "select 1")
	return err
}

func (db DB) EnsureMigrations() error {
	return migrations.Run(db.DB)
}

func (db DB) Info() (any, error) {
	migration, err := migrations.GetCurrent(db.DB)
	if err != nil {
		return nil, err
	}

	return struct {
		Type      string `json:"type"`
		Migration int    `json:"migration"`
	}{
		Type:      "pg",
		Migration: migration,
	}, nil
}

func (db DB) GetUser(id int64) (*data.User, error) {
	row := db.QueryRow(context.Background(), `
		select id, email, name, role
		from boleto_users
		where id = $1
	`, id)
	return scanUser(row)
}

func (db DB) GetUserByEmail(email string) (*data.User, error) {
	row := db.QueryRow(context.Background(), `
		select id, email, name, role
		from boleto_users
		where email = $1
	`, email)
	return scanUser(row)
}

func (db DB) GetUpdatedUsers(timestamp time.Time) ([]*data.User, error) {
	rows, err := db.Query(context.Background(), `
		select id, email, name, role
		from boleto_users
		where updated > $1
	`, timestamp)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*data.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (db DB) UserCreate(opts data.UserCreate) (data.UserCreateResult, error) {
	bg := context.Background()

	row := db.QueryRow(bg, `
		insert into boleto_users (email, name, role)
		values ($1, $2, $3)
		on conflict (email) do nothing
		returning id
	`, opts.Email, opts.Name, string(opts.Role))

	var id int64
	err := row.Scan(&id)
	if err == nil {
		return data.UserCreateResult{
			Status: data.USER_CREATE_OK,
			User:   &data.User{Id: id, Email: opts.Email, Name: opts.Name, Role: opts.Role},
		}, nil
	}
	if err != pgx.ErrNoRows {
		return data.UserCreateResult{}, err
	}

	existing, err := db.GetUserByEmail(opts.Email)
	if err != nil {
		return data.UserCreateResult{}, err
	}
	return data.UserCreateResult{Status: data.USER_CREATE_EXISTS, User: existing}, nil
}

const boletoColumns = `
	id, user_id, lote, code, state, active, usage_count,
	first_use, valid_until, qr_active, qr_valid_until, created
`

func (db DB) BoletoCreate(opts data.BoletoCreate) (data.BoletoCreateResult, error) {
	// The unique index on code is the real uniqueness guarantee; a
	// conflict surfaces as a duplicate status and the caller retries
	// with a new code.
	row := db.QueryRow(context.Background(), `
		insert into boletos (user_id, lote, code)
		values ($1, $2, $3)
		on conflict (code) do nothing
		returning `+boletoColumns,
		opts.UserId, opts.Lote, opts.Code)

	boleto, err := scanBoleto(row)
	if err != nil {
		return data.BoletoCreateResult{}, err
	}
	if boleto == nil {
		return data.BoletoCreateResult{Status: data.BOLETO_CREATE_DUPLICATE_CODE}, nil
	}
	return data.BoletoCreateResult{Status: data.BOLETO_CREATE_OK, Boleto: boleto}, nil
}

func (db DB) GetBoleto(id int64) (*data.Boleto, error) {
	row := db.QueryRow(context.Background(), `
		select `+boletoColumns+`
		from boletos
		where id = $1
	`, id)
	return scanBoleto(row)
}

func (db DB) GetBoletoByCode(code string) (*data.Boleto, error) {
	row := db.QueryRow(context.Background(), `
		select `+boletoColumns+`
		from boletos
		where code = $1
	`, code)
	return scanBoleto(row)
}

func (db DB) GetBoletos() ([]*data.Boleto, error) {
	return db.boletoList("select " + boletoColumns + " from boletos order by id desc")
}

func (db DB) GetBoletosByUser(userId int64) ([]*data.Boleto, error) {
	return db.boletoList("select "+boletoColumns+" from boletos where user_id = $1 order by id desc", userId)
}

func (db DB) GetBoletosByState(state data.BoletoState) ([]*data.Boleto, error) {
	return db.boletoList("select "+boletoColumns+" from boletos where state = $1 order by id desc", string(state))
}

func (db DB) GetBoletosConsumed() ([]*data.Boleto, error) {
	return db.boletoList("select " + boletoColumns + " from boletos where usage_count > 0 order by id desc")
}

func (db DB) BoletoSetState(opts data.BoletoSetState) (data.BoletoSetStateResult, error) {
	// Unconditional overwrite, no transition table. This is also what
	// makes webhook redelivery safe: re-approving is a no-op.
	row := db.QueryRow(context.Background(), `
		update boletos set state = $2
		where id = $1
		returning `+boletoColumns,
		opts.Id, string(opts.State))

	boleto, err := scanBoleto(row)
	if err != nil {
		return data.BoletoSetStateResult{}, err
	}
	if boleto == nil {
		return data.BoletoSetStateResult{Status: data.BOLETO_SET_STATE_NOT_FOUND}, nil
	}
	return data.BoletoSetStateResult{Status: data.BOLETO_SET_STATE_OK, Boleto: boleto}, nil
}

func (db DB) BoletoConsume(opts data.BoletoConsume) (data.BoletoConsumeResult, error) {
	bg := context.Background()
	now := opts.Now
	var result data.BoletoConsumeResult

	tx, err := db.Begin(bg)
	if err != nil {
		return result, err
	}
	defer tx.Rollback(bg)

	// Row lock so two concurrent scans of the same boleto serialize;
	// the second one re-reads the incremented row and fails the window
	// check if it should.
	var row pgx.Row
	if opts.Code != "" {
		row = tx.QueryRow(bg, "select "+boletoColumns+" from boletos where code = $1 for update", opts.Code)
	} else {
		row = tx.QueryRow(bg, "select "+boletoColumns+" from boletos where id = $1 for update", opts.Id)
	}

	boleto, err := scanBoleto(row)
	if err != nil {
		return result, err
	}

	if boleto == nil {
		result.Status = data.BOLETO_CONSUME_NOT_FOUND
		return result, tx.Commit(bg)
	}
	if boleto.State != data.BOLETO_APPROVED {
		result.Status = data.BOLETO_CONSUME_NOT_APPROVED
		return result, tx.Commit(bg)
	}
	if opts.RequireQR && !boleto.QRValid(now) {
		result.Status = data.BOLETO_CONSUME_QR_EXPIRED
		return result, tx.Commit(bg)
	}
	if !boleto.Valid(now) {
		result.Status = data.BOLETO_CONSUME_INVALID
		return result, tx.Commit(bg)
	}

	row = tx.QueryRow(bg, `
		update boletos set
			first_use = coalesce(first_use, $2),
			valid_until = coalesce(valid_until, $3),
			usage_count = usage_count + 1
		where id = $1
		returning `+boletoColumns,
		boleto.Id, now, now.Add(data.ValidityWindow))

	boleto, err = scanBoleto(row)
	if err != nil {
		return result, err
	}

	if opts.ScanId != "" {
		_, err = tx.Exec(bg, `
			insert into boleto_scans (id, boleto_id, scanned_by)
			values ($1, $2, $3)
		`, opts.ScanId, boleto.Id, opts.ScannedBy)
		if err != nil {
			return result, err
		}
	}

	if err := tx.Commit(bg); err != nil {
		return result, err
	}

	return data.BoletoConsumeResult{Status: data.BOLETO_CONSUME_OK, Boleto: boleto}, nil
}

func (db DB) QRActivate(opts data.QRActivate) (data.QRActivateResult, error) {
	bg := context.Background()
	now := opts.Now
	var result data.QRActivateResult

	tx, err := db.Begin(bg)
	if err != nil {
		return result, err
	}
	defer tx.Rollback(bg)

	row := tx.QueryRow(bg, "select "+boletoColumns+" from boletos where id = $1 for update", opts.Id)
	boleto, err := scanBoleto(row)
	if err != nil {
		return result, err
	}

	if boleto == nil {
		result.Status = data.QR_ACTIVATE_NOT_FOUND
		return result, tx.Commit(bg)
	}
	if !boleto.Valid(now) {
		result.Status = data.QR_ACTIVATE_INVALID
		return result, tx.Commit(bg)
	}

	row = tx.QueryRow(bg, `
		update boletos set qr_active = true, qr_valid_until = $2
		where id = $1
		returning `+boletoColumns,
		boleto.Id, now.Add(data.QRWindow))

	boleto, err = scanBoleto(row)
	if err != nil {
		return result, err
	}

	if err := tx.Commit(bg); err != nil {
		return result, err
	}

	return data.QRActivateResult{Status: data.QR_ACTIVATE_OK, Boleto: boleto}, nil
}

func (db DB) QRDeactivate(id int64) (data.QRDeactivateStatus, error) {
	row := db.QueryRow(context.Background(), `
		update boletos set qr_active = false, qr_valid_until = null
		where id = $1
		returning id
	`, id)

	var updated int64
	err := row.Scan(&updated)
	if err == pgx.ErrNoRows {
		return data.QR_DEACTIVATE_NOT_FOUND, nil
	}
	return data.QR_DEACTIVATE_OK, err
}

func (db DB) GetScansByBoleto(boletoId int64) ([]data.Scan, error) {
	rows, err := db.Query(context.Background(), `
		select id, boleto_id, scanned_by, created
		from boleto_scans
		where boleto_id = $1
		order by created desc
	`, boletoId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scans []data.Scan
	for rows.Next() {
		var scan data.Scan
		if err := rows.Scan(&scan.Id, &scan.BoletoId, &scan.ScannedBy, &scan.Created); err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}

func (db DB) boletoList(sql string, args ...any) ([]*data.Boleto, error) {
	rows, err := db.Query(context.Background(), sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boletos []*data.Boleto
	for rows.Next() {
		boleto, err := scanBoletoRow(rows)
		if err != nil {
			return nil, err
		}
		boletos = append(boletos, boleto)
	}
	return boletos, rows.Err()
}

func scanUser(row pgx.Row) (*data.User, error) {
	var id int64
	var email, name, role string

	if err := row.Scan(&id, &email, &name, &role); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	parsed, _ := data.ParseRole(role)
	return &data.User{
		Id:    id,
		Email: email,
		Name:  name,
		Role:  parsed,
	}, nil
}

func scanBoleto(row pgx.Row) (*data.Boleto, error) {
	boleto, err := scanBoletoRow(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return boleto, err
}

func scanBoletoRow(row pgx.Row) (*data.Boleto, error) {
	var boleto data.Boleto
	var state string

	err := row.Scan(
		&boleto.Id, &boleto.UserId, &boleto.Lote, &boleto.Code, &state,
		&boleto.Active, &boleto.UsageCount, &boleto.FirstUse, &boleto.ValidUntil,
		&boleto.QRActive, &boleto.QRValidUntil, &boleto.Created,
	)
	if err != nil {
		return nil, err
	}

	boleto.State = data.BoletoState(state)
	return &boleto, nil
}
