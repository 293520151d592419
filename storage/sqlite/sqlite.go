package sqlite

import (
	"fmt"
	"time"

	"src.goblgobl.com/boleto/storage/data"
	"src.goblgobl.com/boleto/storage/sqlite/migrations"
	"src.goblgobl.com/utils/sqlite"
)

type Config struct {
	Path string `json:"path"`
}

type Conn struct {
	sqlite.Conn
}

func New(config Config) (Conn, error) {
	conn, err := sqlite.New(config.Path, true)
	if err != nil {
		return Conn{}, fmt.Errorf("Sqlite.New - %w", err)
	}
	// concurrent write transactions wait on the exclusive lock
	// instead of failing with SQLITE_BUSY
	conn.BusyTimeout(5 * time.Second)
	return Conn{conn}, nil
}

func (c Conn) Ping() error {
	err := c.Exec("select 1")
	if err != nil {
		return fmt.Errorf("Sqlite.Ping - %w", err)
	}
	return nil
}

func (c Conn) EnsureMigrations() error {
	return migrations.Run(c.Conn)
}

func (c Conn) Info() (any, error) {
	migration, err := sqlite.GetCurrentMigrationVersion(c.Conn)
	if err != nil {
		return nil, err
	}

	return struct {
		Type      string `json:"type"`
		Migration int    `json:"migration"`
	}{
		Type:      "sqlite",
		Migration: migration,
	}, nil
}

func (c Conn) GetUser(id int64) (*data.User, error) {
	row := c.Row("select id, email, name, role from boleto_users where id = ?1", id)
	user, err := scanUser(row)
	if err != nil {
		if err == sqlite.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("Sqlite.GetUser - %w", err)
	}
	return user, nil
}

func (c Conn) GetUserByEmail(email string) (*data.User, error) {
	row := c.Row("select id, email, name, role from boleto_users where email = ?1", email)
	user, err := scanUser(row)
	if err != nil {
		if err == sqlite.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("Sqlite.GetUserByEmail - %w", err)
	}
	return user, nil
}

func (c Conn) GetUpdatedUsers(timestamp time.Time) ([]*data.User, error) {
	// We expect this to return 0 rows almost every time it's called, so
	// the upfront count usually saves us from materializing a result set.
	count, err := sqlite.Scalar[int](c.Conn, "select count(*) from boleto_users where updated > ?1", timestamp)
	if err != nil {
		return nil, fmt.Errorf("Sqlite.GetUpdatedUsers (count) - %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	rows := c.Rows("select id, email, name, role from boleto_users where updated > ?1", timestamp)
	defer rows.Close()

	users := make([]*data.User, 0, count)
	for rows.Next() {
		user, err := scanUser(&rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("Sqlite.GetUpdatedUsers (select) - %w", err)
	}

	return users, nil
}

func (c Conn) UserCreate(opts data.UserCreate) (data.UserCreateResult, error) {
	var result data.UserCreateResult

	err := c.Transaction(func() error {
		existing, err := c.GetUserByEmail(opts.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			result = data.UserCreateResult{Status: data.USER_CREATE_EXISTS, User: existing}
			return nil
		}

		err = c.Exec(`
			insert into boleto_users (email, name, role)
			values (?1, ?2, ?3)
		`, opts.Email, opts.Name, string(opts.Role))
		if err != nil {
			return fmt.Errorf("Sqlite.UserCreate (insert) - %w", err)
		}

		id, err := sqlite.Scalar[int64](c.Conn, "select last_insert_rowid()")
		if err != nil {
			return err
		}

		result = data.UserCreateResult{
			Status: data.USER_CREATE_OK,
			User: &data.User{
				Id:    id,
				Email: opts.Email,
				Name:  opts.Name,
				Role:  opts.Role,
			},
		}
		return nil
	})

	return result, err
}

const boletoColumns = `
	id, user_id, lote, code, state, active, usage_count,
	coalesce(first_use, 0), coalesce(valid_until, 0),
	qr_active, coalesce(qr_valid_until, 0), created
`

func (c Conn) BoletoCreate(opts data.BoletoCreate) (data.BoletoCreateResult, error) {
	var result data.BoletoCreateResult

	// The write transaction serializes concurrent creations, so the
	// exists-then-insert pair can't race another connection into a
	// duplicate code.
	err := c.Transaction(func() error {
		exists, err := sqlite.Scalar[bool](c.Conn, "select exists (select 1 from boletos where code = ?1)", opts.Code)
		if err != nil {
			return fmt.Errorf("Sqlite.BoletoCreate (exists) - %w", err)
		}
		if exists {
			result.Status = data.BOLETO_CREATE_DUPLICATE_CODE
			return nil
		}

		err = c.Exec(`
			insert into boletos (user_id, lote, code)
			values (?1, ?2, ?3)
		`, opts.UserId, opts.Lote, opts.Code)
		if err != nil {
			return fmt.Errorf("Sqlite.BoletoCreate (insert) - %w", err)
		}

		id, err := sqlite.Scalar[int64](c.Conn, "select last_insert_rowid()")
		if err != nil {
			return err
		}

		boleto, err := c.GetBoleto(id)
		if err != nil {
			return err
		}

		result = data.BoletoCreateResult{Status: data.BOLETO_CREATE_OK, Boleto: boleto}
		return nil
	})

	return result, err
}

func (c Conn) GetBoleto(id int64) (*data.Boleto, error) {
	row := c.Row("select "+boletoColumns+" from boletos where id = ?1", id)
	boleto, err := scanBoleto(row)
	if err != nil {
		if err == sqlite.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("Sqlite.GetBoleto - %w", err)
	}
	return boleto, nil
}

func (c Conn) GetBoletoByCode(code string) (*data.Boleto, error) {
	row := c.Row("select "+boletoColumns+" from boletos where code = ?1", code)
	boleto, err := scanBoleto(row)
	if err != nil {
		if err == sqlite.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("Sqlite.GetBoletoByCode - %w", err)
	}
	return boleto, nil
}

func (c Conn) GetBoletos() ([]*data.Boleto, error) {
	return c.boletoList("select " + boletoColumns + " from boletos order by id desc")
}

func (c Conn) GetBoletosByUser(userId int64) ([]*data.Boleto, error) {
	return c.boletoList("select "+boletoColumns+" from boletos where user_id = ?1 order by id desc", userId)
}

func (c Conn) GetBoletosByState(state data.BoletoState) ([]*data.Boleto, error) {
	return c.boletoList("select "+boletoColumns+" from boletos where state = ?1 order by id desc", string(state))
}

func (c Conn) GetBoletosConsumed() ([]*data.Boleto, error) {
	return c.boletoList("select " + boletoColumns + " from boletos where usage_count > 0 order by id desc")
}

func (c Conn) BoletoSetState(opts data.BoletoSetState) (data.BoletoSetStateResult, error) {
	var result data.BoletoSetStateResult

	err := c.Transaction(func() error {
		boleto, err := c.GetBoleto(opts.Id)
		if err != nil {
			return err
		}
		if boleto == nil {
			result.Status = data.BOLETO_SET_STATE_NOT_FOUND
			return nil
		}

		// No transition table: any state can overwrite any other,
		// which also makes payment-webhook redelivery a no-op.
		err = c.Exec("update boletos set state = ?2 where id = ?1", opts.Id, string(opts.State))
		if err != nil {
			return fmt.Errorf("Sqlite.BoletoSetState - %w", err)
		}

		boleto.State = opts.State
		result = data.BoletoSetStateResult{Status: data.BOLETO_SET_STATE_OK, Boleto: boleto}
		return nil
	})

	return result, err
}

func (c Conn) BoletoConsume(opts data.BoletoConsume) (data.BoletoConsumeResult, error) {
	var result data.BoletoConsumeResult
	now := opts.Now

	err := c.Transaction(func() error {
		var boleto *data.Boleto
		var err error
		if opts.Code != "" {
			boleto, err = c.GetBoletoByCode(opts.Code)
		} else {
			boleto, err = c.GetBoleto(opts.Id)
		}
		if err != nil {
			return err
		}

		if boleto == nil {
			result.Status = data.BOLETO_CONSUME_NOT_FOUND
			return nil
		}
		if boleto.State != data.BOLETO_APPROVED {
			result.Status = data.BOLETO_CONSUME_NOT_APPROVED
			return nil
		}
		if opts.RequireQR && !boleto.QRValid(now) {
			result.Status = data.BOLETO_CONSUME_QR_EXPIRED
			return nil
		}
		if !boleto.Valid(now) {
			result.Status = data.BOLETO_CONSUME_INVALID
			return nil
		}

		// first_use/valid_until only land on the first consumption
		err = c.Exec(`
			update boletos set
				first_use = coalesce(first_use, ?2),
				valid_until = coalesce(valid_until, ?3),
				usage_count = usage_count + 1
			where id = ?1
		`, boleto.Id, now.Unix(), now.Add(data.ValidityWindow).Unix())
		if err != nil {
			return fmt.Errorf("Sqlite.BoletoConsume (update) - %w", err)
		}

		if opts.ScanId != "" {
			err = c.Exec(`
				insert into boleto_scans (id, boleto_id, scanned_by)
				values (?1, ?2, ?3)
			`, opts.ScanId, boleto.Id, opts.ScannedBy)
			if err != nil {
				return fmt.Errorf("Sqlite.BoletoConsume (scan) - %w", err)
			}
		}

		boleto, err = c.GetBoleto(boleto.Id)
		if err != nil {
			return err
		}

		result = data.BoletoConsumeResult{Status: data.BOLETO_CONSUME_OK, Boleto: boleto}
		return nil
	})

	return result, err
}

func (c Conn) QRActivate(opts data.QRActivate) (data.QRActivateResult, error) {
	var result data.QRActivateResult
	now := opts.Now

	err := c.Transaction(func() error {
		boleto, err := c.GetBoleto(opts.Id)
		if err != nil {
			return err
		}
		if boleto == nil {
			result.Status = data.QR_ACTIVATE_NOT_FOUND
			return nil
		}
		if !boleto.Valid(now) {
			result.Status = data.QR_ACTIVATE_INVALID
			return nil
		}

		validUntil := now.Add(data.QRWindow)
		err = c.Exec(`
			update boletos set qr_active = 1, qr_valid_until = ?2
			where id = ?1
		`, boleto.Id, validUntil.Unix())
		if err != nil {
			return fmt.Errorf("Sqlite.QRActivate - %w", err)
		}

		boleto.QRActive = true
		boleto.QRValidUntil = &validUntil
		result = data.QRActivateResult{Status: data.QR_ACTIVATE_OK, Boleto: boleto}
		return nil
	})

	return result, err
}

func (c Conn) QRDeactivate(id int64) (data.QRDeactivateStatus, error) {
	status := data.QR_DEACTIVATE_OK

	err := c.Transaction(func() error {
		exists, err := sqlite.Scalar[bool](c.Conn, "select exists (select 1 from boletos where id = ?1)", id)
		if err != nil {
			return fmt.Errorf("Sqlite.QRDeactivate (exists) - %w", err)
		}
		if !exists {
			status = data.QR_DEACTIVATE_NOT_FOUND
			return nil
		}

		err = c.Exec("update boletos set qr_active = 0, qr_valid_until = null where id = ?1", id)
		if err != nil {
			return fmt.Errorf("Sqlite.QRDeactivate - %w", err)
		}
		return nil
	})

	return status, err
}

func (c Conn) GetScansByBoleto(boletoId int64) ([]data.Scan, error) {
	rows := c.Rows(`
		select id, boleto_id, scanned_by, created
		from boleto_scans
		where boleto_id = ?1
		order by created desc
	`, boletoId)
	defer rows.Close()

	var scans []data.Scan
	for rows.Next() {
		var scan data.Scan
		var created int64
		if err := rows.Scan(&scan.Id, &scan.BoletoId, &scan.ScannedBy, &created); err != nil {
			return nil, err
		}
		scan.Created = time.Unix(created, 0)
		scans = append(scans, scan)
	}

	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("Sqlite.GetScansByBoleto - %w", err)
	}

	return scans, nil
}

func (c Conn) boletoList(sql string, args ...any) ([]*data.Boleto, error) {
	rows := c.Rows(sql, args...)
	defer rows.Close()

	var boletos []*data.Boleto
	for rows.Next() {
		boleto, err := scanBoleto(&rows)
		if err != nil {
			return nil, err
		}
		boletos = append(boletos, boleto)
	}

	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("Sqlite.boletoList - %w", err)
	}

	return boletos, nil
}

func scanUser(scanner sqlite.Scanner) (*data.User, error) {
	var id int64
	var email, name, role string

	if err := scanner.Scan(&id, &email, &name, &role); err != nil {
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

// Nullable timestamps are selected with coalesce(x, 0); an epoch of 0
// means null.
func scanBoleto(scanner sqlite.Scanner) (*data.Boleto, error) {
	var id, userId int64
	var lote, code, state string
	var active, qrActive bool
	var usageCount int
	var firstUse, validUntil, qrValidUntil, created int64

	err := scanner.Scan(
		&id, &userId, &lote, &code, &state, &active, &usageCount,
		&firstUse, &validUntil, &qrActive, &qrValidUntil, &created,
	)
	if err != nil {
		return nil, err
	}

	boleto := &data.Boleto{
		Id:         id,
		UserId:     userId,
		Lote:       lote,
		Code:       code,
		State:      data.BoletoState(state),
		Active:     active,
		UsageCount: usageCount,
		QRActive:   qrActive,
		Created:    time.Unix(created, 0),
	}

	if firstUse != 0 {
		t := time.Unix(firstUse, 0)
		boleto.FirstUse = &t
	}
	if validUntil != 0 {
		t := time.Unix(validUntil, 0)
		boleto.ValidUntil = &t
	}
	if qrValidUntil != 0 {
		t := time.Unix(qrValidUntil, 0)
		boleto.QRValidUntil = &t
	}

	return boleto, nil
}
