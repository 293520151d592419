package sqlite

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"src.goblgobl.com/boleto/storage/data"
	"src.goblgobl.com/tests/assert"
	"src.goblgobl.com/utils/uuid"
)

func Test_Ping(t *testing.T) {
	withTestDB(func(conn Conn) {
		assert.Nil(t, conn.Ping())
	})
}

func Test_GetUser_Unknown(t *testing.T) {
	withTestDB(func(conn Conn) {
		u, err := conn.GetUser(9999)
		assert.Nil(t, err)
		assert.Nil(t, u)
	})
}

func Test_GetUser_Success(t *testing.T) {
	withTestDB(func(conn Conn) {
		conn.MustExec("insert into boleto_users (id, email, name, role) values (1, 'a@a.com', 'A', 'driver')")
		u, err := conn.GetUser(1)
		assert.Nil(t, err)
		assert.Equal(t, u.Id, 1)
		assert.Equal(t, u.Email, "a@a.com")
		assert.Equal(t, u.Name, "A")
		assert.Equal(t, string(u.Role), "driver")
	})
}

func Test_GetUserByEmail(t *testing.T) {
	withTestDB(func(conn Conn) {
		conn.MustExec("insert into boleto_users (id, email, name) values (1, 'a@a.com', 'A')")

		u, err := conn.GetUserByEmail("nope@a.com")
		assert.Nil(t, err)
		assert.Nil(t, u)

		u, err = conn.GetUserByEmail("a@a.com")
		assert.Nil(t, err)
		assert.Equal(t, u.Id, 1)
		assert.Equal(t, string(u.Role), "user")
	})
}

func Test_GetUpdatedUsers_None(t *testing.T) {
	withTestDB(func(conn Conn) {
		conn.MustExec("insert into boleto_users (id, email, name, updated) values (1, 'a@a.com', 'A', 0)")
		updated, err := conn.GetUpdatedUsers(time.Now())
		assert.Nil(t, err)
		assert.Equal(t, len(updated), 0)
	})
}

func Test_GetUpdatedUsers_Success(t *testing.T) {
	withTestDB(func(conn Conn) {
		conn.MustExec(`
			insert into boleto_users (id, email, name, updated) values
			(1, 'a@a.com', '', unixepoch() - 500),
			(2, 'b@a.com', '', unixepoch() - 200),
			(3, 'c@a.com', '', unixepoch() - 100),
			(4, 'd@a.com', '', unixepoch() - 10)
		`)
		updated, err := conn.GetUpdatedUsers(time.Now().Add(time.Second * -105))
		assert.Nil(t, err)
		assert.Equal(t, len(updated), 2)

		// order isn't deterministic
		id1, id2 := updated[0].Id, updated[1].Id
		assert.True(t, id1 != id2)
		assert.True(t, id1 == 3 || id1 == 4)
		assert.True(t, id2 == 3 || id2 == 4)
	})
}

func Test_UserCreate(t *testing.T) {
	withTestDB(func(conn Conn) {
		result, err := conn.UserCreate(data.UserCreate{
			Email: "new@a.com",
			Name:  "New",
			Role:  data.ROLE_ADMIN,
		})
		assert.Nil(t, err)
		assert.Equal(t, result.Status, data.USER_CREATE_OK)
		assert.Equal(t, result.User.Email, "new@a.com")

		row, _ := conn.RowToMap("select * from boleto_users where id = ?1", result.User.Id)
		assert.Equal(t, row.String("role"), "admin")

		// same email, no new row
		result, err = conn.UserCreate(data.UserCreate{
			Email: "new@a.com",
			Name:  "Other",
			Role:  data.ROLE_USER,
		})
		assert.Nil(t, err)
		assert.Equal(t, result.Status, data.USER_CREATE_EXISTS)
		assert.Equal(t, result.User.Name, "New")
	})
}

func Test_BoletoCreate(t *testing.T) {
	withTestDB(func(conn Conn) {
		result, err := conn.BoletoCreate(data.BoletoCreate{
			UserId: 4,
			Lote:   "L1",
			Code:   "1234",
		})
		assert.Nil(t, err)
		assert.Equal(t, result.Status, data.BOLETO_CREATE_OK)

		b := result.Boleto
		assert.Equal(t, b.UserId, 4)
		assert.Equal(t, b.Lote, "L1")
		assert.Equal(t, b.Code, "1234")
		assert.Equal(t, string(b.State), "pending")
		assert.True(t, b.Active)
		assert.Equal(t, b.UsageCount, 0)
		assert.Nil(t, b.FirstUse)
		assert.Nil(t, b.ValidUntil)
		assert.Nowish(t, b.Created)

		// duplicate code
		result, err = conn.BoletoCreate(data.BoletoCreate{
			UserId: 5,
			Lote:   "L2",
			Code:   "1234",
		})
		assert.Nil(t, err)
		assert.Equal(t, result.Status, data.BOLETO_CREATE_DUPLICATE_CODE)
		assert.Nil(t, result.Boleto)
	})
}

func Test_GetBoletoByCode(t *testing.T) {
	withTestDB(func(conn Conn) {
		conn.MustExec("insert into boletos (id, user_id, lote, code) values (1, 2, 'L', '4411')")

		b, err := conn.GetBoletoByCode("9999")
		assert.Nil(t, err)
		assert.Nil(t, b)

		b, err = conn.GetBoletoByCode("4411")
		assert.Nil(t, err)
		assert.Equal(t, b.Id, 1)
		assert.Equal(t, b.UserId, 2)
	})
}

func Test_Boleto_Lists(t *testing.T) {
	withTestDB(func(conn Conn) {
		conn.MustExec(`
			insert into boletos (id, user_id, lote, code, state, usage_count) values
			(1, 10, 'L', '1000', 'pending', 0),
			(2, 10, 'L', '1001', 'approved', 1),
			(3, 11, 'L', '1002', 'approved', 0),
			(4, 11, 'L', '1003', 'rejected', 2)
		`)

		all, err := conn.GetBoletos()
		assert.Nil(t, err)
		assert.Equal(t, len(all), 4)
		// newest first
		assert.Equal(t, all[0].Id, 4)

		byUser, err := conn.GetBoletosByUser(10)
		assert.Nil(t, err)
		assert.Equal(t, len(byUser), 2)

		approved, err := conn.GetBoletosByState(data.BOLETO_APPROVED)
		assert.Nil(t, err)
		assert.Equal(t, len(approved), 2)

		consumed, err := conn.GetBoletosConsumed()
		assert.Nil(t, err)
		assert.Equal(t, len(consumed), 2)
		assert.Equal(t, consumed[0].Id, 4)
		assert.Equal(t, consumed[1].Id, 2)
	})
}

func Test_BoletoSetState(t *testing.T) {
	withTestDB(func(conn Conn) {
		result, err := conn.BoletoSetState(data.BoletoSetState{Id: 98, State: data.BOLETO_APPROVED})
		assert.Nil(t, err)
		assert.Equal(t, result.Status, data.BOLETO_SET_STATE_NOT_FOUND)

		conn.MustExec("insert into boletos (id, user_id, lote, code) values (1, 2, 'L', '1000')")

		result, err = conn.BoletoSetState(data.BoletoSetState{Id: 1, State: data.BOLETO_APPROVED})
		assert.Nil(t, err)
		assert.Equal(t, result.Status, data.BOLETO_SET_STATE_OK)
		assert.Equal(t, string(result.Boleto.State), "approved")

		// states are free to move backwards too
		result, err = conn.BoletoSetState(data.BoletoSetState{Id: 1, State: data.BOLETO_PENDING})
		assert.Nil(t, err)
		assert.Equal(t, result.Status, data.BOLETO_SET_STATE_OK)

		row, _ := conn.RowToMap("select state from boletos where id = 1")
		assert.Equal(t, row.String("state"), "pending")
	})
}

func Test_BoletoConsume_Errors(t *testing.T) {
	withTestDB(func(conn Conn) {
		now := time.Now()

		result, err := conn.BoletoConsume(data.BoletoConsume{Code: "9999", Now: now})
		assert.Nil(t, err)
		assert.Equal(t, result.Status, data.BOLETO_CONSUME_NOT_FOUND)

		conn.MustExec(`
			insert into boletos (id, user_id, lote, code, state, active) values
			(1, 2, 'L', '1000', 'pending', 1),
			(2, 2, 'L', '1001', 'approved', 0)
		`)

		// not approved
		result, err = conn.BoletoConsume(data.BoletoConsume{Code: "1000", Now: now})
		assert.Nil(t, err)
		assert.Equal(t, result.Status, data.BOLETO_CONSUME_NOT_APPROVED)

		// inactive
		result, err = conn.BoletoConsume(data.BoletoConsume{Code: "1001", Now: now})
		assert.Nil(t, err)
		assert.Equal(t, result.Status, data.BOLETO_CONSUME_INVALID)

		// nothing was consumed
		row, _ := conn.RowToMap("select sum(usage_count) as n from boletos")
		assert.Equal(t, row.Int("n"), 0)
	})
}

func Test_BoletoConsume_FirstUseStartsTheClock(t *testing.T) {
	withTestDB(func(conn Conn) {
		now := time.Now().Truncate(time.Second)
		conn.MustExec("insert into boletos (id, user_id, lote, code, state) values (1, 2, 'L', '1000', 'approved')")

		result, err := conn.BoletoConsume(data.BoletoConsume{Id: 1, Now: now})
		assert.Nil(t, err)
		assert.Equal(t, result.Status, data.BOLETO_CONSUME_OK)

		b := result.Boleto
		assert.Equal(t, b.UsageCount, 1)
		assert.Equal(t, b.FirstUse.Unix(), now.Unix())
		assert.Equal(t, b.ValidUntil.Unix(), now.Add(time.Hour*24).Unix())

		// a second use doesn't move the window
		later := now.Add(time.Hour)
		result, err = conn.BoletoConsume(data.BoletoConsume{Id: 1, Now: later})
		assert.Nil(t, err)
		assert.Equal(t, result.Status, data.BOLETO_CONSUME_OK)

		b = result.Boleto
		assert.Equal(t, b.UsageCount, 2)
		assert.Equal(t, b.FirstUse.Unix(), now.Unix())
		assert.Equal(t, b.ValidUntil.Unix(), now.Add(time.Hour*24).Unix())

		// at the end of the window it's done
		result, err = conn.BoletoConsume(data.BoletoConsume{Id: 1, Now: now.Add(time.Hour * 24)})
		assert.Nil(t, err)
		assert.Equal(t, result.Status, data.BOLETO_CONSUME_INVALID)
	})
}

func Test_BoletoConsume_RequireQR(t *testing.T) {
	withTestDB(func(conn Conn) {
		now := time.Now().Truncate(time.Second)
		conn.MustExec(`
			insert into boletos (id, user_id, lote, code, state, qr_active, qr_valid_until) values
			(1, 2, 'L', '1000', 'approved', 0, null),
			(2, 2, 'L', '1001', 'approved', 1, ?1),
			(3, 2, 'L', '1002', 'approved', 1, ?2)
		`, now.Add(-time.Second).Unix(), now.Add(time.Minute).Unix())

		// never activated
		result, err := conn.BoletoConsume(data.BoletoConsume{Code: "1000", Now: now, RequireQR: true})
		assert.Nil(t, err)
		assert.Equal(t, result.Status, data.BOLETO_CONSUME_QR_EXPIRED)

		// activated, but the window passed
		result, err = conn.BoletoConsume(data.BoletoConsume{Code: "1001", Now: now, RequireQR: true})
		assert.Nil(t, err)
		assert.Equal(t, result.Status, data.BOLETO_CONSUME_QR_EXPIRED)

		// live QR, and the scan gets recorded
		scanId := uuid.String()
		result, err = conn.BoletoConsume(data.BoletoConsume{
			Code:      "1002",
			Now:       now,
			RequireQR: true,
			ScanId:    scanId,
			ScannedBy: 77,
		})
		assert.Nil(t, err)
		assert.Equal(t, result.Status, data.BOLETO_CONSUME_OK)
		assert.Equal(t, result.Boleto.UsageCount, 1)

		row, _ := conn.RowToMap("select * from boleto_scans where id = ?1", scanId)
		assert.Equal(t, row.Int("boleto_id"), 3)
		assert.Equal(t, row.Int("scanned_by"), 77)
	})
}

func Test_QRActivate(t *testing.T) {
	withTestDB(func(conn Conn) {
		now := time.Now().Truncate(time.Second)

		result, err := conn.QRActivate(data.QRActivate{Id: 44, Now: now})
		assert.Nil(t, err)
		assert.Equal(t, result.Status, data.QR_ACTIVATE_NOT_FOUND)

		conn.MustExec(`
			insert into boletos (id, user_id, lote, code, state) values
			(1, 2, 'L', '1000', 'pending'),
			(2, 2, 'L', '1001', 'approved')
		`)

		// not approved, can't activate
		result, err = conn.QRActivate(data.QRActivate{Id: 1, Now: now})
		assert.Nil(t, err)
		assert.Equal(t, result.Status, data.QR_ACTIVATE_INVALID)

		result, err = conn.QRActivate(data.QRActivate{Id: 2, Now: now})
		assert.Nil(t, err)
		assert.Equal(t, result.Status, data.QR_ACTIVATE_OK)
		assert.True(t, result.Boleto.QRActive)
		assert.Equal(t, result.Boleto.QRValidUntil.Unix(), now.Add(time.Minute*3).Unix())

		row, _ := conn.RowToMap("select qr_active, qr_valid_until from boletos where id = 2")
		assert.Equal(t, row.Int("qr_active"), 1)
		assert.Equal(t, row.Int("qr_valid_until"), int(now.Add(time.Minute*3).Unix()))
	})
}

func Test_QRDeactivate(t *testing.T) {
	withTestDB(func(conn Conn) {
		status, err := conn.QRDeactivate(44)
		assert.Nil(t, err)
		assert.Equal(t, status, data.QR_DEACTIVATE_NOT_FOUND)

		conn.MustExec(`
			insert into boletos (id, user_id, lote, code, state, qr_active, qr_valid_until)
			values (1, 2, 'L', '1000', 'approved', 1, unixepoch() + 100)
		`)

		status, err = conn.QRDeactivate(1)
		assert.Nil(t, err)
		assert.Equal(t, status, data.QR_DEACTIVATE_OK)

		row, _ := conn.RowToMap("select qr_active, qr_valid_until from boletos where id = 1")
		assert.Equal(t, row.Int("qr_active"), 0)
		assert.Nil(t, row["qr_valid_until"])

		// deactivating an inactive QR is fine
		status, err = conn.QRDeactivate(1)
		assert.Nil(t, err)
		assert.Equal(t, status, data.QR_DEACTIVATE_OK)
	})
}

func Test_GetScansByBoleto(t *testing.T) {
	withTestDB(func(conn Conn) {
		id1, id2, id3 := uuid.String(), uuid.String(), uuid.String()
		conn.MustExec(`
			insert into boleto_scans (id, boleto_id, scanned_by, created) values
			(?1, 1, 5, unixepoch() - 100),
			(?2, 1, 6, unixepoch() - 10),
			(?3, 2, 5, unixepoch())
		`, id1, id2, id3)

		scans, err := conn.GetScansByBoleto(1)
		assert.Nil(t, err)
		assert.Equal(t, len(scans), 2)
		// newest first
		assert.Equal(t, scans[0].Id, id2)
		assert.Equal(t, scans[0].ScannedBy, 6)
		assert.Equal(t, scans[1].Id, id1)

		scans, err = conn.GetScansByBoleto(99)
		assert.Nil(t, err)
		assert.Equal(t, len(scans), 0)
	})
}

func Test_BoletoConsume_Concurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boleto.sqlite")
	conn := openFileDB(t, path)
	conn.MustExec("insert into boletos (id, user_id, lote, code, state) values (1, 2, 'L', '1000', 'approved')")

	// each worker gets its own connection, the write transaction is
	// what has to serialize them
	const workers = 8
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			results <- func() error {
				c, err := New(Config{Path: path})
				if err != nil {
					return err
				}
				defer c.Close()

				result, err := c.BoletoConsume(data.BoletoConsume{Id: 1, Now: time.Now()})
				if err != nil {
					return err
				}
				if result.Status != data.BOLETO_CONSUME_OK {
					return fmt.Errorf("consume status: %d", result.Status)
				}
				return nil
			}()
		}()
	}
	for i := 0; i < workers; i++ {
		assert.Nil(t, <-results)
	}

	// no lost updates, and the window was set exactly once
	row, _ := conn.RowToMap("select usage_count, first_use, valid_until from boletos where id = 1")
	assert.Equal(t, row.Int("usage_count"), workers)
	assert.Equal(t, row.Int("valid_until"), row.Int("first_use")+60*60*24)
}

func Test_BoletoCreate_Concurrent_UniqueCode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boleto.sqlite")
	conn := openFileDB(t, path)

	type outcome struct {
		status data.BoletoCreateStatus
		err    error
	}

	const workers = 8
	results := make(chan outcome, workers)
	for i := 0; i < workers; i++ {
		userId := int64(i + 1)
		go func() {
			c, err := New(Config{Path: path})
			if err != nil {
				results <- outcome{err: err}
				return
			}
			defer c.Close()

			result, err := c.BoletoCreate(data.BoletoCreate{UserId: userId, Lote: "L", Code: "4321"})
			results <- outcome{status: result.Status, err: err}
		}()
	}

	created := 0
	for i := 0; i < workers; i++ {
		o := <-results
		assert.Nil(t, o.err)
		if o.status == data.BOLETO_CREATE_OK {
			created++
		} else {
			assert.Equal(t, o.status, data.BOLETO_CREATE_DUPLICATE_CODE)
		}
	}
	assert.Equal(t, created, 1)

	row, _ := conn.RowToMap("select count(*) as n from boletos where code = '4321'")
	assert.Equal(t, row.Int("n"), 1)
}

func openFileDB(t *testing.T, path string) Conn {
	t.Helper()
	conn, err := New(Config{Path: path})
	if err != nil {
		panic(err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := conn.EnsureMigrations(); err != nil {
		panic(err)
	}
	return conn
}

func withTestDB(fn func(conn Conn)) {
	conn, err := New(Config{Path: ":memory:"})
	if err != nil {
		panic(err)
	}
	defer conn.Close()
	if err := conn.EnsureMigrations(); err != nil {
		panic(err)
	}
	fn(conn)
}
