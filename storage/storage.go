package storage

import (
	"time"

	"src.goblgobl.com/boleto/codes"
	"src.goblgobl.com/boleto/storage/data"
	"src.goblgobl.com/boleto/storage/pg"
	"src.goblgobl.com/boleto/storage/sqlite"
	"src.goblgobl.com/utils/log"
)

// singleton
var DB Storage

type Storage interface {
	// health check the storage, returns nil if everything is ok
	Ping() error

	// return information about the storage
	Info() (any, error)

	EnsureMigrations() error

	GetUser(id int64) (*data.User, error)
	GetUserByEmail(email string) (*data.User, error)
	GetUpdatedUsers(timestamp time.Time) ([]*data.User, error)
	UserCreate(opts data.UserCreate) (data.UserCreateResult, error)

	// Creation fails with a duplicate-code status rather than an error:
	// code uniqueness is enforced by the engine and the caller retries
	// with a fresh code.
	BoletoCreate(opts data.BoletoCreate) (data.BoletoCreateResult, error)
	GetBoleto(id int64) (*data.Boleto, error)
	GetBoletoByCode(code string) (*data.Boleto, error)
	GetBoletos() ([]*data.Boleto, error)
	GetBoletosByUser(userId int64) ([]*data.Boleto, error)
	GetBoletosByState(state data.BoletoState) ([]*data.Boleto, error)
	GetBoletosConsumed() ([]*data.Boleto, error)

	BoletoSetState(opts data.BoletoSetState) (data.BoletoSetStateResult, error)

	// The entire check-and-increment runs atomically inside the engine.
	// Two concurrent consumes of the same boleto serialize; the loser
	// re-evaluates against the updated row.
	BoletoConsume(opts data.BoletoConsume) (data.BoletoConsumeResult, error)

	QRActivate(opts data.QRActivate) (data.QRActivateResult, error)
	QRDeactivate(id int64) (data.QRDeactivateStatus, error)

	GetScansByBoleto(boletoId int64) ([]data.Scan, error)
}

func Configure(config Config) (err error) {
	switch config.Type {
	case "postgres":
		DB, err = pg.New(config.Postgres)
	case "cockroach":
		DB, err = pg.New(config.Cockroach)
	case "sqlite":
		DB, err = sqlite.New(config.Sqlite)
	default:
		err = log.Errf(codes.ERR_INVALID_STORAGE_TYPE, "storage.type is invalid. Should be one of: postgres, cockroach or sqlite")
	}
	return
}
