package tests

// This _needs_ to be called "0tests", because we need the init
// in this file to execute before the init in any other file
// (awful)

import (
	"math/rand"
	"time"

	"src.goblgobl.com/boleto/payment"
	"src.goblgobl.com/boleto/storage"
	"src.goblgobl.com/boleto/storage/pg"
	"src.goblgobl.com/boleto/storage/sqlite"
	"src.goblgobl.com/tests"
	"src.goblgobl.com/utils/log"
	"src.goblgobl.com/utils/typed"
	"src.goblgobl.com/utils/validation"
)

var generator tests.Generator

func init() {
	rand.Seed(time.Now().UnixNano())

	err := log.Configure(log.Config{
		Level: "WARN",
	})
	if err != nil {
		panic(err)
	}

	err = validation.Configure(validation.Config{
		PoolSize:  1,
		MaxErrors: 10,
	})

	if err != nil {
		panic(err)
	}

	storageConfig := storage.Config{
		Type:      tests.StorageType(),
		Sqlite:    sqlite.Config{Path: ":memory:"},
		Postgres:  pg.Config{URL: tests.PG()},
		Cockroach: pg.Config{URL: tests.CR()},
	}

	if err := storage.Configure(storageConfig); err != nil {
		panic(err)
	}

	if err := storage.DB.EnsureMigrations(); err != nil {
		panic(err)
	}

	payment.Client = NewFakePayments()
}

func String(constraints ...int) string {
	return generator.String(constraints...)
}

func CaptureLog(fn func()) string {
	return tests.CaptureLog(fn)
}

func UUID() string {
	return generator.UUID()
}

// Both engines expose MustExec; the storage interface itself doesn't,
// since it's a test-only need.
func MustExec(sql string, args ...any) {
	storage.DB.(interface{ MustExec(string, ...any) }).MustExec(sql, args...)
}

func Row(sql string, args ...any) typed.Typed {
	return tests.Row(storage.DB.(tests.TestableDB), sql, args...)
}

func Rows(sql string, args ...any) []typed.Typed {
	return tests.Rows(storage.DB.(tests.TestableDB), sql, args...)
}
