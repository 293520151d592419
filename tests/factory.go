package tests

import (
	"strconv"
	"sync/atomic"
	"time"

	"src.goblgobl.com/boleto/storage"
	"src.goblgobl.com/tests"
	f "src.goblgobl.com/tests/factory"
	"src.goblgobl.com/utils/uuid"
)

type factory struct {
	User   f.Table
	Boleto f.Table
	Scan   f.Table
}

var (
	// need to be created in init, after we've loaded our storage
	// engine, since the factories can change slightly based on
	// the storage engine (e.g. how timestamps are stored)
	Factory factory

	// start high so factory rows never collide with ids the code
	// under test creates
	userIds   int64 = 10000
	boletoIds int64 = 10000

	// unique 4-digit codes, grows past 9999 eventually but by then
	// the test process is long gone
	boletoCodes int64 = 1000
)

func init() {
	f.DB = storage.DB.(f.SQLStorage)
	sqliteStorage := tests.StorageType() == "sqlite"

	// The insert column list is fixed by the first builder call, so
	// nullable timestamps always get a value: nil inserts a null, and
	// sqlite stores times as unix epochs.
	timeValue := func(args f.KV, name string, dflt any) any {
		value, exists := args[name]
		if !exists {
			value = dflt
		}
		if t, ok := value.(time.Time); ok && sqliteStorage {
			return t.Unix()
		}
		return value
	}

	Factory.User = f.NewTable("boleto_users", func(args f.KV) f.KV {
		id := int(atomic.AddInt64(&userIds, 1))
		if value, exists := args["id"]; exists {
			id = value.(int)
		}
		suffix := strconv.Itoa(id)
		return f.KV{
			"id":      id,
			"email":   args.String("email", "user"+suffix+"@example.com"),
			"name":    args.String("name", "User "+suffix),
			"role":    args.String("role", "user"),
			"created": timeValue(args, "created", time.Now()),
			"updated": timeValue(args, "updated", time.Now()),
		}
	})

	Factory.Boleto = f.NewTable("boletos", func(args f.KV) f.KV {
		return f.KV{
			"id":             args.Int("id", int(atomic.AddInt64(&boletoIds, 1))),
			"user_id":        args.Int("user_id", 1),
			"lote":           args.String("lote", "LOTE_TEST"),
			"code":           args.String("code", strconv.FormatInt(atomic.AddInt64(&boletoCodes, 1), 10)),
			"state":          args.String("state", "pending"),
			"active":         args.Bool("active", true),
			"usage_count":    args.Int("usage_count", 0),
			"first_use":      timeValue(args, "first_use", nil),
			"valid_until":    timeValue(args, "valid_until", nil),
			"qr_active":      args.Bool("qr_active", false),
			"qr_valid_until": timeValue(args, "qr_valid_until", nil),
			"created":        timeValue(args, "created", time.Now()),
		}
	})

	Factory.Scan = f.NewTable("boleto_scans", func(args f.KV) f.KV {
		return f.KV{
			"id":         args.UUID("id", uuid.String()),
			"boleto_id":  args.Int("boleto_id", 1),
			"scanned_by": args.Int("scanned_by", 1),
			"created":    timeValue(args, "created", time.Now()),
		}
	})
}
