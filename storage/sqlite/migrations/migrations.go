package migrations

import (
	"src.goblgobl.com/utils/sqlite"
)

func Run(conn sqlite.Conn) error {
	migrations := []sqlite.Migration{
		sqlite.Migration{Version: 1, Migrate: Migrate_0000},
	}
	return sqlite.MigrateAll(conn, migrations)
}
