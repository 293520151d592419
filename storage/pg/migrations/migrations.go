package migrations

import (
	upg "src.goblgobl.com/utils/pg"
)

func Run(db upg.DB) error {
	migrations := []upg.Migration{
		upg.Migration{Version: 1, Migrate: Migrate_0000},
	}
	return upg.MigrateAll(db, "boleto", migrations)
}

func GetCurrent(db upg.DB) (int, error) {
	return upg.GetCurrentMigrationVersion(db, "boleto")
}
