package main

import (
	"flag"

	"src.goblgobl.com/boleto"
	"src.goblgobl.com/boleto/config"
	"src.goblgobl.com/boleto/http"
	"src.goblgobl.com/boleto/storage"
	"src.goblgobl.com/boleto/storage/data"
	"src.goblgobl.com/utils/log"
)

func main() {
	configPath := flag.String("config", "config.json", "full path to config file")
	migrations := flag.Bool("migrations", false, "only run migrations and exit")
	bootstrap := flag.Bool("bootstrap", false, "create the default admin and user accounts, then exit")
	flag.Parse()

	config, err := config.Configure(*configPath)
	if err != nil {
		log.Fatal("load_config").String("path", *configPath).Err(err).Log()
		return
	}

	if err := boleto.Init(config); err != nil {
		log.Fatal("boleto_init").Err(err).Log()
		return
	}

	if *migrations || config.Migrations == nil || *config.Migrations == true {
		if err := storage.DB.EnsureMigrations(); err != nil {
			log.Fatal("boleto_migrations").Err(err).Log()
			return
		}
	} else {
		log.Info("migrations_skip").Log()
	}

	if *migrations {
		return
	}

	if *bootstrap {
		runBootstrap()
		return
	}

	http.Listen()
}

// Seeding is explicit: it only happens when asked for, never as a side
// effect of serving a request.
func runBootstrap() {
	defaults := []data.UserCreate{
		{Email: "admin@admin.com", Name: "Admin Sistema", Role: data.ROLE_ADMIN},
		{Email: "user@user.com", Name: "Usuario Sistema", Role: data.ROLE_USER},
	}

	for _, opts := range defaults {
		result, err := storage.DB.UserCreate(opts)
		if err != nil {
			log.Fatal("boleto_bootstrap").String("email", opts.Email).Err(err).Log()
			return
		}
		if result.Status == data.USER_CREATE_EXISTS {
			log.Info("bootstrap_user_exists").String("email", opts.Email).Log()
		} else {
			log.Info("bootstrap_user_created").String("email", opts.Email).Int64("id", result.User.Id).Log()
		}
	}
}
