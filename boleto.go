package boleto

import (
	"time"

	"src.goblgobl.com/boleto/config"
	"src.goblgobl.com/boleto/storage"
	"src.goblgobl.com/utils/log"
)

var (
	Config config.Config

	// mixed into every request id so two instances behind a balancer
	// don't hand out clashing ids
	InstanceId uint8
)

func Init(c config.Config) error {
	Config = c
	InstanceId = c.InstanceId
	if seconds := c.UserUpdateFrequency; seconds != 0 {
		go reloadUpdatedUsers(time.Duration(seconds) * time.Second)
	}
	return nil
}

// Roles can change while a cached user sits in memory (a passenger made
// driver, an operator revoked). Polling the storage for recently updated
// rows is a blunt instrument, but it needs no extra moving pieces and
// works across instances. Set user_update_frequency to 0 to disable it
// and rely on restarts instead.
func reloadUpdatedUsers(seconds time.Duration) {
	lastChecked := time.Now()
	for {
		time.Sleep(seconds)
		now := time.Now()
		updateUsersUpdatedSince(lastChecked)
		lastChecked = now
	}
}

// extracted from reloadUpdatedUsers so we can test it
func updateUsersUpdatedSince(t time.Time) {
	updatedUsers, err := storage.DB.GetUpdatedUsers(t)
	if err != nil {
		log.Error("reload_users").Err(err).Log()
		return
	}

	for _, d := range updatedUsers {
		user := NewUser(d)
		Users.Put(userKey(d.Id), user)
	}
}
