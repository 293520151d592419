package boleto

import (
	"strconv"
	"sync/atomic"
	"time"

	"src.goblgobl.com/boleto/storage"
	"src.goblgobl.com/boleto/storage/data"
	"src.goblgobl.com/utils"
	"src.goblgobl.com/utils/concurrent"
	"src.goblgobl.com/utils/log"
)

var Users concurrent.Map[*User]

func init() {
	Users = concurrent.NewMap[*User](loadUser)
}

// The requester attached to every env. An instance isn't updated in
// place; when the stored user changes, a new instance replaces it in
// the cache.
type User struct {
	// per-user counter for generating the RequestId
	requestId uint32

	// every log entry for this user carries uid=$id
	logField log.Field

	Id    int64
	Email string
	Name  string
	Role  data.Role
}

func (u *User) NextRequestId() string {
	nextId := atomic.AddUint32(&u.requestId, 1)
	return utils.EncodeRequestId(nextId, InstanceId)
}

func (u *User) Elevated() bool {
	return u.Role.Elevated()
}

func NewUser(d *data.User) *User {
	id := d.Id

	return &User{
		Id:       id,
		Email:    d.Email,
		Name:     d.Name,
		Role:     d.Role,
		logField: log.NewField().String("uid", userKey(id)).Finalize(),

		// If we let this start at 0, then restarts are likely to produce
		// duplicates. No uniqueness guarantee either way, but no reason
		// not to help things out a little.
		requestId: uint32(time.Now().Unix()),
	}
}

func loadUser(key string) (*User, error) {
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return nil, nil
	}
	userData, err := storage.DB.GetUser(id)
	if userData == nil || err != nil {
		return nil, err
	}
	return NewUser(userData), nil
}

func userKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
