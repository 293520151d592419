package boleto

/*
The environment of a single request. Always tied to the requester (the
authenticated user resolved by the env loader). Upstream terminates the
JWT; by the time a request gets here identity is just a user id.
*/

import (
	"src.goblgobl.com/utils/log"
	"src.goblgobl.com/utils/validation"
)

type Env struct {
	// Every time we get an env, we assign it a RequestId. This is
	// essentially a per-user incrementing integer. It can wrap and we
	// can have duplicates, but over a reasonable window it should be
	// unique per user. Mostly just used with the logger.
	requestId string

	// The requester
	User *User

	// Anything logged with this logger automatically carries the
	// uid (user id) and rid (request id) fields
	Logger log.Logger

	// records validation errors
	Validator *validation.Result
}

func NewEnv(u *User) *Env {
	requestId := u.NextRequestId()
	logger := log.Checkout().
		Field(u.logField).
		String("rid", requestId).
		MultiUse()

	return &Env{
		User:      u,
		Logger:    logger,
		requestId: requestId,
		Validator: validation.Checkout(),
	}
}

func (e *Env) RequestId() string {
	return e.requestId
}

// Ownership check behind every mutating boleto operation except
// code-based consumption (there the code itself is the credential).
// Drivers and admins pass for boletos they don't own.
func (e *Env) CanAccess(ownerId int64) bool {
	user := e.User
	return user.Id == ownerId || user.Elevated()
}

func (e *Env) Info(ctx string) log.Logger {
	return e.Logger.Info(ctx)
}

func (e *Env) Warn(ctx string) log.Logger {
	return e.Logger.Warn(ctx)
}

func (e *Env) Error(ctx string) log.Logger {
	return e.Logger.Error(ctx)
}

func (e *Env) Release() {
	e.Logger.Release()
	e.Validator.Release()
}
