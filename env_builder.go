//go:build !release

// Used as a factory for tests only

package boleto

import (
	"src.goblgobl.com/boleto/storage/data"
	"src.goblgobl.com/utils/log"
	"src.goblgobl.com/utils/validation"
)

type EnvBuilder struct {
	user      *User
	logger    log.Logger
	validator *validation.Result
}

func BuildEnv() *EnvBuilder {
	return &EnvBuilder{
		user: &User{Id: 1, Role: data.ROLE_USER},
	}
}

func (eb *EnvBuilder) UserId(id int64) *EnvBuilder {
	eb.user.Id = id
	return eb
}

func (eb *EnvBuilder) Role(role data.Role) *EnvBuilder {
	eb.user.Role = role
	return eb
}

func (eb *EnvBuilder) User(user *User) *EnvBuilder {
	eb.user = user
	return eb
}

func (eb *EnvBuilder) Env() *Env {
	logger := eb.logger
	if logger == nil {
		logger = log.Noop{}
	}

	validator := eb.validator
	if validator == nil {
		validator = validation.NewResult(10)
	}

	return &Env{
		User:      eb.user,
		Logger:    logger,
		Validator: validator,
	}
}
