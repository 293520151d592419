package boletos

import (
	"github.com/valyala/fasthttp"
	"src.goblgobl.com/boleto"
	"src.goblgobl.com/utils/http"
	"src.goblgobl.com/utils/typed"
	"src.goblgobl.com/utils/validation"
)

var createValidation = validation.Input().
	Field(validation.String("lote").Required().Length(1, 100)).
	Field(validation.Int("user_id").Min(1))

func Create(conn *fasthttp.RequestCtx, env *boleto.Env) (http.Response, error) {
	input, err := typed.Json(conn.PostBody())
	if err != nil {
		return http.InvalidJSON, nil
	}

	validator := env.Validator
	if !createValidation.Validate(input, validator) {
		return http.Validation(validator), nil
	}

	userId := env.User.Id
	if id, ok := input.IntIf("user_id"); ok {
		userId = int64(id)
	}
	if !env.CanAccess(userId) {
		return resForbidden, nil
	}

	created, status, err := boleto.Create(userId, input.String("lote"))
	if err != nil {
		return nil, err
	}

	switch status {
	case boleto.CREATE_USER_NOT_FOUND:
		return resUserNotFound, nil
	case boleto.CREATE_CODE_SPACE_EXHAUSTED:
		return resCodeSpaceExhausted, nil
	}

	return http.Ok(created), nil
}
