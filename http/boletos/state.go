package boletos

import (
	"github.com/valyala/fasthttp"
	"src.goblgobl.com/boleto"
	"src.goblgobl.com/boleto/storage"
	"src.goblgobl.com/boleto/storage/data"
	"src.goblgobl.com/utils/http"
	"src.goblgobl.com/utils/typed"
	"src.goblgobl.com/utils/validation"
)

var setStateValidation = validation.Input().Field(stateValidation)

func SetState(conn *fasthttp.RequestCtx, env *boleto.Env) (http.Response, error) {
	input, err := typed.Json(conn.PostBody())
	if err != nil {
		return http.InvalidJSON, nil
	}

	validator := env.Validator
	if !setStateValidation.Validate(input, validator) {
		return http.Validation(validator), nil
	}

	return setState(conn, env, input["state"].(data.BoletoState))
}

func Approve(conn *fasthttp.RequestCtx, env *boleto.Env) (http.Response, error) {
	return setState(conn, env, data.BOLETO_APPROVED)
}

func Reject(conn *fasthttp.RequestCtx, env *boleto.Env) (http.Response, error) {
	return setState(conn, env, data.BOLETO_REJECTED)
}

// Any state can overwrite any other. Re-approving an approved boleto,
// or re-pending a rejected one, are all allowed; it keeps webhook
// redeliveries and admin corrections simple.
func setState(conn *fasthttp.RequestCtx, env *boleto.Env, state data.BoletoState) (http.Response, error) {
	id, ok := boletoId(conn)
	if !ok {
		return resNotFound, nil
	}

	existing, err := storage.DB.GetBoleto(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return resNotFound, nil
	}
	if !env.CanAccess(existing.UserId) {
		return resForbidden, nil
	}

	result, err := storage.DB.BoletoSetState(data.BoletoSetState{Id: id, State: state})
	if err != nil {
		return nil, err
	}
	if result.Status == data.BOLETO_SET_STATE_NOT_FOUND {
		return resNotFound, nil
	}

	return http.Ok(result.Boleto), nil
}
