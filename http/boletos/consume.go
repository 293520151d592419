package boletos

import (
	"time"

	"github.com/valyala/fasthttp"
	"src.goblgobl.com/boleto"
	"src.goblgobl.com/boleto/storage"
	"src.goblgobl.com/boleto/storage/data"
	"src.goblgobl.com/utils/http"
	"src.goblgobl.com/utils/typed"
	"src.goblgobl.com/utils/validation"
)

var consumeValidation = validation.Input().Field(codeValidation)

// The code is the credential here: whoever holds a valid code can
// redeem it, no ownership check.
func ConsumeByCode(conn *fasthttp.RequestCtx, env *boleto.Env) (http.Response, error) {
	input, err := typed.Json(conn.PostBody())
	if err != nil {
		return http.InvalidJSON, nil
	}

	validator := env.Validator
	if !consumeValidation.Validate(input, validator) {
		return http.Validation(validator), nil
	}

	result, err := storage.DB.BoletoConsume(data.BoletoConsume{
		Code: input.String("code"),
		Now:  time.Now(),
	})
	if err != nil {
		return nil, err
	}

	return consumeResponse(result), nil
}

// Manual redemption by id, for drivers dealing with a rider whose
// phone can't render the QR.
func ConsumeManual(conn *fasthttp.RequestCtx, env *boleto.Env) (http.Response, error) {
	if !env.User.Elevated() {
		return resForbidden, nil
	}

	id, ok := boletoId(conn)
	if !ok {
		return resNotFound, nil
	}

	result, err := storage.DB.BoletoConsume(data.BoletoConsume{
		Id:  id,
		Now: time.Now(),
	})
	if err != nil {
		return nil, err
	}

	return consumeResponse(result), nil
}

func consumeResponse(result data.BoletoConsumeResult) http.Response {
	switch result.Status {
	case data.BOLETO_CONSUME_NOT_FOUND:
		return resNotFound
	case data.BOLETO_CONSUME_NOT_APPROVED:
		return resNotApproved
	case data.BOLETO_CONSUME_INVALID:
		return resInvalid
	}
	return http.Ok(result.Boleto)
}
