package qr

import (
	"github.com/valyala/fasthttp"
	"src.goblgobl.com/boleto"
	"src.goblgobl.com/boleto/storage"
	"src.goblgobl.com/boleto/storage/data"
	"src.goblgobl.com/utils/http"
	"src.goblgobl.com/utils/typed"
	"src.goblgobl.com/utils/validation"
)

var deactivateValidation = validation.Input().Field(boletoIdValidation)

func Deactivate(conn *fasthttp.RequestCtx, env *boleto.Env) (http.Response, error) {
	input, err := typed.Json(conn.PostBody())
	if err != nil {
		return http.InvalidJSON, nil
	}

	validator := env.Validator
	if !deactivateValidation.Validate(input, validator) {
		return http.Validation(validator), nil
	}

	id := int64(input.Int("boleto_id"))
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

	status, err := storage.DB.QRDeactivate(id)
	if err != nil {
		return nil, err
	}
	if status == data.QR_DEACTIVATE_NOT_FOUND {
		return resNotFound, nil
	}

	return http.OkBytes([]byte(`{"deactivated":true}`)), nil
}
