package qr

import (
	"time"

	"github.com/valyala/fasthttp"
	"src.goblgobl.com/boleto"
	"src.goblgobl.com/boleto/codes"
	"src.goblgobl.com/boleto/storage"
	"src.goblgobl.com/boleto/storage/data"
	"src.goblgobl.com/utils/http"
	"src.goblgobl.com/utils/typed"
	"src.goblgobl.com/utils/uuid"
	"src.goblgobl.com/utils/validation"
)

var (
	scanValidation = validation.Input().
		Field(validation.String("qr").Required().Length(1, 4096))

	resNotApproved = http.StaticError(400, codes.RES_INVALID_BOLETO, "boleto has not been approved")
)

func Scan(conn *fasthttp.RequestCtx, env *boleto.Env) (http.Response, error) {
	if !env.User.Elevated() {
		return resForbidden, nil
	}

	input, err := typed.Json(conn.PostBody())
	if err != nil {
		return http.InvalidJSON, nil
	}

	validator := env.Validator
	if !scanValidation.Validate(input, validator) {
		return http.Validation(validator), nil
	}

	payload, ok := decodePayload(input.String("qr"))
	if !ok {
		return resMalformed, nil
	}

	result, err := storage.DB.BoletoConsume(data.BoletoConsume{
		Code:      payload.Code,
		Now:       time.Now(),
		RequireQR: true,
		ScanId:    uuid.String(),
		ScannedBy: env.User.Id,
	})
	if err != nil {
		return nil, err
	}

	switch result.Status {
	case data.BOLETO_CONSUME_NOT_FOUND:
		return resNotFound, nil
	case data.BOLETO_CONSUME_NOT_APPROVED:
		return resNotApproved, nil
	case data.BOLETO_CONSUME_QR_EXPIRED:
		return resExpired, nil
	case data.BOLETO_CONSUME_INVALID:
		return resInvalid, nil
	}

	return http.Ok(result.Boleto), nil
}
