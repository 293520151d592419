package qr

import (
	"time"

	"github.com/valyala/fasthttp"
	"src.goblgobl.com/boleto"
	"src.goblgobl.com/boleto/storage"
	"src.goblgobl.com/utils/http"
	"src.goblgobl.com/utils/validation"
)

var statusValidation = validation.Input().Field(boletoIdValidation)

func Status(conn *fasthttp.RequestCtx, env *boleto.Env) (http.Response, error) {
	validator := env.Validator
	input, ok := statusValidation.ValidateArgs(conn.QueryArgs(), validator)
	if !ok {
		return http.Validation(validator), nil
	}

	b, err := storage.DB.GetBoleto(int64(input.Int("boleto_id")))
	if err != nil {
		return nil, err
	}
	if b == nil {
		return resNotFound, nil
	}

	now := time.Now()
	return http.Ok(struct {
		QRActive     bool       `json:"qr_active"`
		QRValidUntil *time.Time `json:"qr_valid_until"`
		Valid        bool       `json:"valid"`
	}{
		QRActive:     b.QRActive,
		QRValidUntil: b.QRValidUntil,
		Valid:        b.QRValid(now),
	}), nil
}
