package qr

import (
	"encoding/base64"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/valyala/fasthttp"
	"src.goblgobl.com/boleto"
	"src.goblgobl.com/boleto/storage"
	"src.goblgobl.com/boleto/storage/data"
	"src.goblgobl.com/utils/http"
	"src.goblgobl.com/utils/json"
	"src.goblgobl.com/utils/typed"
	"src.goblgobl.com/utils/validation"
)

var activateValidation = validation.Input().Field(boletoIdValidation)

func Activate(conn *fasthttp.RequestCtx, env *boleto.Env) (http.Response, error) {
	input, err := typed.Json(conn.PostBody())
	if err != nil {
		return http.InvalidJSON, nil
	}

	validator := env.Validator
	if !activateValidation.Validate(input, validator) {
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

	now := time.Now()
	result, err := storage.DB.QRActivate(data.QRActivate{Id: id, Now: now})
	if err != nil {
		return nil, err
	}

	switch result.Status {
	case data.QR_ACTIVATE_NOT_FOUND:
		return resNotFound, nil
	case data.QR_ACTIVATE_INVALID:
		return resInvalid, nil
	}

	activated := result.Boleto
	// the payload identifies who generated the QR, which is not
	// necessarily the owner (a driver can activate for a rider)
	payload := Payload{
		BoletoId:  activated.Id,
		UserId:    env.User.Id,
		Code:      activated.Code,
		Timestamp: now.Unix(),
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(string(encoded), qrcode.Medium, 256)
	if err != nil {
		return nil, err
	}

	return http.Ok(struct {
		QR           string     `json:"qr"`
		Code         string     `json:"code"`
		Payload      Payload    `json:"payload"`
		QRValidUntil *time.Time `json:"qr_valid_until"`
	}{
		QR:           base64.RawStdEncoding.EncodeToString(png),
		Code:         activated.Code,
		Payload:      payload,
		QRValidUntil: activated.QRValidUntil,
	}), nil
}
