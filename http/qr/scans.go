package qr

import (
	"github.com/valyala/fasthttp"
	"src.goblgobl.com/boleto"
	"src.goblgobl.com/boleto/storage"
	"src.goblgobl.com/boleto/storage/data"
	"src.goblgobl.com/utils/http"
	"src.goblgobl.com/utils/validation"
)

var scansValidation = validation.Input().Field(boletoIdValidation)

func Scans(conn *fasthttp.RequestCtx, env *boleto.Env) (http.Response, error) {
	validator := env.Validator
	input, ok := scansValidation.ValidateArgs(conn.QueryArgs(), validator)
	if !ok {
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

	scans, err := storage.DB.GetScansByBoleto(id)
	if err != nil {
		return nil, err
	}
	if scans == nil {
		scans = []data.Scan{}
	}

	return http.Ok(struct {
		Scans []data.Scan `json:"scans"`
	}{
		Scans: scans,
	}), nil
}
