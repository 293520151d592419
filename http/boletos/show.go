package boletos

import (
	"github.com/valyala/fasthttp"
	"src.goblgobl.com/boleto"
	"src.goblgobl.com/boleto/storage"
	"src.goblgobl.com/utils/http"
)

func Show(conn *fasthttp.RequestCtx, env *boleto.Env) (http.Response, error) {
	id, ok := boletoId(conn)
	if !ok {
		return resNotFound, nil
	}

	b, err := storage.DB.GetBoleto(id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return resNotFound, nil
	}
	// the response includes the code, so only the owner (or staff)
	// gets to see it
	if !env.CanAccess(b.UserId) {
		return resForbidden, nil
	}

	return http.Ok(b), nil
}
