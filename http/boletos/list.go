package boletos

import (
	"strconv"

	"github.com/valyala/fasthttp"
	"src.goblgobl.com/boleto"
	"src.goblgobl.com/boleto/storage"
	"src.goblgobl.com/boleto/storage/data"
	"src.goblgobl.com/utils/http"
)

func List(conn *fasthttp.RequestCtx, env *boleto.Env) (http.Response, error) {
	boletos, err := storage.DB.GetBoletos()
	if err != nil {
		return nil, err
	}
	return listResponse(boletos), nil
}

func Pending(conn *fasthttp.RequestCtx, env *boleto.Env) (http.Response, error) {
	boletos, err := storage.DB.GetBoletosByState(data.BOLETO_PENDING)
	if err != nil {
		return nil, err
	}
	return listResponse(boletos), nil
}

func Approved(conn *fasthttp.RequestCtx, env *boleto.Env) (http.Response, error) {
	boletos, err := storage.DB.GetBoletosByState(data.BOLETO_APPROVED)
	if err != nil {
		return nil, err
	}
	return listResponse(boletos), nil
}

func Consumed(conn *fasthttp.RequestCtx, env *boleto.Env) (http.Response, error) {
	boletos, err := storage.DB.GetBoletosConsumed()
	if err != nil {
		return nil, err
	}
	return listResponse(boletos), nil
}

func ListUser(conn *fasthttp.RequestCtx, env *boleto.Env) (http.Response, error) {
	value, ok := conn.UserValue("userId").(string)
	if !ok {
		return resUserNotFound, nil
	}
	userId, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return resUserNotFound, nil
	}
	if !env.CanAccess(userId) {
		return resForbidden, nil
	}

	boletos, err := storage.DB.GetBoletosByUser(userId)
	if err != nil {
		return nil, err
	}
	return listResponse(boletos), nil
}

func listResponse(boletos []*data.Boleto) http.Response {
	if boletos == nil {
		boletos = []*data.Boleto{}
	}
	return http.Ok(struct {
		Boletos []*data.Boleto `json:"boletos"`
	}{
		Boletos: boletos,
	})
}
