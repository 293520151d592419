package http

import (
	"src.goblgobl.com/boleto"
	"src.goblgobl.com/boleto/codes"
	"src.goblgobl.com/boleto/http/boletos"
	"src.goblgobl.com/boleto/http/misc"
	"src.goblgobl.com/boleto/http/payments"
	"src.goblgobl.com/boleto/http/qr"
	"src.goblgobl.com/utils"
	"src.goblgobl.com/utils/http"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"src.goblgobl.com/utils/log"
)

var (
	resNotFoundPath      = http.StaticNotFound(codes.RES_UNKNOWN_ROUTE)
	resMissingUserHeader = http.StaticError(401, codes.RES_MISSING_USER_HEADER, "Boleto-User header required")
	resUnknownUser       = http.StaticError(401, codes.RES_UNKNOWN_USER, "unknown user id")
)

func Listen() {
	listen := boleto.Config.HTTP.Listen
	if listen == "" {
		listen = "127.0.0.1:5400"
	}

	log.Info("server_listening").String("address", listen).Log()

	fast := fasthttp.Server{
		Handler:                      handler(),
		NoDefaultContentType:         true,
		NoDefaultServerHeader:        true,
		SecureErrorLogMessage:        true,
		DisablePreParseMultipartForm: true,
	}
	err := fast.ListenAndServe(listen)
	log.Fatal("http_server_error").Err(err).String("address", listen).Log()
}

func handler() func(ctx *fasthttp.RequestCtx) {
	r := router.New()
	// misc routes
	r.GET("/v1/ping", http.NoEnvHandler("ping", misc.Ping))
	r.GET("/v1/info", http.NoEnvHandler("info", misc.Info))

	// boleto routes
	r.POST("/v1/boletos", http.Handler("boletos_create", loadUserEnv, boletos.Create))
	r.GET("/v1/boletos", http.Handler("boletos_list", loadUserEnv, boletos.List))
	r.GET("/v1/boletos/pending", http.Handler("boletos_list_pending", loadUserEnv, boletos.Pending))
	r.GET("/v1/boletos/approved", http.Handler("boletos_list_approved", loadUserEnv, boletos.Approved))
	r.GET("/v1/boletos/consumed", http.Handler("boletos_list_consumed", loadUserEnv, boletos.Consumed))
	r.GET("/v1/boletos/user/{userId}", http.Handler("boletos_list_user", loadUserEnv, boletos.ListUser))
	r.GET("/v1/boletos/{id}", http.Handler("boletos_show", loadUserEnv, boletos.Show))
	r.POST("/v1/boletos/{id}/state", http.Handler("boletos_set_state", loadUserEnv, boletos.SetState))
	r.POST("/v1/boletos/{id}/approve", http.Handler("boletos_approve", loadUserEnv, boletos.Approve))
	r.POST("/v1/boletos/{id}/reject", http.Handler("boletos_reject", loadUserEnv, boletos.Reject))
	r.POST("/v1/boletos/consume", http.Handler("boletos_consume_code", loadUserEnv, boletos.ConsumeByCode))
	r.POST("/v1/boletos/{id}/consume", http.Handler("boletos_consume", loadUserEnv, boletos.ConsumeManual))

	// QR routes
	r.POST("/v1/qr/activate", http.Handler("qr_activate", loadUserEnv, qr.Activate))
	r.POST("/v1/qr/deactivate", http.Handler("qr_deactivate", loadUserEnv, qr.Deactivate))
	r.GET("/v1/qr/status", http.Handler("qr_status", loadUserEnv, qr.Status))
	r.POST("/v1/qr/scan", http.Handler("qr_scan", loadUserEnv, qr.Scan))
	r.GET("/v1/qr/scans", http.Handler("qr_scans", loadUserEnv, qr.Scans))

	// payment routes. The webhook is called by the payment provider,
	// not by an authenticated user.
	r.POST("/v1/payments/preferences", http.NoEnvHandler("payments_preference", payments.Preference))
	r.POST("/v1/payments/webhook", http.NoEnvHandler("payments_webhook", payments.Webhook))

	// catch all
	r.NotFound = func(ctx *fasthttp.RequestCtx) {
		resNotFoundPath.Write(ctx)
	}

	return r.Handler
}

func loadUserEnv(conn *fasthttp.RequestCtx) (*boleto.Env, http.Response, error) {
	userId := conn.Request.Header.PeekBytes([]byte("Boleto-User"))
	if userId == nil {
		return nil, resMissingUserHeader, nil
	}

	user, err := boleto.Users.Get(utils.B2S(userId))
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, resUnknownUser, nil
	}

	return boleto.NewEnv(user), nil, nil
}
