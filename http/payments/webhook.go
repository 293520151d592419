package payments

import (
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"
	"src.goblgobl.com/boleto/payment"
	"src.goblgobl.com/boleto/storage"
	"src.goblgobl.com/boleto/storage/data"
	"src.goblgobl.com/utils/http"
	"src.goblgobl.com/utils/log"
	"src.goblgobl.com/utils/typed"
)

var resWebhookOk = http.OkBytes([]byte(`{"ok":true}`))

// The provider retries webhooks on anything but a 2xx, so everything
// that isn't our own failure gets a 200: unknown events, non-approved
// payments and junk ids are logged and acknowledged, not rejected.
func Webhook(conn *fasthttp.RequestCtx) (http.Response, error) {
	input, err := typed.Json(conn.PostBody())
	if err != nil {
		log.Warn("payments_webhook_body").Err(err).Log()
		return resWebhookOk, nil
	}

	if input.String("type") != "payment" {
		return resWebhookOk, nil
	}

	paymentId := webhookPaymentId(input.Object("data"))
	if paymentId == "" {
		log.Warn("payments_webhook_id").String("body", string(conn.PostBody())).Log()
		return resWebhookOk, nil
	}

	p, err := payment.Client.FetchPayment(paymentId)
	if err != nil {
		return nil, err
	}
	if p == nil {
		log.Warn("payments_webhook_unknown_payment").String("pid", paymentId).Log()
		return resWebhookOk, nil
	}
	if p.Status != "approved" {
		log.Info("payments_webhook_status").String("pid", paymentId).String("status", p.Status).Log()
		return resWebhookOk, nil
	}

	for _, id := range ParseExternalReference(p.ExternalReference) {
		result, err := storage.DB.BoletoSetState(data.BoletoSetState{Id: id, State: data.BOLETO_APPROVED})
		if err != nil {
			return nil, err
		}
		if result.Status == data.BOLETO_SET_STATE_NOT_FOUND {
			log.Warn("payments_webhook_missing_boleto").Int64("bid", id).String("pid", paymentId).Log()
		}
	}

	return resWebhookOk, nil
}

// "12,13,14" -> [12 13 14]. Junk segments are logged and skipped:
// a half-usable reference should still approve the ids it does name.
func ParseExternalReference(reference string) []int64 {
	parts := strings.Split(reference, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Warn("payments_external_reference").String("part", part).Log()
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// Providers have sent data.id both as a string and as a number.
func webhookPaymentId(data typed.Typed) string {
	if data == nil {
		return ""
	}
	if id := data.String("id"); id != "" {
		return id
	}
	if id, ok := data.IntIf("id"); ok {
		return strconv.Itoa(id)
	}
	return ""
}
