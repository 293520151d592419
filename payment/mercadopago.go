package payment

import (
	"time"

	"github.com/valyala/fasthttp"
	"src.goblgobl.com/boleto/codes"
	"src.goblgobl.com/utils/json"
	"src.goblgobl.com/utils/log"
	"src.goblgobl.com/utils/typed"
)

type MercadoPago struct {
	client *fasthttp.Client
	config Config
}

func NewMercadoPago(config Config) *MercadoPago {
	return &MercadoPago{
		config: config,
		client: &fasthttp.Client{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

func (m *MercadoPago) FetchPayment(id string) (*Payment, error) {
	// an unknown payment id isn't an error, webhooks get retried
	// with ids we might never have seen
	body, status, err := m.do("GET", m.config.URL+"/v1/payments/"+id, nil, true)
	if err != nil {
		return nil, err
	}
	if status == 404 {
		return nil, nil
	}

	data, err := typed.Json(body)
	if err != nil {
		return nil, log.Err(codes.ERR_MERCADOPAGO_BODY, err)
	}

	return &Payment{
		Id:                id,
		Status:            data.String("status"),
		ExternalReference: data.String("external_reference"),
	}, nil
}

func (m *MercadoPago) CreatePreference(opts CreatePreference) (*Preference, error) {
	config := m.config
	payload, err := json.Marshal(map[string]any{
		"items":              opts.Items,
		"payer":              map[string]any{"email": opts.PayerEmail},
		"external_reference": opts.ExternalReference,
		"notification_url":   config.NotificationURL,
		"back_urls": map[string]any{
			"success": config.BackURL,
			"pending": config.BackURL,
			"failure": config.BackURL,
		},
	})
	if err != nil {
		return nil, err
	}

	body, _, err := m.do("POST", config.URL+"/checkout/preferences", payload, false)
	if err != nil {
		return nil, err
	}

	var preference Preference
	if err := json.Unmarshal(body, &preference); err != nil {
		return nil, log.Err(codes.ERR_MERCADOPAGO_BODY, err)
	}
	return &preference, nil
}

func (m *MercadoPago) do(method string, url string, body []byte, notFoundOk bool) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	res := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(res)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	req.Header.Set("Authorization", "Bearer "+m.config.AccessToken)
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	if err := m.client.Do(req, res); err != nil {
		return nil, 0, err
	}

	status := res.StatusCode()
	if status == 404 && notFoundOk {
		return nil, status, nil
	}
	if status < 200 || status > 299 {
		return nil, status, log.Errf(codes.ERR_MERCADOPAGO_STATUS, "mercadopago returned %d for %s %s: %s", status, method, url, res.Body())
	}

	// res is released on return, the body isn't ours to keep
	out := make([]byte, len(res.Body()))
	copy(out, res.Body())
	return out, status, nil
}
