package payment

// singleton, like storage.DB
var Client Provider

// The slice of the payment provider this service actually consumes:
// create a checkout preference carrying our external reference, and
// fetch a payment's status + reference back when a webhook fires.
type Provider interface {
	FetchPayment(id string) (*Payment, error)
	CreatePreference(opts CreatePreference) (*Preference, error)
}

type Payment struct {
	Id                string
	Status            string
	ExternalReference string
}

type Preference struct {
	Id        string `json:"id"`
	InitPoint string `json:"init_point"`
}

type Item struct {
	Id        string `json:"id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice int    `json:"unit_price"`
}

type CreatePreference struct {
	Items             []Item
	PayerEmail        string
	ExternalReference string
}

type Config struct {
	AccessToken     string `json:"access_token"`
	URL             string `json:"url"`
	BackURL         string `json:"back_url"`
	NotificationURL string `json:"notification_url"`
	DailyPrice      int    `json:"daily_price"`
	SinglePrice     int    `json:"single_price"`
}

// Applies defaults in place so that the rest of the app sees the
// effective values (e.g. the preference handler reads the prices).
func Configure(config *Config) error {
	if config.URL == "" {
		config.URL = "https://api.mercadopago.com"
	}
	if config.DailyPrice == 0 {
		config.DailyPrice = 7000
	}
	if config.SinglePrice == 0 {
		config.SinglePrice = 5000
	}
	Client = NewMercadoPago(*config)
	return nil
}
