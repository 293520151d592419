package config

import (
	"os"

	"src.goblgobl.com/boleto/codes"
	"src.goblgobl.com/boleto/payment"
	"src.goblgobl.com/boleto/storage"
	"src.goblgobl.com/utils/json"
	"src.goblgobl.com/utils/log"
	"src.goblgobl.com/utils/validation"
)

type Config struct {
	InstanceId uint8 `json:"instance_id"`

	// seconds between refreshes of the in-process user cache,
	// 0 disables the background reload
	UserUpdateFrequency int `json:"user_update_frequency"`

	// nil and true both mean "run migrations on start"
	Migrations *bool `json:"migrations"`

	HTTP        HTTP              `json:"http"`
	Log         log.Config        `json:"log"`
	Validation  validation.Config `json:"validation"`
	Storage     storage.Config    `json:"storage"`
	MercadoPago payment.Config    `json:"mercadopago"`
}

type HTTP struct {
	Listen string `json:"listen"`
}

func Configure(filePath string) (Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Config{}, log.Err(codes.ERR_READ_CONFIG, err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return config, log.Err(codes.ERR_PARSE_CONFIG, err)
	}

	if err := log.Configure(config.Log); err != nil {
		return config, err
	}

	if err := validation.Configure(config.Validation); err != nil {
		return config, err
	}

	if err := storage.Configure(config.Storage); err != nil {
		return config, err
	}

	if err := payment.Configure(&config.MercadoPago); err != nil {
		return config, err
	}

	return config, nil
}
