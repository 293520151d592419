package payments

import (
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"
	"src.goblgobl.com/boleto"
	"src.goblgobl.com/boleto/payment"
	"src.goblgobl.com/boleto/storage"
	"src.goblgobl.com/utils/http"
	"src.goblgobl.com/utils/typed"
	"src.goblgobl.com/utils/validation"
)

var preferenceValidation = validation.Input().
	Field(validation.String("email").Required().Length(1, 200)).
	Field(typeValidation).
	Field(validation.Int("quantity").Min(1).Max(10).Default(1))

// Starts an online purchase: creates the pending boletos, then asks
// the payment provider for a checkout preference whose external
// reference carries the boleto ids. The webhook closes the loop by
// approving those ids once the payment clears.
func Preference(conn *fasthttp.RequestCtx) (http.Response, error) {
	input, err := typed.Json(conn.PostBody())
	if err != nil {
		return http.InvalidJSON, nil
	}

	validator := validation.Checkout()
	defer validator.Release()
	if !preferenceValidation.Validate(input, validator) {
		return http.Validation(validator), nil
	}

	user, err := storage.DB.GetUserByEmail(input.String("email"))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return resUserNotFound, nil
	}

	quantity := input.Int("quantity")
	ids := make([]int64, 0, quantity)
	refs := make([]string, 0, quantity)
	for i := 0; i < quantity; i++ {
		created, status, err := boleto.Create(user.Id, boleto.LotePagoOnline)
		if err != nil {
			return nil, err
		}
		if status == boleto.CREATE_CODE_SPACE_EXHAUSTED {
			return resCodeSpaceExhausted, nil
		}
		if status != boleto.CREATE_OK {
			return resUserNotFound, nil
		}
		ids = append(ids, created.Id)
		refs = append(refs, strconv.FormatInt(created.Id, 10))
	}

	mp := boleto.Config.MercadoPago
	item := payment.Item{
		Id:        "BOLETO-UNICO",
		Title:     "Boleto único",
		Quantity:  quantity,
		UnitPrice: mp.SinglePrice,
	}
	if input.String("type") == BOLETO_DAILY {
		item.Id = "BOLETO-DIARIO"
		item.Title = "Boleto diario"
		item.UnitPrice = mp.DailyPrice
	}

	preference, err := payment.Client.CreatePreference(payment.CreatePreference{
		Items:             []payment.Item{item},
		PayerEmail:        user.Email,
		ExternalReference: strings.Join(refs, ","),
	})
	if err != nil {
		return nil, err
	}

	return http.Ok(struct {
		PreferenceId string  `json:"preference_id"`
		InitPoint    string  `json:"init_point"`
		BoletoIds    []int64 `json:"boleto_ids"`
	}{
		PreferenceId: preference.Id,
		InitPoint:    preference.InitPoint,
		BoletoIds:    ids,
	}), nil
}
