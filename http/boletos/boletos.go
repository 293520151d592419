package boletos

import (
	"strconv"

	"github.com/valyala/fasthttp"
	"src.goblgobl.com/boleto/codes"
	"src.goblgobl.com/boleto/storage/data"
	"src.goblgobl.com/utils/http"
	"src.goblgobl.com/utils/typed"
	"src.goblgobl.com/utils/validation"
)

var (
	codeValidation = validation.String("code").Required().Length(4, 4).
			Convert(func(field string, value string, _input typed.Typed, res *validation.Result) any {
			if _, err := strconv.Atoi(value); err != nil {
				res.InvalidField(field, validation.Meta{
					Code:  codes.VAL_NON_NUMERIC_CODE,
					Error: "code must be a 4-digit number",
				}, nil)
				return nil
			}
			return value
		})

	stateValidation = validation.String("state").Required().
			Convert(func(field string, value string, _input typed.Typed, res *validation.Result) any {
			state, ok := data.ParseBoletoState(value)
			if !ok {
				res.InvalidField(field, validation.Meta{
					Code:  codes.VAL_INVALID_STATE,
					Error: "state must be one of: pending, approved or rejected",
				}, nil)
				return nil
			}
			return state
		})

	resNotFound           = http.StaticError(404, codes.RES_BOLETO_NOT_FOUND, "boleto not found")
	resUserNotFound       = http.StaticError(404, codes.RES_USER_NOT_FOUND, "user not found")
	resForbidden          = http.StaticError(403, codes.RES_FORBIDDEN, "not allowed to manage this boleto")
	resNotApproved        = http.StaticError(400, codes.RES_INVALID_BOLETO, "boleto has not been approved")
	resInvalid            = http.StaticError(400, codes.RES_INVALID_BOLETO, "boleto is not valid for use")
	resCodeSpaceExhausted = http.StaticError(503, codes.RES_CODE_SPACE_EXHAUSTED, "no free boleto codes, try again")
)

// {id} route segment. A non-numeric id can't exist, so it gets the
// same treatment as a missing row.
func boletoId(conn *fasthttp.RequestCtx) (int64, bool) {
	value, ok := conn.UserValue("id").(string)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(value, 10, 64)
	return id, err == nil
}
