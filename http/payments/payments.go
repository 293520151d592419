package payments

import (
	"src.goblgobl.com/boleto/codes"
	"src.goblgobl.com/utils/http"
	"src.goblgobl.com/utils/typed"
	"src.goblgobl.com/utils/validation"
)

const (
	BOLETO_DAILY  = "daily"
	BOLETO_SINGLE = "single"
)

var (
	typeValidation = validation.String("type").Required().
			Convert(func(field string, value string, _input typed.Typed, res *validation.Result) any {
			if value != BOLETO_DAILY && value != BOLETO_SINGLE {
				res.InvalidField(field, validation.Meta{
					Code:  codes.VAL_INVALID_BOLETO_TYPE,
					Error: "type must be one of: daily or single",
				}, nil)
				return nil
			}
			return value
		})

	resUserNotFound       = http.StaticError(404, codes.RES_USER_NOT_FOUND, "no user with that email")
	resCodeSpaceExhausted = http.StaticError(503, codes.RES_CODE_SPACE_EXHAUSTED, "no free boleto codes, try again")
)
