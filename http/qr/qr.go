package qr

import (
	"strings"

	"src.goblgobl.com/boleto/codes"
	"src.goblgobl.com/utils/http"
	"src.goblgobl.com/utils/typed"
	"src.goblgobl.com/utils/validation"
)

// What gets encoded into the QR image. Scanners post the decoded text
// straight back, so this is also the scan input.
type Payload struct {
	BoletoId  int64  `json:"boleto_id"`
	UserId    int64  `json:"user_id"`
	Code      string `json:"code"`
	Timestamp int64  `json:"ts"`
}

var (
	boletoIdValidation = validation.Int("boleto_id").Required().Min(1)

	resNotFound  = http.StaticError(404, codes.RES_BOLETO_NOT_FOUND, "boleto not found")
	resForbidden = http.StaticError(403, codes.RES_FORBIDDEN, "not allowed to manage this boleto")
	resInvalid   = http.StaticError(400, codes.RES_INVALID_BOLETO, "boleto is not valid for use")
	resExpired   = http.StaticError(400, codes.RES_QR_EXPIRED, "QR code has expired, ask the rider to re-activate it")
	resMalformed = http.StaticError(400, codes.RES_MALFORMED_QR, "QR content is not a valid boleto payload")
)

// Scanners occasionally post the image data-uri instead of the decoded
// text. That's never valid, and it's large, so it gets rejected before
// any parsing.
func decodePayload(raw string) (Payload, bool) {
	if strings.HasPrefix(raw, "data:image") {
		return Payload{}, false
	}

	data, err := typed.JsonString(raw)
	if err != nil {
		return Payload{}, false
	}

	boletoId, hasBoleto := data.IntIf("boleto_id")
	userId, hasUser := data.IntIf("user_id")
	code := data.String("code")
	if !hasBoleto || !hasUser || code == "" {
		return Payload{}, false
	}

	return Payload{
		BoletoId:  int64(boletoId),
		UserId:    int64(userId),
		Code:      code,
		Timestamp: int64(data.Int("ts")),
	}, true
}
