package codes

// Validation and response codes for the boleto service. The 1000-2999
// range belongs to utils (required fields, type mismatches, invalid json
// and so on). This project owns the 30x_xxx block: 301 for input
// conversion failures, 302 for handled responses, 303 for errors.

const (
	VAL_INVALID_STATE       = 301_001
	VAL_NON_NUMERIC_CODE    = 301_002
	VAL_INVALID_BOLETO_TYPE = 301_003

	RES_UNKNOWN_ROUTE        = 302_001
	RES_MISSING_USER_HEADER  = 302_002
	RES_UNKNOWN_USER         = 302_003
	RES_USER_NOT_FOUND       = 302_004
	RES_BOLETO_NOT_FOUND     = 302_005
	RES_FORBIDDEN            = 302_006
	RES_INVALID_BOLETO       = 302_007
	RES_QR_EXPIRED           = 302_008
	RES_MALFORMED_QR         = 302_009
	RES_CODE_SPACE_EXHAUSTED = 302_010

	ERR_READ_CONFIG          = 303_001
	ERR_PARSE_CONFIG         = 303_002
	ERR_INVALID_STORAGE_TYPE = 303_003
	ERR_MERCADOPAGO_STATUS   = 303_004
	ERR_MERCADOPAGO_BODY     = 303_005
)
