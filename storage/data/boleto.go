package data

import "time"

// How long a boleto stays consumable once it has been used for the
// first time.
const ValidityWindow = time.Hour * 24

// How long a freshly activated QR stays redeemable. Short on purpose:
// a screenshot of someone else's QR goes stale before it can be reused.
const QRWindow = time.Minute * 3

type BoletoState string

const (
	BOLETO_PENDING  BoletoState = "pending"
	BOLETO_APPROVED BoletoState = "approved"
	BOLETO_REJECTED BoletoState = "rejected"
)

// States are parsed once at the boundary and compared by value after
// that. Comparison is case-insensitive here and nowhere else.
func ParseBoletoState(value string) (BoletoState, bool) {
	switch value {
	case "pending", "PENDING":
		return BOLETO_PENDING, true
	case "approved", "APPROVED":
		return BOLETO_APPROVED, true
	case "rejected", "REJECTED":
		return BOLETO_REJECTED, true
	}
	return "", false
}

type Boleto struct {
	Id           int64       `json:"id"`
	UserId       int64       `json:"user_id"`
	Lote         string      `json:"lote"`
	Code         string      `json:"code"`
	State        BoletoState `json:"state"`
	Active       bool        `json:"active"`
	UsageCount   int         `json:"usage_count"`
	FirstUse     *time.Time  `json:"first_use"`
	ValidUntil   *time.Time  `json:"valid_until"`
	QRActive     bool        `json:"qr_active"`
	QRValidUntil *time.Time  `json:"qr_valid_until"`
	Created      time.Time   `json:"created"`
}

// A boleto is consumable while it's active, approved and either unused
// or still inside the 24 hour window started by its first use.
// FirstUse and ValidUntil are always set together.
func (b *Boleto) Valid(now time.Time) bool {
	if !b.Active || b.State != BOLETO_APPROVED {
		return false
	}
	if b.FirstUse == nil {
		return true
	}
	return b.ValidUntil != nil && now.Before(*b.ValidUntil)
}

// The QR is redeemable only inside the short activation window.
// QRValidUntil is null whenever QRActive is false.
func (b *Boleto) QRValid(now time.Time) bool {
	return b.QRActive && b.QRValidUntil != nil && now.Before(*b.QRValidUntil)
}

type BoletoCreateStatus int
type BoletoSetStateStatus int
type BoletoConsumeStatus int
type QRActivateStatus int
type QRDeactivateStatus int

const (
	BOLETO_CREATE_OK BoletoCreateStatus = iota
	BOLETO_CREATE_DUPLICATE_CODE

	BOLETO_SET_STATE_OK BoletoSetStateStatus = iota
	BOLETO_SET_STATE_NOT_FOUND

	BOLETO_CONSUME_OK BoletoConsumeStatus = iota
	BOLETO_CONSUME_NOT_FOUND
	BOLETO_CONSUME_NOT_APPROVED
	BOLETO_CONSUME_INVALID
	BOLETO_CONSUME_QR_EXPIRED

	QR_ACTIVATE_OK QRActivateStatus = iota
	QR_ACTIVATE_NOT_FOUND
	QR_ACTIVATE_INVALID

	QR_DEACTIVATE_OK QRDeactivateStatus = iota
	QR_DEACTIVATE_NOT_FOUND
)

type BoletoCreate struct {
	UserId int64
	Lote   string
	Code   string
}

type BoletoCreateResult struct {
	Status BoletoCreateStatus
	Boleto *Boleto
}

type BoletoSetState struct {
	Id    int64
	State BoletoState
}

type BoletoSetStateResult struct {
	Status BoletoSetStateStatus
	Boleto *Boleto
}

// Consume targets a boleto either by id (manual operator consumption)
// or by code (the code is the credential). When RequireQR is set the
// activation window is enforced and, on success, a scan record is
// written in the same transaction as the usage increment.
type BoletoConsume struct {
	Id        int64
	Code      string
	Now       time.Time
	RequireQR bool
	ScanId    string
	ScannedBy int64
}

type BoletoConsumeResult struct {
	Status BoletoConsumeStatus
	Boleto *Boleto
}

type QRActivate struct {
	Id  int64
	Now time.Time
}

type QRActivateResult struct {
	Status QRActivateStatus
	Boleto *Boleto
}
