package boleto

import (
	"math/rand"
	"strconv"

	"src.goblgobl.com/boleto/storage"
	"src.goblgobl.com/boleto/storage/data"
)

// Batch label attached to boletos created through the payment flow.
const LotePagoOnline = "PAGO_ONLINE"

// The code space is [1000, 9999], which is fine for the volume this
// runs at, but it does mean generation has to be bounded: with enough
// live codes the retry loop would otherwise spin forever.
const maxCodeAttempts = 50

type CreateStatus int

const (
	CREATE_OK CreateStatus = iota
	CREATE_USER_NOT_FOUND
	CREATE_CODE_SPACE_EXHAUSTED
)

// Creates a pending boleto for the given owner. Code uniqueness isn't
// checked here: the storage engine enforces it and reports a duplicate,
// at which point we try a fresh code. One insert attempt per candidate
// code, no read-check race.
func Create(userId int64, lote string) (*data.Boleto, CreateStatus, error) {
	user, err := storage.DB.GetUser(userId)
	if err != nil {
		return nil, 0, err
	}
	if user == nil {
		return nil, CREATE_USER_NOT_FOUND, nil
	}

	for i := 0; i < maxCodeAttempts; i++ {
		result, err := storage.DB.BoletoCreate(data.BoletoCreate{
			UserId: userId,
			Lote:   lote,
			Code:   GenerateCode(),
		})
		if err != nil {
			return nil, 0, err
		}
		if result.Status == data.BOLETO_CREATE_DUPLICATE_CODE {
			continue
		}
		return result.Boleto, CREATE_OK, nil
	}

	return nil, CREATE_CODE_SPACE_EXHAUSTED, nil
}

// 4-digit numeric string, uniform in [1000, 9999]
func GenerateCode() string {
	return strconv.Itoa(1000 + rand.Intn(9000))
}
