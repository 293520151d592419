package qr

import (
	"strconv"
	"testing"
	"time"

	"src.goblgobl.com/boleto"
	"src.goblgobl.com/boleto/storage/data"
	"src.goblgobl.com/boleto/tests"
	"src.goblgobl.com/tests/assert"
	"src.goblgobl.com/tests/request"
)

func Test_Scans_NotFound(t *testing.T) {
	request.ReqT(t, boleto.BuildEnv().Env()).
		Query(map[string]string{"boleto_id": "82828211"}).
		Get(Scans).
		ExpectNotFound(302_005)
}

func Test_Scans_Forbidden(t *testing.T) {
	row := tests.Factory.Boleto.Insert("user_id", 50)

	res := request.ReqT(t, boleto.BuildEnv().UserId(51).Env()).
		Query(map[string]string{"boleto_id": strconv.Itoa(row.Int("id"))}).
		Get(Scans).
		ExpectCode(302_006)
	assert.Equal(t, res.Status, 403)
}

func Test_Scans_Empty(t *testing.T) {
	row := tests.Factory.Boleto.Insert("user_id", 52)

	body := request.ReqT(t, boleto.BuildEnv().UserId(52).Env()).
		Query(map[string]string{"boleto_id": strconv.Itoa(row.Int("id"))}).
		Get(Scans).
		OK().Json
	assert.Equal(t, len(body.Objects("scans")), 0)
}

func Test_Scans_List(t *testing.T) {
	row := tests.Factory.Boleto.Insert("user_id", 53)
	id := row.Int("id")
	tests.Factory.Scan.Insert("boleto_id", id, "scanned_by", 7, "created", time.Now().Add(-time.Minute))
	tests.Factory.Scan.Insert("boleto_id", id, "scanned_by", 8, "created", time.Now())
	tests.Factory.Scan.Insert("scanned_by", 7)

	// a driver can read scans for a boleto they don't own
	body := request.ReqT(t, boleto.BuildEnv().UserId(900).Role(data.ROLE_DRIVER).Env()).
		Query(map[string]string{"boleto_id": strconv.Itoa(id)}).
		Get(Scans).
		OK().Json

	scans := body.Objects("scans")
	assert.Equal(t, len(scans), 2)
	// newest first
	assert.Equal(t, scans[0].Int("scanned_by"), 8)
	assert.Equal(t, scans[1].Int("scanned_by"), 7)
}
