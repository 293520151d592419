package qr

import (
	"strconv"
	"testing"
	"time"

	"src.goblgobl.com/boleto"
	"src.goblgobl.com/boleto/tests"
	"src.goblgobl.com/tests/assert"
	"src.goblgobl.com/tests/request"
)

func Test_Status_InvalidData(t *testing.T) {
	request.ReqT(t, boleto.BuildEnv().Env()).
		Query(map[string]string{}).
		Get(Status).
		ExpectValidation("boleto_id", 1001)
}

func Test_Status_NotFound(t *testing.T) {
	request.ReqT(t, boleto.BuildEnv().Env()).
		Query(map[string]string{"boleto_id": "848121"}).
		Get(Status).
		ExpectNotFound(302_005)
}

func Test_Status_Inactive(t *testing.T) {
	row := tests.Factory.Boleto.Insert("state", "approved")

	body := request.ReqT(t, boleto.BuildEnv().Env()).
		Query(map[string]string{"boleto_id": strconv.Itoa(row.Int("id"))}).
		Get(Status).
		OK().Json

	assert.False(t, body.Bool("qr_active"))
	assert.False(t, body.Bool("valid"))
	assert.Nil(t, body["qr_valid_until"])
}

func Test_Status_Active(t *testing.T) {
	until := time.Now().Add(time.Minute * 2)
	row := tests.Factory.Boleto.Insert("state", "approved", "qr_active", true, "qr_valid_until", until)

	body := request.ReqT(t, boleto.BuildEnv().Env()).
		Query(map[string]string{"boleto_id": strconv.Itoa(row.Int("id"))}).
		Get(Status).
		OK().Json

	assert.True(t, body.Bool("qr_active"))
	assert.True(t, body.Bool("valid"))
	assert.Timeish(t, body.Time("qr_valid_until"), until)
}

func Test_Status_ExpiredWindow(t *testing.T) {
	row := tests.Factory.Boleto.Insert("state", "approved", "qr_active", true, "qr_valid_until", time.Now().Add(-time.Second))

	body := request.ReqT(t, boleto.BuildEnv().Env()).
		Query(map[string]string{"boleto_id": strconv.Itoa(row.Int("id"))}).
		Get(Status).
		OK().Json

	assert.True(t, body.Bool("qr_active"))
	assert.False(t, body.Bool("valid"))
}
