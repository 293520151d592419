package boleto

import (
	"testing"

	"src.goblgobl.com/boleto/storage/data"
	"src.goblgobl.com/tests/assert"
)

func Test_Env_CanAccess(t *testing.T) {
	owner := BuildEnv().UserId(5).Env()
	assert.True(t, owner.CanAccess(5))
	assert.False(t, owner.CanAccess(6))

	driver := BuildEnv().UserId(5).Role(data.ROLE_DRIVER).Env()
	assert.True(t, driver.CanAccess(5))
	assert.True(t, driver.CanAccess(6))

	admin := BuildEnv().UserId(5).Role(data.ROLE_ADMIN).Env()
	assert.True(t, admin.CanAccess(6))
}
