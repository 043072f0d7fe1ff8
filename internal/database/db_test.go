package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"root@tcp(localhost:3306)/cineverse?charset=utf8mb4&parseTime=true&loc=UTC",
		DSN("root", "", "localhost", "3306", "cineverse"))
	assert.Equal(t,
		"app:pw@tcp(db:3307)/cv?charset=utf8mb4&parseTime=true&loc=UTC",
		DSN("app", "pw", "db", "3307", "cv"))
}
