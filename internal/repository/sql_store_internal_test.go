package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertQuery(t *testing.T) {
	q, args, err := upsertQuery("user:u1:bookings", []byte(`[]`))
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO kv_entries (k,v) VALUES (?,?) ON DUPLICATE KEY UPDATE v = VALUES(v)", q)
	assert.Equal(t, []any{"user:u1:bookings", []byte(`[]`)}, args)
}
