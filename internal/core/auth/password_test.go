package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher(t *testing.T) {
	h := Hasher{Cost: bcrypt.MinCost}
	hashed, err := h.Hash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, "password123", hashed)
	assert.True(t, h.Check("password123", hashed))
	assert.False(t, h.Check("password124", hashed))
	assert.False(t, h.Check("password123", "not-a-hash"))

	again, err := h.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, hashed, again, "salt should differ")
}

func TestHasher_DefaultCost(t *testing.T) {
	hashed, err := Hasher{}.Hash("pw")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, cost)
}

func TestHasher_LongPasswordUsesFirst72Bytes(t *testing.T) {
	h := Hasher{Cost: bcrypt.MinCost}
	long := strings.Repeat("p", 100)

	hashed, err := h.Hash(long)
	require.NoError(t, err)
	assert.True(t, h.Check(long, hashed))
	assert.True(t, h.Check(long[:72], hashed))
	assert.False(t, h.Check(long[:71], hashed))

	// 多字节字符跨越 72 字节边界
	multi := strings.Repeat("é", 50)
	hashed, err = h.Hash(multi)
	require.NoError(t, err)
	assert.True(t, h.Check(multi, hashed))
}
