package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	createdAt := time.Date(2024, 3, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeToken(createdAt, "txn-42")
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedAt, decodedID, err := DecodeToken(token)
	assert.NoError(t, err)
	assert.Equal(t, createdAt, decodedAt)
	assert.Equal(t, "txn-42", decodedID)
	assert.NotContains(t, token, "=")
	assert.NotContains(t, token, "+")

	now := time.Now().UTC()
	decodedNow, _, err := DecodeToken(EncodeToken(now, "x"))
	assert.NoError(t, err)
	assert.True(t, now.Equal(decodedNow), "Current time should match after decode")
}

func TestDecodeTokenError(t *testing.T) {
	_, _, err := DecodeToken("this is not base64!")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "base64 decode")

	_, _, err = DecodeToken(base64.RawURLEncoding.EncodeToString([]byte("2024-03-15T00:00:00Z")))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	_, _, err = DecodeToken(base64.RawURLEncoding.EncodeToString([]byte("notadate|txn-1")))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "created_at parse")
}

func TestAfter(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, After(base.Add(time.Second), "a", base, "z"))
	assert.False(t, After(base, "a", base, "b"))
	assert.True(t, After(base, "c", base, "b"))
	assert.False(t, After(base.Add(-time.Second), "z", base, "a"))
}
