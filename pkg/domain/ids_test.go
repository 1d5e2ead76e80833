package domain

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "aurum/pkg/domain-errors"
)

// TestParseAddress_Invariants validates the parsing invariant:
// "addresses are exactly 32 bytes of hex text"
func TestParseAddress_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseAddress("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects short input", func(t *testing.T) {
		_, err := ParseAddress("abcd")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects non-hex input", func(t *testing.T) {
		_, err := ParseAddress(strings.Repeat("zz", AddressLength))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("round trips through text form", func(t *testing.T) {
		pub, _, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)
		addr, err := AddressFromPublicKey(pub)
		require.NoError(t, err)

		parsed, err := ParseAddress(addr.String())
		require.NoError(t, err)
		assert.Equal(t, addr, parsed)
		assert.Equal(t, pub, parsed.PublicKey())
	})
}

func TestAddress_JSON(t *testing.T) {
	addr := MustParseAddress(strings.Repeat("ab", AddressLength))
	payload, err := json.Marshal(map[string]Address{"owner": addr})
	require.NoError(t, err)
	assert.JSONEq(t, `{"owner":"`+strings.Repeat("ab", AddressLength)+`"}`, string(payload))

	var decoded map[string]Address
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, addr, decoded["owner"])
}

func TestParseRequestID(t *testing.T) {
	t.Run("rejects zero", func(t *testing.T) {
		_, err := ParseRequestID("0")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects negative", func(t *testing.T) {
		_, err := ParseRequestID("-1")
		require.Error(t, err)
	})

	t.Run("accepts max uint64", func(t *testing.T) {
		id, err := ParseRequestID("18446744073709551615")
		require.NoError(t, err)
		assert.Equal(t, RequestID(^uint64(0)), id)
	})
}

func TestAddress_SQL(t *testing.T) {
	addr := MustParseAddress(strings.Repeat("ab", AddressLength))

	v, err := addr.Value()
	require.NoError(t, err)
	var back Address
	require.NoError(t, back.Scan(v))
	assert.Equal(t, addr, back)

	v, err = Address{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v, "zero address is stored as NULL")
	require.NoError(t, back.Scan(nil))
	assert.True(t, back.IsZero())

	assert.Error(t, back.Scan([]byte{1, 2, 3}))
	assert.Error(t, back.Scan("text"))
}
