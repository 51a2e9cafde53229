package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "bagofholding/pkg/domain-errors"
)

// IDs must be valid, non-empty, non-nil UUIDs at trust boundaries.
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseBagID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseBagID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseBagID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseBagID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, BagID(validUUID), id)
	})
}

// Typed IDs are distinct types; cross-type assignment fails to compile.
// This test documents the invariant at runtime.
func TestTypeDistinction(t *testing.T) {
	userID := UserID(uuid.New())
	bagID := BagID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ UserID = bagID   // compile error
	// var _ BagID = userID   // compile error

	assert.NotEqual(t, uuid.UUID(userID), uuid.UUID(bagID))
}

func TestIsNil(t *testing.T) {
	assert.True(t, UserID{}.IsNil())
	assert.False(t, NewUserID().IsNil())
}

// IDs cross the wire in JSON payloads and must render as canonical UUID
// strings, not as the underlying byte array.
func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		User UserID       `json:"user"`
		Bag  BagID        `json:"bag"`
		Inv  InvitationID `json:"inv"`
		Item ItemID       `json:"item"`
	}
	in := payload{NewUserID(), NewBagID(), NewInvitationID(), NewItemID()}

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"user":"`+in.User.String()+`"`)
	assert.Contains(t, string(raw), `"bag":"`+in.Bag.String()+`"`)

	var out payload
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestJSONRejectsMalformed(t *testing.T) {
	var id BagID
	assert.Error(t, json.Unmarshal([]byte(`"not-a-uuid"`), &id))
}
