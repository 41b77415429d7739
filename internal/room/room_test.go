package room

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	assert.Equal(t, "42_7_9", Encode(42, 7, 9))
	assert.Equal(t, Encode(42, 7, 9), Encode(42, 7, 9))
	assert.NotEqual(t, Encode(42, 7, 9), Encode(42, 9, 7))
}

func TestDecode_RoundTrip(t *testing.T) {
	triples := [][3]int64{
		{1, 1, 1},
		{42, 7, 9},
		{100500, 3, 77},
		{math.MaxInt64, math.MaxInt64 - 1, 1},
	}

	for _, tr := range triples {
		id, ok := Decode(Encode(tr[0], tr[1], tr[2]))
		require.True(t, ok, "triple %v", tr)
		assert.Equal(t, ID{ListingID: tr[0], BuyerID: tr[1], SellerID: tr[2]}, id)
		assert.Equal(t, Encode(tr[0], tr[1], tr[2]), id.String())
	}
}

func TestDecode_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"42",
		"42_7",
		"42_7_9_1",
		"42__9",
		"_7_9",
		"42_7_",
		"a_7_9",
		"42_b_9",
		"42_7_c",
		"42_-7_9",
		"42_+7_9",
		" 42_7_9",
		"42_7_9 ",
		"4.2_7_9",
		"42-7-9",
		"42_7_99999999999999999999",
		"___",
	}

	for _, in := range inputs {
		assert.NotPanics(t, func() {
			_, ok := Decode(in)
			assert.False(t, ok, "input %q", in)
		})
	}
}

func TestDecode_AllowsZero(t *testing.T) {
	id, ok := Decode("0_0_0")
	require.True(t, ok)
	assert.Equal(t, ID{}, id)
}

func TestParticipants(t *testing.T) {
	id, ok := Decode("42_7_9")
	require.True(t, ok)

	assert.True(t, id.HasParticipant(7))
	assert.True(t, id.HasParticipant(9))
	assert.False(t, id.HasParticipant(11))
	assert.False(t, id.HasParticipant(42))

	assert.Equal(t, int64(9), id.Counterpart(7))
	assert.Equal(t, int64(7), id.Counterpart(9))
}
