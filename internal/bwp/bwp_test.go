package bwp_test

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christophergoltz/elogio-sub001/internal/bwp"
)

func TestIsObfuscated(t *testing.T) {
	assert.True(t, bwp.IsObfuscated("¤payload"))
	assert.True(t, bwp.IsObfuscated("¤"))

	assert.False(t, bwp.IsObfuscated(""))
	assert.False(t, bwp.IsObfuscated("normal text"))
	assert.False(t, bwp.IsObfuscated(`10,"com.bodet.test",0,1,2`))
}

func TestDecodePassthrough(t *testing.T) {
	plain := `10,"com.bodet.test",0,1,2`

	msg, err := bwp.Decode(plain)
	require.NoError(t, err)

	assert.False(t, msg.IsEncoded)
	assert.Equal(t, plain, msg.Decoded)
	assert.Equal(t, plain, msg.Raw)
	assert.Empty(t, msg.Keys)
	assert.Zero(t, msg.HeaderLength)
}

// Fixed vector computed by hand from the wire formula:
// marker, then 48+2='2', keys 48+1+0='1' and 48+2+1='3', then
// 'A'+1-0='B' and 'B'+2-1='C'.
func TestEncodeFixedVector(t *testing.T) {
	assert.Equal(t, "¤213BC", bwp.Encode("AB", []int{1, 2}))
}

// An empty keystream behaves like nil: a zero-key payload cannot be
// decoded, so Encode falls back to generating one.
func TestEncodeEmptyKeystream(t *testing.T) {
	msg, err := bwp.Decode(bwp.Encode("hello", []int{}))
	require.NoError(t, err)

	assert.True(t, msg.IsEncoded)
	assert.GreaterOrEqual(t, len(msg.Keys), 4)
	assert.Equal(t, "hello", msg.Decoded)
}

func TestDecodeFixedVector(t *testing.T) {
	msg, err := bwp.Decode("¤213BC")
	require.NoError(t, err)

	assert.True(t, msg.IsEncoded)
	assert.Equal(t, []int{1, 2}, msg.Keys)
	assert.Equal(t, 4, msg.HeaderLength)
	assert.Equal(t, "AB", msg.Decoded)
}

// Independently applies the documented formula and checks Encode
// against it.
func TestEncodeMatchesFormula(t *testing.T) {
	text := `7,"com.bodet.test.BWPRequest","java.util.List",0,1,2`
	keys := []int{3, 1, 4, 1, 5}

	want := []rune{0xa4, rune(48 + len(keys))}
	for i, k := range keys {
		want = append(want, rune((48+k+(i%11))&0xffff))
	}

	for i, c := range text {
		want = append(want, rune((int(c)+keys[i%len(keys)]-(i%17))&0xffff))
	}

	assert.Equal(t, string(want), bwp.Encode(text, keys))
}

func TestRoundTrip(t *testing.T) {
	samples := []string{
		"a",
		"hello world",
		`10,"com.bodet.test",0,1,2`,
		strings.Repeat("presence data with umlauts: äöüß ", 40),
		"tabs\tand\nnewlines\r",
	}

	for _, text := range samples {
		for _, keys := range [][]int{{0}, {1, 2, 3}, {14, 0, 7, 9}, {99}} {
			enc := bwp.Encode(text, keys)

			msg, err := bwp.Decode(enc)
			require.NoError(t, err)

			assert.True(t, msg.IsEncoded)
			assert.Equal(t, keys, msg.Keys)
			assert.Equal(t, text, msg.Decoded, "keys %v", keys)
		}
	}
}

func TestRoundTripRandomKeys(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 200; i++ {
		keys := make([]int, 1+rng.IntN(64))
		for j := range keys {
			keys[j] = rng.IntN(100)
		}

		text := randomText(rng, 1+rng.IntN(300))

		msg, err := bwp.Decode(bwp.Encode(text, keys))
		require.NoError(t, err)
		assert.Equal(t, text, msg.Decoded)
	}
}

func TestRoundTripGeneratedKeys(t *testing.T) {
	text := `5,"connect","session",1,2`

	for i := 0; i < 50; i++ {
		enc := bwp.Encode(text, nil)

		msg, err := bwp.Decode(enc)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, len(msg.Keys), 4)
		assert.Less(t, len(msg.Keys), 38)
		assert.Equal(t, text, msg.Decoded)
	}
}

func TestDecodeTruncated(t *testing.T) {
	_, err := bwp.Decode("¤")
	assert.ErrorIs(t, err, bwp.ErrTruncatedHeader)

	// Claims 9 keys but carries none.
	_, err = bwp.Decode("¤9")
	assert.ErrorIs(t, err, bwp.ErrTruncatedHeader)

	// Key count below 1.
	_, err = bwp.Decode("¤/abc")
	assert.ErrorIs(t, err, bwp.ErrBadKeyCount)
}

func randomText(rng *rand.Rand, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteRune(rune(32 + rng.IntN(0x2000)))
	}

	return b.String()
}
