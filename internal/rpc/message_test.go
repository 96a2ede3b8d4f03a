package rpc_test

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christophergoltz/elogio-sub001/internal/rpc"
)

func TestTokenizeStringTable(t *testing.T) {
	body := `3,"com.bodet.bwt.kernel.shared.requete.RequeteBWT","session-1","connecter",7,0,2,3`

	msg, err := rpc.Tokenize(body)
	require.NoError(t, err)

	want := []string{
		"com.bodet.bwt.kernel.shared.requete.RequeteBWT",
		"session-1",
		"connecter",
	}

	if diff := cmp.Diff(want, msg.StringTable); diff != "" {
		t.Errorf("string table mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, msg.DataTokens, 4)
	assert.True(t, msg.DataTokens[0].IsInt(7))
	assert.True(t, msg.DataTokens[3].IsInt(3))
}

// The declared count is an upper bound: the table stops at the first
// non-string token.
func TestTokenizeTableStopsAtNonString(t *testing.T) {
	body := `5,"a","b",42,"not-table",1`

	msg, err := rpc.Tokenize(body)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, msg.StringTable)
	require.Len(t, msg.DataTokens, 3)
	assert.True(t, msg.DataTokens[0].IsInt(42))
	assert.Equal(t, rpc.KindString, msg.DataTokens[1].Kind)
	assert.Equal(t, "not-table", msg.DataTokens[1].Text)
}

func TestTokenizeEscapes(t *testing.T) {
	body := `1,"quote \" slash \\ n \n r \r t \t",0`

	msg, err := rpc.Tokenize(body)
	require.NoError(t, err)

	assert.Equal(t, "quote \" slash \\ n \n r \r t \t", msg.GetString(1))
}

func TestTokenizeClassification(t *testing.T) {
	body := `0,12,-5,3.25,-0.5,ident,x2y`

	msg, err := rpc.Tokenize(body)
	require.NoError(t, err)
	assert.Empty(t, msg.StringTable)

	kinds := make([]rpc.TokenKind, 0, len(msg.DataTokens))
	for _, tok := range msg.DataTokens {
		kinds = append(kinds, tok.Kind)
	}

	assert.Equal(t, []rpc.TokenKind{
		rpc.KindInteger, rpc.KindInteger,
		rpc.KindFloat, rpc.KindFloat,
		rpc.KindIdentifier, rpc.KindIdentifier,
	}, kinds)

	assert.Equal(t, int64(-5), msg.DataTokens[1].Int)
	assert.Equal(t, 3.25, msg.DataTokens[2].Float)
}

// Tokenizer invariant: N strings in, N table entries out, data tokens
// in original order.
func TestTokenizeInvariant(t *testing.T) {
	for n := 0; n <= 8; n++ {
		body := fmt.Sprintf("%d", n)
		for i := 0; i < n; i++ {
			body += fmt.Sprintf(`,"s%d"`, i+1)
		}

		body += ",10,20,30"

		msg, err := rpc.Tokenize(body)
		require.NoError(t, err)

		assert.Len(t, msg.StringTable, n)
		require.Len(t, msg.DataTokens, 3)

		for i, want := range []int64{10, 20, 30} {
			assert.True(t, msg.DataTokens[i].IsInt(want))
		}
	}
}

func TestTokenizeErrors(t *testing.T) {
	_, err := rpc.Tokenize("")
	assert.ErrorIs(t, err, rpc.ErrEmptyBody)

	_, err = rpc.Tokenize(`"starts","with","strings"`)
	assert.ErrorIs(t, err, rpc.ErrNoTableCount)

	_, err = rpc.Tokenize(`-1,"a"`)
	assert.ErrorIs(t, err, rpc.ErrNegativeCount)

	_, err = rpc.Tokenize(`1,"unterminated`)
	assert.ErrorIs(t, err, rpc.ErrUnterminated)

	_, err = rpc.Tokenize(`1,"bad \q escape"`)
	assert.ErrorIs(t, err, rpc.ErrBadEscape)
}

func TestEnvelopeQueries(t *testing.T) {
	req, err := rpc.Tokenize(`4,"com.bodet.bwt.kernel.shared.requete.RequeteBWT","sid","x","y",1`)
	require.NoError(t, err)
	assert.True(t, req.IsRequest())
	assert.False(t, req.IsResponse())

	resp, err := rpc.Tokenize(`3,"com.bodet.bwt.kernel.shared.reponse.ReponseBWT","sid","com.bodet.ReponseSemaine",1`)
	require.NoError(t, err)
	assert.True(t, resp.IsResponse())
	assert.Equal(t, "com.bodet.ReponseSemaine", resp.ResponseType())

	assert.Equal(t, "", resp.GetString(0))
	assert.Equal(t, "", resp.GetString(9))
	assert.Equal(t, "sid", resp.GetString(2))

	exc, err := rpc.Tokenize(`2,"com.bodet.bwt.kernel.shared.reponse.ReponseBWT","com.bodet.bwt.kernel.shared.exception.ExceptionBWT",0`)
	require.NoError(t, err)
	assert.True(t, exc.HasException())
	assert.False(t, resp.HasException())
}
