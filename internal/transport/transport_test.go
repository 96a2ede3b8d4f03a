package transport_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christophergoltz/elogio-sub001/internal/transport"
)

func newTestClient() *transport.Client {
	return transport.NewClient(transport.ChromeProfile(), 5*time.Second, nil)
}

func TestGetThreadsCookiesAndHeaders(t *testing.T) {
	var gotCookie, gotAgent string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotAgent = r.Header.Get("User-Agent")

		w.Header().Set("Set-Cookie", "JSESSIONID=abc123; Path=/; HttpOnly")
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	res, err := newTestClient().Get(context.Background(), srv.URL, "JSESSIONID=old")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "hello", res.Body)
	assert.Equal(t, "JSESSIONID=old", gotCookie)
	assert.Contains(t, gotAgent, "Chrome")
	assert.Equal(t, "JSESSIONID=abc123", res.SetCookie())
}

func TestRedirectsAreNotFollowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/homepage", http.StatusFound)
	}))
	defer srv.Close()

	res, err := newTestClient().Get(context.Background(), srv.URL, "")
	require.NoError(t, err)

	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/homepage", res.Header("Location"))
}

func TestPostRawIsByteExact(t *testing.T) {
	// Obfuscated payloads contain multi-byte runes; the server must see
	// them unmodified.
	payload := []byte("¤2RequeteBWT‱⁄")

	var received []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received, _ = io.ReadAll(r.Body)

		assert.Equal(t, transport.ContentTypeBWP, r.Header.Get("Content-Type"))
	}))
	defer srv.Close()

	headers := map[string]string{"Content-Type": transport.ContentTypeBWP}

	_, err := newTestClient().PostRaw(context.Background(), srv.URL, payload, headers, "")
	require.NoError(t, err)

	assert.Equal(t, payload, received)
}

func TestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient().Get(ctx, srv.URL, "")
	assert.Error(t, err)
}
