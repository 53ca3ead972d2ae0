package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendParameters(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte(`{"status": true}`))
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, "secret-key")
	err := g.Send(context.Background(), "6281234567890", "halo pengawas")
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/api/send-message", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "secret-key", q.Get("apikey"))
	assert.Equal(t, "6281234567890", q.Get("receiver"))
	assert.Equal(t, "text", q.Get("mtype"))
	assert.Equal(t, "halo pengawas", q.Get("text"))
	assert.Equal(t, "3000", q.Get("duration"))
}

func TestSendRejectedByGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": false, "reason": "invalid api key"}`))
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, "bad-key")
	err := g.Send(context.Background(), "6281234567890", "halo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestSendHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, "key")
	assert.Error(t, g.Send(context.Background(), "628", "halo"))
}

func TestSendWithoutAPIKey(t *testing.T) {
	g := NewGateway("http://unused", "")
	assert.Error(t, g.Send(context.Background(), "628", "halo"))
}

func TestFormatPhone(t *testing.T) {
	cases := []struct{ in, want string }{
		{"081234567890", "6281234567890"},
		{"6281234567890", "6281234567890"},
		{"+62 812-3456-7890", "6281234567890"},
		{"0812 3456 7890", "6281234567890"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatPhone(c.in), c.in)
	}
}
