package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransportSend(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		if r.URL.Query().Get("chat_id") == "0" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
			return
		}
		w.Write([]byte(`{"ok":true,"result":[]}`))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(srv.URL+"/", "123:abc", time.Second)

	body, err := tr.Send(context.Background(), "getUpdates", "?limit=1&offset=6")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true,"result":[]}`, body)
	assert.Equal(t, "/bot123:abc/getUpdates", gotPath)
	assert.Equal(t, "limit=1&offset=6", gotQuery)

	body, err = tr.Send(context.Background(), "sendMessage", "?chat_id=0&text=hi")
	require.NoError(t, err)
	_, err = Guard(body)
	assert.ErrorIs(t, err, ErrAPIRejected)
}

func TestHTTPTransportUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	bot := NewBot(NewHTTPTransport(url, "t", time.Second))
	upd, err := bot.Poll(context.Background())
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.Equal(t, None{}, upd)
}

func TestNewHTTPTransportDefaults(t *testing.T) {
	tr := NewHTTPTransport("", "t", 0)
	assert.Equal(t, DefaultAPIURL, tr.apiURL)
	assert.Equal(t, 15*time.Second, tr.client.Timeout)
}
