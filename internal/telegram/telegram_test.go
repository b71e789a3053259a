package telegram

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	method string
	query  string
}

// fakeTransport replays canned responses in order and records every call.
type fakeTransport struct {
	responses []string
	err       error
	calls     []call
}

func (f *fakeTransport) Send(ctx context.Context, method, query string) (string, error) {
	f.calls = append(f.calls, call{method: method, query: query})
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", nil
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func queryValues(t *testing.T, q string) url.Values {
	t.Helper()
	v, err := url.ParseQuery(strings.TrimPrefix(q, "?"))
	require.NoError(t, err)
	return v
}

func TestBotPollAdvancesCursor(t *testing.T) {
	ft := &fakeTransport{responses: []string{
		`{"ok":true,"result":[{"update_id":5,"message":{"message_id":1,"from":{"id":9},"chat":{"id":100},"date":1000,"text":"hi"}}]}`,
		`{"ok":true,"result":[]}`,
	}}
	bot := NewBot(ft)
	ctx := context.Background()

	upd, err := bot.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, KindText, upd.Kind())
	assert.Equal(t, int64(6), bot.Offset())

	upd, err = bot.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, None{}, upd)
	assert.Equal(t, int64(6), bot.Offset())

	require.Len(t, ft.calls, 2)
	assert.Equal(t, "getUpdates", ft.calls[0].method)
	assert.NotContains(t, ft.calls[0].query, "offset")
	assert.Contains(t, ft.calls[1].query, "&offset=6")
}

func TestBotPollFailures(t *testing.T) {
	tests := []struct {
		name    string
		ft      *fakeTransport
		wantErr error
	}{
		{name: "empty response", ft: &fakeTransport{responses: []string{""}}, wantErr: ErrEmptyResponse},
		{name: "transport error", ft: &fakeTransport{err: errors.New("connection refused")}, wantErr: ErrEmptyResponse},
		{name: "malformed", ft: &fakeTransport{responses: []string{"not json"}}, wantErr: ErrMalformedResponse},
		{name: "api rejected", ft: &fakeTransport{responses: []string{`{"ok":false}`}}, wantErr: ErrAPIRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot := NewBot(tt.ft)
			bot.cursor.Advance(9)

			upd, err := bot.Poll(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, None{}, upd)
			assert.Equal(t, int64(10), bot.Offset())
		})
	}
}

func TestBotPollUTF8(t *testing.T) {
	// the \u escape is built at runtime so the JSON carries the literal escape
	raw := `{"ok":true,"result":[{"update_id":1,"message":{"message_id":1,"chat":{"id":1},"text":"caf` + "\\" + `u00e9"}}]}`

	t.Run("disabled", func(t *testing.T) {
		bot := NewBot(&fakeTransport{responses: []string{raw}})
		upd, err := bot.Poll(context.Background())
		require.NoError(t, err)
		// gjson decodes the escape itself
		assert.Equal(t, "café", upd.(Text).Body)
	})

	t.Run("enabled", func(t *testing.T) {
		bot := NewBot(&fakeTransport{responses: []string{raw}})
		bot.EnableUTF8Encoding(true)
		upd, err := bot.Poll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "café", upd.(Text).Body)
	})
}

func TestBotPollUTF8BreaksJSON(t *testing.T) {
	tests := []struct {
		name string
		esc  string
		want string
	}{
		{name: "control byte", esc: "0001", want: "a\x01b"},
		{name: "quote", esc: "0022", want: `a"b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{"ok":true,"result":[{"update_id":5,"message":{"message_id":1,"chat":{"id":100},"text":"a` + "\\" + `u` + tt.esc + `b"}}]}`
			bot := NewBot(&fakeTransport{responses: []string{raw}})
			bot.EnableUTF8Encoding(true)

			upd, err := bot.Poll(context.Background())
			require.NoError(t, err)
			require.Equal(t, KindText, upd.Kind())
			assert.Equal(t, tt.want, upd.(Text).Body)
			assert.Equal(t, int64(6), bot.Offset())
		})
	}
}

func TestBotSendMessage(t *testing.T) {
	ft := &fakeTransport{responses: []string{`{"ok":true,"result":{"message_id":7}}`}}
	bot := NewBot(ft)
	bot.SetParseMode("HTML")

	err := bot.SendMessage(context.Background(), -1001234567890, "hello & <b>bye</b>", `{"remove_keyboard":true}`)
	require.NoError(t, err)

	require.Len(t, ft.calls, 1)
	assert.Equal(t, "sendMessage", ft.calls[0].method)
	v := queryValues(t, ft.calls[0].query)
	assert.Equal(t, "-1001234567890", v.Get("chat_id"))
	assert.Equal(t, "hello & <b>bye</b>", v.Get("text"))
	assert.Equal(t, "HTML", v.Get("parse_mode"))
	assert.Equal(t, `{"remove_keyboard":true}`, v.Get("reply_markup"))
}

func TestBotSendMessageEmptyText(t *testing.T) {
	ft := &fakeTransport{}
	bot := NewBot(ft)

	err := bot.SendMessage(context.Background(), 1, "", "")
	assert.ErrorIs(t, err, ErrEmptyText)
	assert.Empty(t, ft.calls)
}

func TestBotSendMessageRejected(t *testing.T) {
	ft := &fakeTransport{responses: []string{`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`}}
	bot := NewBot(ft)

	err := bot.SendMessage(context.Background(), 1, "hi", "")
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, int64(400), apiErr.Code)
	assert.NotContains(t, ft.calls[0].query, "parse_mode")
	assert.NotContains(t, ft.calls[0].query, "reply_markup")
}

func TestBotEndQuery(t *testing.T) {
	tests := []struct {
		name      string
		queryID   string
		text      string
		alert     bool
		wantCall  bool
		wantText  string
		wantAlert string
		wantErr   error
	}{
		{name: "empty id", queryID: "", text: "x", wantErr: ErrEmptyQueryID},
		{name: "no text", queryID: "q1", wantCall: true},
		{name: "toast", queryID: "q1", text: "done!", wantCall: true, wantText: "done!", wantAlert: "false"},
		{name: "alert", queryID: "q1", text: "careful", alert: true, wantCall: true, wantText: "careful", wantAlert: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTransport{responses: []string{`{"ok":true,"result":true}`}}
			bot := NewBot(ft)

			err := bot.EndQuery(context.Background(), tt.queryID, tt.text, tt.alert)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, ft.calls)
				return
			}
			require.NoError(t, err)
			require.Len(t, ft.calls, 1)
			assert.Equal(t, "answerCallbackQuery", ft.calls[0].method)
			v := queryValues(t, ft.calls[0].query)
			assert.Equal(t, tt.queryID, v.Get("callback_query_id"))
			assert.Equal(t, tt.wantText, v.Get("text"))
			assert.Equal(t, tt.wantAlert, v.Get("show_alert"))
		})
	}
}

func TestBotGetMe(t *testing.T) {
	ft := &fakeTransport{responses: []string{
		`{"ok":true,"result":{"id":123456,"is_bot":true,"first_name":"Echo","username":"echo_bot"}}`,
	}}
	bot := NewBot(ft)

	me, err := bot.GetMe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, User{ID: 123456, IsBot: true, FirstName: "Echo", Username: "echo_bot"}, me)
	assert.Equal(t, "getMe", ft.calls[0].method)
	assert.Equal(t, "", ft.calls[0].query)
}

func TestBotTestConnection(t *testing.T) {
	assert.True(t, NewBot(&fakeTransport{responses: []string{`{"ok":true,"result":{"id":1}}`}}).TestConnection(context.Background()))
	assert.False(t, NewBot(&fakeTransport{responses: []string{`{"ok":false}`}}).TestConnection(context.Background()))
	assert.False(t, NewBot(&fakeTransport{}).TestConnection(context.Background()))
}

func TestFormatUserName(t *testing.T) {
	assert.Equal(t, "@ada", FormatUserName(Sender{Username: "ada", FirstName: "Ada"}))
	assert.Equal(t, "Ada Lovelace", FormatUserName(Sender{FirstName: "Ada", LastName: "Lovelace"}))
	assert.Equal(t, "Ada", FormatUserName(Sender{FirstName: "Ada"}))
	assert.Equal(t, "Unknown", FormatUserName(Sender{}))
}
