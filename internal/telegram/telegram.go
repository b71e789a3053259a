package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/AlexYaroshenko/tgpoll/internal/textcodec"
)

// Bot drives the Bot API over a Transport. It owns the poll cursor, so one
// Bot is one independent session. Calls are synchronous and a Bot must not
// be polled from more than one goroutine at a time.
type Bot struct {
	transport   Transport
	cursor      Cursor
	utf8Enabled bool
	parseMode   string
}

func NewBot(t Transport) *Bot {
	return &Bot{transport: t}
}

// EnableUTF8Encoding toggles rewriting of \uXXXX escapes in polled responses.
func (b *Bot) EnableUTF8Encoding(v bool) { b.utf8Enabled = v }

// SetParseMode sets the parse_mode sent with messages ("" for plain text).
func (b *Bot) SetParseMode(mode string) { b.parseMode = mode }

func (b *Bot) ParseMode() string { return b.parseMode }

// Offset returns the current poll cursor.
func (b *Bot) Offset() int64 { return b.cursor.Offset() }

// Poll fetches at most one pending update. Failures come back as None
// together with an error; an update of an unsupported kind is None with a
// nil error.
func (b *Bot) Poll(ctx context.Context) (Update, error) {
	raw, err := b.transport.Send(ctx, "getUpdates", b.cursor.NextPollParameters())
	if err != nil || raw == "" {
		log.Warnf("getUpdates error: response with no data")
		return None{}, joinEmpty("getUpdates", err)
	}

	if b.utf8Enabled {
		// A decoded quote or control byte breaks the document; keep the
		// escaped form then, so the update can still be read and skipped.
		if decoded := textcodec.ToUTF8(raw); gjson.Valid(decoded) {
			raw = decoded
		} else {
			log.Debugf("getUpdates: decoded response is not valid JSON, keeping escapes")
		}
	}

	tree, err := Guard(raw)
	if err != nil {
		logRejected("getUpdates", raw, err)
		return None{}, fmt.Errorf("getUpdates: %w", err)
	}
	log.Debugf("getUpdates JSON: %s", tree.Raw)

	return Classify(tree, &b.cursor), nil
}

// SendMessage sends text to chatID. replyMarkup is a caller-built keyboard
// JSON document and may be empty.
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text, replyMarkup string) error {
	if len(text) == 0 {
		return ErrEmptyText
	}

	params := "?chat_id=" + strconv.FormatInt(chatID, 10) + "&text=" + textcodec.EncodeMessage(text)
	if b.parseMode != "" {
		params += "&parse_mode=" + textcodec.EncodeMessage(b.parseMode)
	}
	if replyMarkup != "" {
		params += "&reply_markup=" + textcodec.EncodeMessage(replyMarkup)
	}

	_, err := b.call(ctx, "sendMessage", params)
	return err
}

// EndQuery answers a callback query, optionally showing text to the user as
// a notification or, with alert set, as a modal alert.
func (b *Bot) EndQuery(ctx context.Context, queryID, text string, alert bool) error {
	if len(queryID) == 0 {
		return ErrEmptyQueryID
	}

	params := "?callback_query_id=" + textcodec.EncodeMessage(queryID)
	if text != "" {
		params += "&text=" + textcodec.EncodeMessage(text) + "&show_alert=" + strconv.FormatBool(alert)
	}

	_, err := b.call(ctx, "answerCallbackQuery", params)
	return err
}

// GetMe returns the bot's own account.
func (b *Bot) GetMe(ctx context.Context) (User, error) {
	tree, err := b.call(ctx, "getMe", "")
	if err != nil {
		return User{}, err
	}
	r := tree.Get("result")
	return User{
		ID:           r.Get("id").Int(),
		IsBot:        r.Get("is_bot").Bool(),
		FirstName:    r.Get("first_name").String(),
		LastName:     r.Get("last_name").String(),
		Username:     r.Get("username").String(),
		LanguageCode: r.Get("language_code").String(),
	}, nil
}

// TestConnection reports whether getMe succeeds.
func (b *Bot) TestConnection(ctx context.Context) bool {
	_, err := b.GetMe(ctx)
	return err == nil
}

func (b *Bot) call(ctx context.Context, method, params string) (gjson.Result, error) {
	raw, err := b.transport.Send(ctx, method, params)
	if err != nil || raw == "" {
		log.Warnf("%s error: response with no data", method)
		return gjson.Result{}, joinEmpty(method, err)
	}

	tree, err := Guard(raw)
	if err != nil {
		logRejected(method, raw, err)
		return gjson.Result{}, fmt.Errorf("%s: %w", method, err)
	}
	log.Debugf("%s JSON: %s", method, tree.Raw)
	return tree, nil
}

func joinEmpty(method string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", method, ErrEmptyResponse)
	}
	return fmt.Errorf("%s: %w: %w", method, ErrEmptyResponse, err)
}

func logRejected(method, raw string, err error) {
	if errors.Is(err, ErrAPIRejected) {
		log.WithField("response", raw).Warnf("%s error: %v", method, err)
		return
	}
	log.Warnf("%s error: %v", method, err)
}

// FormatUserName renders a sender for display: @username, else the full name.
func FormatUserName(s Sender) string {
	if s.Username != "" {
		return "@" + s.Username
	}
	if s.FirstName != "" {
		if s.LastName != "" {
			return fmt.Sprintf("%s %s", s.FirstName, s.LastName)
		}
		return s.FirstName
	}
	return "Unknown"
}
