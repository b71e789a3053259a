package app

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/AlexYaroshenko/tgpoll/internal/i18n"
	"github.com/AlexYaroshenko/tgpoll/internal/store"
	"github.com/AlexYaroshenko/tgpoll/internal/telegram"
	"github.com/AlexYaroshenko/tgpoll/internal/textcodec"
)

// Messenger is the part of telegram.Bot the handler replies through.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text, replyMarkup string) error
	EndQuery(ctx context.Context, queryID, text string, alert bool) error
	ParseMode() string
}

var _ Messenger = (*telegram.Bot)(nil)

// Handler reacts to classified updates: it echoes text, acknowledges
// locations and contacts, answers callback queries and keeps the chat
// journal in the store. A nil store disables the journal.
type Handler struct {
	bot   Messenger
	store store.Store
}

func NewHandler(bot Messenger, st store.Store) *Handler {
	return &Handler{bot: bot, store: st}
}

func (h *Handler) Handle(ctx context.Context, upd telegram.Update) error {
	switch u := upd.(type) {
	case telegram.Text:
		return h.handleText(ctx, u)
	case telegram.Location:
		h.record(u.Message, "location", fmt.Sprintf("%f,%f", u.Latitude, u.Longitude))
		lang := i18n.Lang(u.Sender.LanguageCode)
		return h.reply(ctx, u.Chat.ID, fmt.Sprintf(i18n.T(lang, "location"), u.Latitude, u.Longitude))
	case telegram.Contact:
		h.record(u.Message, "contact", u.Phone)
		lang := i18n.Lang(u.Sender.LanguageCode)
		name := strings.TrimSpace(u.FirstName + " " + u.LastName)
		return h.reply(ctx, u.Chat.ID, fmt.Sprintf(i18n.T(lang, "contact"), html.EscapeString(name), html.EscapeString(u.Phone)))
	case telegram.CallbackQuery:
		h.record(telegram.Message{Sender: u.From, Chat: telegram.Chat{ID: u.From.ID}}, "callback_query", u.Data)
		lang := i18n.Lang(u.From.LanguageCode)
		return h.bot.EndQuery(ctx, u.ID, fmt.Sprintf(i18n.T(lang, "query_answered"), u.Data), false)
	default:
		return nil
	}
}

func (h *Handler) handleText(ctx context.Context, u telegram.Text) error {
	lang := i18n.Lang(u.Sender.LanguageCode)
	cmd := strings.Fields(u.Body)

	if len(cmd) > 0 && cmd[0] == "/stop" {
		if h.store != nil {
			if err := h.store.DeactivateChat(u.Chat.ID); err != nil {
				log.Printf("deactivate chat %d: %v", u.Chat.ID, err)
			}
		}
		return h.reply(ctx, u.Chat.ID, i18n.T(lang, "goodbye"))
	}

	if len(cmd) > 0 && cmd[0] == "/history" {
		// summarized before recording, so the command itself is not counted
		text := h.history(u.Chat.ID, lang)
		h.record(u.Message, "text", u.Body)
		return h.reply(ctx, u.Chat.ID, text)
	}

	h.record(u.Message, "text", u.Body)

	if len(cmd) > 0 && cmd[0] == "/start" {
		name := html.EscapeString(telegram.FormatUserName(u.Sender))
		return h.reply(ctx, u.Chat.ID, fmt.Sprintf(i18n.T(lang, "welcome"), name))
	}
	return h.reply(ctx, u.Chat.ID, html.EscapeString(u.Body))
}

// history summarizes what the store holds for chatID.
func (h *Handler) history(chatID int64, lang string) string {
	if h.store == nil {
		return i18n.T(lang, "history_none")
	}
	c, err := h.store.GetChat(chatID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("get chat %d: %v", chatID, err)
		}
		return i18n.T(lang, "history_none")
	}
	events, err := h.store.ListEventsByChat(chatID)
	if err != nil || len(events) == 0 {
		if err != nil {
			log.Printf("list events for chat %d: %v", chatID, err)
		}
		return i18n.T(lang, "history_none")
	}
	last := events[len(events)-1]
	return fmt.Sprintf(i18n.T(lang, "history"),
		c.CreatedAt.Format("2006-01-02"), len(events), html.EscapeString(last.Kind))
}

// Subscribers returns the ids of the active chats in the store.
func (h *Handler) Subscribers() ([]int64, error) {
	if h.store == nil {
		return nil, nil
	}
	chats, err := h.store.ListChats()
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(chats))
	for _, c := range chats {
		ids = append(ids, c.ChatID)
	}
	return ids, nil
}

// reply sends HTML-formatted text, flattened to plain text unless the bot
// sends with parse_mode=HTML.
func (h *Handler) reply(ctx context.Context, chatID int64, text string) error {
	if !strings.EqualFold(h.bot.ParseMode(), "HTML") {
		plain, err := textcodec.StripHTML(text)
		if err != nil {
			return fmt.Errorf("strip html: %w", err)
		}
		text = plain
	}
	return h.bot.SendMessage(ctx, chatID, text, "")
}

func (h *Handler) record(m telegram.Message, kind, payload string) {
	if h.store == nil || m.Chat.ID == 0 {
		return
	}
	c := store.Chat{
		ChatID:    m.Chat.ID,
		Title:     m.Chat.Title,
		Username:  m.Sender.Username,
		FirstName: m.Sender.FirstName,
		LastName:  m.Sender.LastName,
		Language:  i18n.Lang(m.Sender.LanguageCode),
	}
	if err := h.store.UpsertChat(c); err != nil {
		log.Printf("store chat %d: %v", m.Chat.ID, err)
		return
	}
	if _, err := h.store.AddEvent(store.Event{ChatID: m.Chat.ID, Kind: kind, Payload: payload}); err != nil {
		log.Printf("store event for chat %d: %v", m.Chat.ID, err)
	}
}
