package telegram

import "github.com/tidwall/gjson"

// Classify turns the first update of a validated getUpdates response into
// a typed Update and advances the cursor past it.
//
// The cursor advances for every update carrying a non-zero id, whether or
// not its content is recognized, so an unsupported update is never
// redelivered.
func Classify(tree gjson.Result, cur *Cursor) Update {
	upd := tree.Get("result.0")

	updateID := upd.Get("update_id").Int()
	if updateID == 0 {
		return None{}
	}
	cur.Advance(updateID)

	if present(upd.Get("callback_query.id")) {
		return callbackQuery(upd.Get("callback_query"))
	}
	if present(upd.Get("message.message_id")) {
		return message(upd.Get("message"))
	}
	return None{}
}

func callbackQuery(q gjson.Result) CallbackQuery {
	origin := q.Get("message")
	return CallbackQuery{
		ID:           q.Get("id").String(),
		Data:         q.Get("data").String(),
		ChatInstance: q.Get("chat_instance").String(),
		From:         sender(q.Get("from")),
		Origin: OriginMessage{
			ID:   int32(origin.Get("message_id").Int()),
			Text: origin.Get("text").String(),
			Date: origin.Get("date").Int(),
		},
	}
}

func message(m gjson.Result) Update {
	header := Message{
		ID:     int32(m.Get("message_id").Int()),
		Sender: sender(m.Get("from")),
		Chat: Chat{
			ID:    m.Get("chat.id").Int(),
			Title: m.Get("chat.title").String(),
		},
		Date: m.Get("date").Int(),
	}

	switch {
	case present(m.Get("text")):
		return Text{Message: header, Body: m.Get("text").String()}
	case present(m.Get("location")):
		loc := m.Get("location")
		return Location{
			Message:   header,
			Longitude: loc.Get("longitude").Float(),
			Latitude:  loc.Get("latitude").Float(),
		}
	case present(m.Get("contact")):
		c := m.Get("contact")
		return Contact{
			Message:   header,
			UserID:    c.Get("user_id").Int(),
			FirstName: c.Get("first_name").String(),
			LastName:  c.Get("last_name").String(),
			Phone:     c.Get("phone_number").String(),
			VCard:     c.Get("vcard").String(),
		}
	}
	return None{}
}

func sender(from gjson.Result) Sender {
	return Sender{
		ID:           from.Get("id").Int(),
		Username:     from.Get("username").String(),
		FirstName:    from.Get("first_name").String(),
		LastName:     from.Get("last_name").String(),
		LanguageCode: from.Get("language_code").String(),
	}
}

// present reports whether the path exists and is not JSON null.
func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}
