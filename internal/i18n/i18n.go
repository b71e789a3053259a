package i18n

import (
	"net/http"
	"strings"
)

// Supported languages: English (en), German (de), French (fr), Spanish (es), Italian (it)
var supported = map[string]map[string]string{
	"en": {
		"welcome":        "👋 Hi %s! Send me some text, a location or a contact and I will echo it back. Send /stop to unsubscribe.",
		"goodbye":        "🛑 Unsubscribed. Send /start to come back.",
		"location":       "📍 <b>Location</b>: lat %.6f, lon %.6f",
		"contact":        "👤 <b>Contact</b>: %s, %s",
		"query_answered": "✅ Got it: %s",
		"status_title":   "Bot status",
		"status_offset":  "Next update offset",
		"status_last":    "Last update",
		"status_handled": "Updates handled",
		"status_never":   "never",
		"history":        "🗂 Since %s you sent %d updates. Last one: %s",
		"history_none":   "🗂 No history yet.",
	},
	"de": {
		"welcome":        "👋 Hallo %s! Schick mir Text, einen Standort oder einen Kontakt und ich schicke es zurück. Sende /stop zum Abmelden.",
		"goodbye":        "🛑 Abgemeldet. Sende /start, um zurückzukommen.",
		"location":       "📍 <b>Standort</b>: Breite %.6f, Länge %.6f",
		"contact":        "👤 <b>Kontakt</b>: %s, %s",
		"query_answered": "✅ Erhalten: %s",
		"status_title":   "Bot-Status",
		"status_offset":  "Nächster Update-Offset",
		"status_last":    "Letztes Update",
		"status_handled": "Verarbeitete Updates",
		"status_never":   "nie",
		"history":        "🗂 Seit %s hast du %d Updates geschickt. Zuletzt: %s",
		"history_none":   "🗂 Noch kein Verlauf.",
	},
	"fr": {
		"welcome":        "👋 Bonjour %s ! Envoyez-moi du texte, une position ou un contact et je vous le renvoie. Envoyez /stop pour vous désabonner.",
		"goodbye":        "🛑 Désabonné. Envoyez /start pour revenir.",
		"location":       "📍 <b>Position</b> : lat %.6f, lon %.6f",
		"contact":        "👤 <b>Contact</b> : %s, %s",
		"query_answered": "✅ Reçu : %s",
		"status_title":   "État du bot",
		"status_offset":  "Prochain offset",
		"status_last":    "Dernière mise à jour",
		"status_handled": "Mises à jour traitées",
		"status_never":   "jamais",
		"history":        "🗂 Depuis le %s, vous avez envoyé %d mises à jour. Dernière : %s",
		"history_none":   "🗂 Pas encore d'historique.",
	},
	"es": {
		"welcome":        "👋 ¡Hola %s! Envíame texto, una ubicación o un contacto y te lo devolveré. Envía /stop para darte de baja.",
		"goodbye":        "🛑 Baja confirmada. Envía /start para volver.",
		"location":       "📍 <b>Ubicación</b>: lat %.6f, lon %.6f",
		"contact":        "👤 <b>Contacto</b>: %s, %s",
		"query_answered": "✅ Recibido: %s",
		"status_title":   "Estado del bot",
		"status_offset":  "Siguiente offset",
		"status_last":    "Última actualización",
		"status_handled": "Actualizaciones procesadas",
		"status_never":   "nunca",
		"history":        "🗂 Desde %s enviaste %d actualizaciones. La última: %s",
		"history_none":   "🗂 Todavía no hay historial.",
	},
	"it": {
		"welcome":        "👋 Ciao %s! Inviami testo, una posizione o un contatto e te lo rimando. Invia /stop per disiscriverti.",
		"goodbye":        "🛑 Disiscritto. Invia /start per tornare.",
		"location":       "📍 <b>Posizione</b>: lat %.6f, lon %.6f",
		"contact":        "👤 <b>Contatto</b>: %s, %s",
		"query_answered": "✅ Ricevuto: %s",
		"status_title":   "Stato del bot",
		"status_offset":  "Prossimo offset",
		"status_last":    "Ultimo aggiornamento",
		"status_handled": "Aggiornamenti gestiti",
		"status_never":   "mai",
		"history":        "🗂 Dal %s hai inviato %d aggiornamenti. L'ultimo: %s",
		"history_none":   "🗂 Ancora nessuna cronologia.",
	},
}

func T(lang, key string) string {
	if m, ok := supported[lang]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := supported["en"][key]; ok {
		return v
	}
	return key
}

// Lang maps a Telegram language_code such as "de-AT" to a supported language.
func Lang(code string) string {
	code = normalize(code)
	if _, ok := supported[code]; ok {
		return code
	}
	return "en"
}

func DetectLang(r *http.Request) string {
	// order: query param -> cookie -> header -> default
	if v := r.URL.Query().Get("lang"); v != "" {
		return Lang(v)
	}
	if c, err := r.Cookie("lang"); err == nil && c != nil {
		return Lang(c.Value)
	}
	al := r.Header.Get("Accept-Language")
	if al != "" {
		for _, part := range strings.Split(al, ",") {
			code := strings.TrimSpace(strings.Split(part, ";")[0])
			code = normalize(code)
			if _, ok := supported[code]; ok {
				return code
			}
		}
	}
	return "en"
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) >= 2 {
		s = s[:2]
	}
	return s
}
