package telegram

// Kind discriminates the Update variants.
type Kind int

const (
	KindNone Kind = iota
	KindText
	KindLocation
	KindContact
	KindCallbackQuery
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindLocation:
		return "location"
	case KindContact:
		return "contact"
	case KindCallbackQuery:
		return "callback_query"
	default:
		return "none"
	}
}

// Update is one classified event returned by a poll cycle.
// The concrete type is one of None, Text, Location, Contact or CallbackQuery.
type Update interface {
	Kind() Kind
}

// None is returned when there is nothing to handle.
type None struct{}

// Sender is the author of a message or callback query.
type Sender struct {
	ID           int64
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
}

// Chat is the conversation a message belongs to. Group and channel ids need 64 bits.
type Chat struct {
	ID    int64
	Title string
}

// Message holds the fields shared by every message variant.
type Message struct {
	ID     int32
	Sender Sender
	Chat   Chat
	Date   int64
}

type Text struct {
	Message
	Body string
}

type Location struct {
	Message
	Longitude float64
	Latitude  float64
}

type Contact struct {
	Message
	UserID    int64
	FirstName string
	LastName  string
	Phone     string
	VCard     string
}

// OriginMessage is the bot message whose inline button produced a callback query.
type OriginMessage struct {
	ID   int32
	Text string
	Date int64
}

type CallbackQuery struct {
	ID           string
	Data         string
	ChatInstance string
	From         Sender
	Origin       OriginMessage
}

func (None) Kind() Kind          { return KindNone }
func (Text) Kind() Kind          { return KindText }
func (Location) Kind() Kind      { return KindLocation }
func (Contact) Kind() Kind       { return KindContact }
func (CallbackQuery) Kind() Kind { return KindCallbackQuery }

// User describes the bot account as returned by getMe.
type User struct {
	ID           int64
	IsBot        bool
	FirstName    string
	LastName     string
	Username     string
	LanguageCode string
}
