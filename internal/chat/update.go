package chat

import "github.com/lucaprinsss/Participium-sub003/internal/model"

// UpdateKind is the shape of an inbound update.
type UpdateKind int

const (
	UpdateUnknown UpdateKind = iota
	UpdateCommand
	UpdateLocation
	UpdateText
	UpdatePhoto
	UpdateButton
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateCommand:
		return "command"
	case UpdateLocation:
		return "location"
	case UpdateText:
		return "text"
	case UpdatePhoto:
		return "photo"
	case UpdateButton:
		return "button"
	default:
		return "unknown"
	}
}

// Update is a transport-neutral inbound event. Only the fields for Kind are set.
type Update struct {
	ID     int64
	ChatID int64
	Sender Sender
	Kind   UpdateKind

	Command string // without the slash or bot mention
	Args    string
	Text    string

	Location model.Location
	FileID   string

	// Action is nil when the callback data was not recognised.
	Action     Action
	CallbackID string
}
