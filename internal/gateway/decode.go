package gateway

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lucaprinsss/Participium-sub003/internal/chat"
	"github.com/lucaprinsss/Participium-sub003/internal/model"
)

// Decode turns a raw Telegram update into a chat.Update. It returns false for
// updates the bot does not handle (edits, channel posts, stickers...).
func Decode(u tgbotapi.Update) (chat.Update, bool) {
	if cq := u.CallbackQuery; cq != nil {
		if cq.Message == nil || cq.Message.Chat == nil {
			return chat.Update{}, false
		}
		out := chat.Update{
			ID:         int64(u.UpdateID),
			ChatID:     cq.Message.Chat.ID,
			Sender:     sender(cq.From),
			Kind:       chat.UpdateButton,
			CallbackID: cq.ID,
		}
		if a, err := chat.DecodeAction(cq.Data); err == nil {
			out.Action = a
		}
		return out, true
	}

	m := u.Message
	if m == nil || m.Chat == nil {
		return chat.Update{}, false
	}
	out := chat.Update{
		ID:     int64(u.UpdateID),
		ChatID: m.Chat.ID,
		Sender: sender(m.From),
	}

	switch {
	case m.IsCommand():
		out.Kind = chat.UpdateCommand
		out.Command = strings.ToLower(m.Command())
		out.Args = strings.TrimSpace(m.CommandArguments())
	case m.Location != nil:
		out.Kind = chat.UpdateLocation
		out.Location = model.Location{Latitude: m.Location.Latitude, Longitude: m.Location.Longitude}
	case len(m.Photo) > 0:
		out.Kind = chat.UpdatePhoto
		out.FileID = largest(m.Photo).FileID
	case m.Document != nil && strings.HasPrefix(m.Document.MimeType, "image/"):
		// photos sent "as file" keep their original quality
		out.Kind = chat.UpdatePhoto
		out.FileID = m.Document.FileID
	case m.Text != "":
		out.Kind = chat.UpdateText
		out.Text = m.Text
	default:
		return chat.Update{}, false
	}
	return out, true
}

func sender(u *tgbotapi.User) chat.Sender {
	if u == nil {
		return chat.Sender{}
	}
	return chat.Sender{Username: u.UserName, TelegramID: u.ID}
}

// largest picks the biggest rendition Telegram offers for a photo.
func largest(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := sizes[0]
	for _, s := range sizes[1:] {
		if s.Width*s.Height > best.Width*best.Height {
			best = s
		}
	}
	return best
}
