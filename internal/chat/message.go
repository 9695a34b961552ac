package chat

import "context"

// Message is an outbound chat message. At most one of ReplyKeyboard and
// InlineKeyboard is set.
type Message struct {
	Text           string
	ReplyKeyboard  *ReplyKeyboard
	InlineKeyboard [][]Button
	// RemoveKeyboard hides a reply keyboard left over from an earlier message.
	RemoveKeyboard bool
}

// ReplyKeyboard is a one-shot keyboard shown instead of the text input.
type ReplyKeyboard struct {
	Buttons []ReplyButton
}

type ReplyButton struct {
	Text            string
	RequestLocation bool
}

// Button is an inline button carrying an Action.
type Button struct {
	Label  string
	Action Action
}

// Text returns a plain message.
func Text(text string) Message {
	return Message{Text: text}
}

// Replier sends messages to a chat.
type Replier interface {
	Send(ctx context.Context, chatID int64, msg Message) error
}

// Sender identifies who wrote an update.
type Sender struct {
	Username   string // empty when the Telegram user has no @username
	TelegramID int64
}

// Conversation is the explicit context every handler receives.
type Conversation struct {
	ChatID int64
	Sender Sender
	Reply  Replier
}

// Send replies in the conversation's chat.
func (c Conversation) Send(ctx context.Context, msg Message) error {
	return c.Reply.Send(ctx, c.ChatID, msg)
}
