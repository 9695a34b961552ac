package model

// Account is a Participium user as seen from Telegram.
type Account struct {
	UserID           int64
	Username         string
	TelegramUsername string
	Confirmed        bool // the Telegram username was verified with a link code
}

// LinkResult is the outcome of a link or unlink request.
type LinkResult struct {
	Success bool
	Message string
}
