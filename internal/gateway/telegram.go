package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lucaprinsss/Participium-sub003/internal/chat"
)

var ErrFileTooLarge = errors.New("file exceeds the size limit")

const defaultMaxFileBytes = 10 << 20

type Options struct {
	// APIEndpoint and FileEndpoint follow tgbotapi's format strings. Empty
	// values use the public Bot API.
	APIEndpoint  string
	FileEndpoint string
	HTTPClient   *http.Client
	MaxFileBytes int64
}

// Telegram is the chat gateway backed by the Telegram Bot API.
type Telegram struct {
	api          *tgbotapi.BotAPI
	client       *http.Client
	fileEndpoint string
	maxFileBytes int64
}

func New(token string, opts Options) (*Telegram, error) {
	if opts.APIEndpoint == "" {
		opts.APIEndpoint = tgbotapi.APIEndpoint
	}
	if opts.FileEndpoint == "" {
		opts.FileEndpoint = tgbotapi.FileEndpoint
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = defaultMaxFileBytes
	}

	api, err := tgbotapi.NewBotAPIWithClient(token, opts.APIEndpoint, opts.HTTPClient)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}

	return &Telegram{
		api:          api,
		client:       opts.HTTPClient,
		fileEndpoint: opts.FileEndpoint,
		maxFileBytes: opts.MaxFileBytes,
	}, nil
}

// Username is the bot's own @username.
func (t *Telegram) Username() string {
	return t.api.Self.UserName
}

// Send implements chat.Replier.
func (t *Telegram) Send(ctx context.Context, chatID int64, msg chat.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out := tgbotapi.NewMessage(chatID, msg.Text)
	switch {
	case msg.ReplyKeyboard != nil:
		out.ReplyMarkup = replyKeyboard(msg.ReplyKeyboard)
	case len(msg.InlineKeyboard) > 0:
		out.ReplyMarkup = inlineKeyboard(msg.InlineKeyboard)
	case msg.RemoveKeyboard:
		out.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}

	if _, err := t.api.Send(out); err != nil {
		return fmt.Errorf("sending message to chat %d: %w", chatID, err)
	}
	return nil
}

// AnswerCallback acknowledges a button press so the client stops its spinner.
func (t *Telegram) AnswerCallback(ctx context.Context, callbackID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("answering callback: %w", err)
	}
	return nil
}

// FetchFile implements photo.FileFetcher.
func (t *Telegram) FetchFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := t.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("resolving file: %w", err)
	}
	if int64(file.FileSize) > t.maxFileBytes {
		return nil, ErrFileTooLarge
	}

	url := fmt.Sprintf(t.fileEndpoint, t.api.Token, file.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building file request: %w", err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading file: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, t.maxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if int64(len(data)) > t.maxFileBytes {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

// Poll long-polls for updates until ctx is cancelled. Any webhook is removed
// first because Telegram refuses getUpdates while one is set.
func (t *Telegram) Poll(ctx context.Context, timeout int, handle func(ctx context.Context, u chat.Update)) error {
	if _, err := t.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("removing webhook: %w", err)
	}

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = timeout
	updates := t.api.GetUpdatesChan(cfg)

	slog.InfoContext(ctx, "telegram polling started", "bot", t.Username())
	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			slog.InfoContext(ctx, "telegram polling stopped")
			return nil
		case raw, ok := <-updates:
			if !ok {
				return nil
			}
			if u, ok := Decode(raw); ok {
				handle(ctx, u)
			}
		}
	}
}

func replyKeyboard(kb *chat.ReplyKeyboard) tgbotapi.ReplyKeyboardMarkup {
	row := make([]tgbotapi.KeyboardButton, 0, len(kb.Buttons))
	for _, b := range kb.Buttons {
		if b.RequestLocation {
			row = append(row, tgbotapi.NewKeyboardButtonLocation(b.Text))
		} else {
			row = append(row, tgbotapi.NewKeyboardButton(b.Text))
		}
	}
	markup := tgbotapi.NewReplyKeyboard(row)
	markup.OneTimeKeyboard = true
	markup.ResizeKeyboard = true
	return markup
}

func inlineKeyboard(rows [][]chat.Button) tgbotapi.InlineKeyboardMarkup {
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, r := range rows {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
		for _, b := range r {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Label, chat.EncodeAction(b.Action)))
		}
		out = append(out, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(out...)
}
