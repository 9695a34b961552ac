package bot

import (
	"context"
	"errors"
	"log/slog"
	"regexp"

	"github.com/lucaprinsss/Participium-sub003/internal/chat"
	"github.com/lucaprinsss/Participium-sub003/internal/store"
	"github.com/lucaprinsss/Participium-sub003/internal/wizard"
)

var linkCode = regexp.MustCompile(`^\d{6}$`)

func (d *Dispatcher) handleCommand(ctx context.Context, conv chat.Conversation, command, args string) error {
	switch command {
	case "start", "report":
		_, err := d.wizard.Start(ctx, conv)
		return err
	case "help":
		return conv.Send(ctx, chat.Text(MsgHelp))
	case "info":
		return conv.Send(ctx, chat.Text(MsgInfo))
	case "link":
		return d.handleLink(ctx, conv, args)
	case "unlink":
		return d.askUnlink(ctx, conv)
	case "cancel":
		_, err := d.wizard.Cancel(ctx, conv)
		return err
	case "done":
		if !d.wizard.HasSession(conv.ChatID) {
			return nil
		}
		_, err := d.wizard.HandleText(ctx, conv, "/done")
		return err
	default:
		return conv.Send(ctx, chat.Text(MsgUnknownCommand))
	}
}

// handleLink validates the code locally so malformed input never reaches the
// account directory.
func (d *Dispatcher) handleLink(ctx context.Context, conv chat.Conversation, code string) error {
	if conv.Sender.Username == "" {
		return conv.Send(ctx, chat.Text(wizard.MsgNoUsername))
	}
	if !linkCode.MatchString(code) {
		return conv.Send(ctx, chat.Text(MsgLinkUsage))
	}

	callCtx, cancel := d.callContext(ctx)
	defer cancel()
	res, err := d.accounts.Link(callCtx, conv.Sender.Username, code)
	switch {
	case errors.Is(err, store.ErrInvalidCode):
		return conv.Send(ctx, chat.Text(MsgLinkInvalid))
	case errors.Is(err, store.ErrCodeExpired):
		return conv.Send(ctx, chat.Text(MsgLinkExpired))
	case errors.Is(err, store.ErrCodeUsed):
		return conv.Send(ctx, chat.Text(MsgLinkUsed))
	case err != nil:
		slog.ErrorContext(ctx, "account link failed", "error", err)
		return conv.Send(ctx, chat.Text(MsgLinkFailed))
	}

	if !res.Success {
		return conv.Send(ctx, chat.Text("⚠️ "+res.Message))
	}
	slog.InfoContext(ctx, "telegram account linked")
	return conv.Send(ctx, chat.Text("✅ "+res.Message))
}

func (d *Dispatcher) askUnlink(ctx context.Context, conv chat.Conversation) error {
	if conv.Sender.Username == "" {
		return conv.Send(ctx, chat.Text(wizard.MsgNoUsername))
	}
	return conv.Send(ctx, chat.Message{
		Text: MsgUnlinkConfirm,
		InlineKeyboard: [][]chat.Button{{
			{Label: MsgUnlinkYes, Action: chat.UnlinkChoice{Confirm: true}},
			{Label: MsgUnlinkNo, Action: chat.UnlinkChoice{Confirm: false}},
		}},
	})
}

func (d *Dispatcher) handleUnlinkChoice(ctx context.Context, conv chat.Conversation, confirm bool) error {
	if !confirm {
		return conv.Send(ctx, chat.Text(MsgUnlinkKept))
	}
	if conv.Sender.Username == "" {
		return conv.Send(ctx, chat.Text(wizard.MsgNoUsername))
	}

	callCtx, cancel := d.callContext(ctx)
	defer cancel()
	res, err := d.accounts.Unlink(callCtx, conv.Sender.Username)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return conv.Send(ctx, chat.Text(MsgUnlinkNotLinked))
	case err != nil:
		slog.ErrorContext(ctx, "account unlink failed", "error", err)
		return conv.Send(ctx, chat.Text(MsgUnlinkFailed))
	}

	slog.InfoContext(ctx, "telegram account unlinked")
	return conv.Send(ctx, chat.Text("✅ "+res.Message))
}
