package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lucaprinsss/Participium-sub003/common/logger"
	"github.com/lucaprinsss/Participium-sub003/internal/chat"
	"github.com/lucaprinsss/Participium-sub003/internal/dedupe"
	"github.com/lucaprinsss/Participium-sub003/internal/model"
	"github.com/lucaprinsss/Participium-sub003/internal/wizard"
)

var ErrShuttingDown = errors.New("dispatcher is shutting down")

// Wizard is the report intake engine.
type Wizard interface {
	Start(ctx context.Context, conv chat.Conversation) (wizard.Outcome, error)
	Cancel(ctx context.Context, conv chat.Conversation) (wizard.Outcome, error)
	HandleLocation(ctx context.Context, conv chat.Conversation, loc model.Location) (wizard.Outcome, error)
	HandleText(ctx context.Context, conv chat.Conversation, text string) (wizard.Outcome, error)
	HandlePhoto(ctx context.Context, conv chat.Conversation, fileID string) (wizard.Outcome, error)
	HandleAction(ctx context.Context, conv chat.Conversation, action chat.Action) (wizard.Outcome, error)
	HasSession(chatID int64) bool
}

type AccountLinker interface {
	Link(ctx context.Context, telegramUsername, code string) (model.LinkResult, error)
	Unlink(ctx context.Context, telegramUsername string) (model.LinkResult, error)
}

// Gateway sends messages and acknowledges button presses.
type Gateway interface {
	chat.Replier
	AnswerCallback(ctx context.Context, callbackID string) error
}

type Recorder interface {
	UpdateReceived(kind string)
	UpdateDuplicate()
	UpdatePanicked()
}

type Deps struct {
	Wizard   Wizard
	Accounts AccountLinker
	Gateway  Gateway
	Dedupe   dedupe.Deduper // optional
	Recorder Recorder       // optional
}

type Config struct {
	CallTimeout time.Duration
}

// Dispatcher gives every chat its own queue, drained by one goroutine in
// delivery order. A slow external call in one chat never holds up another
// chat, and two updates from the same chat are never reordered.
type Dispatcher struct {
	cfg      Config
	wizard   Wizard
	accounts AccountLinker
	gateway  Gateway
	dedupe   dedupe.Deduper
	recorder Recorder

	mu      sync.Mutex
	queues  map[int64]*chatQueue
	closing bool
	wg      sync.WaitGroup
}

// chatQueue holds updates waiting behind the one being handled for a chat.
type chatQueue struct {
	pending []queuedUpdate
}

type queuedUpdate struct {
	ctx    context.Context
	update chat.Update
}

func NewDispatcher(cfg Config, deps Deps) *Dispatcher {
	d := &Dispatcher{
		cfg:      cfg,
		wizard:   deps.Wizard,
		accounts: deps.Accounts,
		gateway:  deps.Gateway,
		dedupe:   deps.Dedupe,
		recorder: deps.Recorder,
		queues:   make(map[int64]*chatQueue),
	}
	if d.recorder == nil {
		d.recorder = nopRecorder{}
	}
	return d
}

// Dispatch queues u behind earlier updates from the same chat and returns
// without waiting. The caller's cancellation is not propagated: a webhook
// request finishing must not abort the update it delivered.
func (d *Dispatcher) Dispatch(ctx context.Context, u chat.Update) error {
	item := queuedUpdate{ctx: context.WithoutCancel(ctx), update: u}

	d.mu.Lock()
	if d.closing {
		d.mu.Unlock()
		slog.WarnContext(ctx, "dropping update during shutdown", "update_id", u.ID)
		return ErrShuttingDown
	}
	if q, ok := d.queues[u.ChatID]; ok {
		q.pending = append(q.pending, item)
		d.mu.Unlock()
		return nil
	}
	q := &chatQueue{pending: []queuedUpdate{item}}
	d.queues[u.ChatID] = q
	d.wg.Add(1)
	d.mu.Unlock()

	go d.drain(u.ChatID, q)
	return nil
}

// drain handles the chat's updates one at a time and exits once the queue is
// empty. The queue is removed under the same lock Dispatch appends under, so
// no update is left behind.
func (d *Dispatcher) drain(chatID int64, q *chatQueue) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		if len(q.pending) == 0 {
			delete(d.queues, chatID)
			d.mu.Unlock()
			return
		}
		next := q.pending[0]
		q.pending[0] = queuedUpdate{}
		q.pending = q.pending[1:]
		d.mu.Unlock()

		d.handleSafe(next.ctx, next.update)
	}
}

// Shutdown stops accepting updates and waits for queued and in-flight ones.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closing = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for in-flight updates: %w", ctx.Err())
	}
}

func (d *Dispatcher) handleSafe(ctx context.Context, u chat.Update) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ChatID:    logger.Ptr(u.ChatID),
		UpdateID:  logger.Ptr(u.ID),
		Username:  logger.Ptr(u.Sender.Username),
		Component: "intake.bot.dispatcher",
	})

	sc := logger.StartSpan(ctx, "bot.handle_update",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.Int64("telegram.update_id", u.ID),
			attribute.Int64("telegram.chat_id", u.ChatID),
			attribute.String("telegram.update_kind", u.Kind.String()),
		))
	defer sc.End()
	ctx = sc.Context()
	if u.Kind == chat.UpdateCommand {
		sc.Span().SetAttributes(attribute.String("telegram.command", u.Command))
	}

	defer func() {
		if r := recover(); r != nil {
			d.recorder.UpdatePanicked()
			slog.ErrorContext(ctx, "panic recovered in update handling",
				"panic", r,
				"stack", string(debug.Stack()))
			sc.RecordError(fmt.Errorf("panic: %v", r))
		}
	}()

	if err := d.Handle(ctx, u); err != nil {
		sc.RecordError(err)
		slog.ErrorContext(ctx, "update handling failed", "error", err, "kind", u.Kind.String())
	}
}

// Handle processes u synchronously.
func (d *Dispatcher) Handle(ctx context.Context, u chat.Update) error {
	if d.dedupe != nil {
		seen, err := d.dedupe.Seen(ctx, u.ID)
		if err != nil {
			slog.WarnContext(ctx, "update de-duplication unavailable", "error", err)
		} else if seen {
			d.recorder.UpdateDuplicate()
			slog.DebugContext(ctx, "skipping redelivered update")
			return nil
		}
	}
	d.recorder.UpdateReceived(u.Kind.String())

	conv := chat.Conversation{ChatID: u.ChatID, Sender: u.Sender, Reply: d.gateway}

	switch u.Kind {
	case chat.UpdateCommand:
		return d.handleCommand(ctx, conv, u.Command, u.Args)

	case chat.UpdateLocation:
		_, err := d.wizard.HandleLocation(ctx, conv, u.Location)
		return err

	case chat.UpdateText:
		if !d.wizard.HasSession(conv.ChatID) {
			return conv.Send(ctx, chat.Text(MsgNoSession))
		}
		_, err := d.wizard.HandleText(ctx, conv, u.Text)
		return err

	case chat.UpdatePhoto:
		if !d.wizard.HasSession(conv.ChatID) {
			return nil
		}
		_, err := d.wizard.HandlePhoto(ctx, conv, u.FileID)
		return err

	case chat.UpdateButton:
		return d.handleButton(ctx, conv, u)
	}
	return nil
}

func (d *Dispatcher) handleButton(ctx context.Context, conv chat.Conversation, u chat.Update) error {
	if u.CallbackID != "" {
		if err := d.gateway.AnswerCallback(ctx, u.CallbackID); err != nil {
			slog.WarnContext(ctx, "answering callback failed", "error", err)
		}
	}

	switch a := u.Action.(type) {
	case nil:
		return nil
	case chat.UnlinkChoice:
		return d.handleUnlinkChoice(ctx, conv, a.Confirm)
	default:
		if !d.wizard.HasSession(conv.ChatID) {
			return nil
		}
		_, err := d.wizard.HandleAction(ctx, conv, a)
		return err
	}
}

func (d *Dispatcher) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.cfg.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.cfg.CallTimeout)
}

type nopRecorder struct{}

func (nopRecorder) UpdateReceived(string) {}
func (nopRecorder) UpdateDuplicate()      {}
func (nopRecorder) UpdatePanicked()       {}
