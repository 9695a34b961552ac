package wizard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lucaprinsss/Participium-sub003/common/id"
	"github.com/lucaprinsss/Participium-sub003/common/logger"
	"github.com/lucaprinsss/Participium-sub003/internal/chat"
	"github.com/lucaprinsss/Participium-sub003/internal/geo"
	"github.com/lucaprinsss/Participium-sub003/internal/model"
	"github.com/lucaprinsss/Participium-sub003/internal/session"
	"github.com/lucaprinsss/Participium-sub003/internal/store"
)

// Outcome is what a handler did with an input.
type Outcome int

const (
	// Ignored means the input did not fit the current step. Nothing changed
	// and nothing was sent.
	Ignored Outcome = iota
	// Advanced means the input was accepted and stored.
	Advanced
	// Rejected means the input was refused with a message; the session is unchanged.
	Rejected
	Submitted
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Advanced:
		return "advanced"
	case Rejected:
		return "rejected"
	case Submitted:
		return "submitted"
	case Cancelled:
		return "cancelled"
	default:
		return "ignored"
	}
}

type AccountLookup interface {
	Lookup(ctx context.Context, telegramUsername string) (*model.Account, error)
}

type Locator interface {
	ResolvePin(ctx context.Context, loc model.Location) (geo.Place, error)
	ResolveText(ctx context.Context, text string) (geo.Place, error)
}

type PhotoCollector interface {
	Collect(ctx context.Context, draft *session.ReportDraft, fileID string) error
}

type Submitter interface {
	Submit(ctx context.Context, userID int64, draft session.ReportDraft) (int64, error)
}

// Recorder receives wizard events for metrics.
type Recorder interface {
	SessionStarted()
	InputHandled(step, outcome string)
	SubmissionSucceeded()
	SubmissionFailed(kind string)
	SessionCancelled()
	ActiveSessions(n int)
}

type Deps struct {
	Sessions  *session.Store
	Accounts  AccountLookup
	Locations Locator
	Photos    PhotoCollector
	Reports   Submitter
	Recorder  Recorder         // optional
	Now       func() time.Time // optional
	NewKey    func() string    // optional, snowflake ids by default
}

type Config struct {
	// CallTimeout bounds each external call. Zero means no extra bound.
	CallTimeout time.Duration
}

// Engine drives the report intake state machine. Every handler runs under the
// chat's session lock, so inputs for one chat are applied one at a time while
// other chats proceed in parallel.
type Engine struct {
	cfg       Config
	sessions  *session.Store
	accounts  AccountLookup
	locations Locator
	photos    PhotoCollector
	reports   Submitter
	recorder  Recorder
	now       func() time.Time
	newKey    func() string
}

func NewEngine(cfg Config, deps Deps) *Engine {
	e := &Engine{
		cfg:       cfg,
		sessions:  deps.Sessions,
		accounts:  deps.Accounts,
		locations: deps.Locations,
		photos:    deps.Photos,
		reports:   deps.Reports,
		recorder:  deps.Recorder,
		now:       deps.Now,
		newKey:    deps.NewKey,
	}
	if e.recorder == nil {
		e.recorder = nopRecorder{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newKey == nil {
		e.newKey = id.NewString
	}
	return e
}

// HasSession reports whether chatID has a report in progress.
func (e *Engine) HasSession(chatID int64) bool {
	_, ok := e.sessions.Get(chatID)
	return ok
}

// Start begins a new report for a registered, linked caller. An existing
// session for the chat is replaced.
func (e *Engine) Start(ctx context.Context, conv chat.Conversation) (Outcome, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "intake.wizard.start"})

	if conv.Sender.Username == "" {
		return Rejected, conv.Send(ctx, chat.Text(MsgNoUsername))
	}

	callCtx, cancel := e.callContext(ctx)
	acc, err := e.accounts.Lookup(callCtx, conv.Sender.Username)
	cancel()
	switch {
	case errors.Is(err, store.ErrNotFound):
		return Rejected, conv.Send(ctx, chat.Text(MsgNotLinked))
	case err != nil:
		slog.ErrorContext(ctx, "account lookup failed", "error", err)
		return Rejected, conv.Send(ctx, chat.Text(MsgStartUnavailable))
	case !acc.Confirmed:
		return Rejected, conv.Send(ctx, chat.Text(MsgNotLinked))
	}

	var sendErr error
	e.sessions.Update(conv.ChatID, func(cur *session.Session) *session.Session {
		if cur != nil {
			slog.InfoContext(ctx, "superseding report in progress", "previous_step", cur.Step.String())
		}
		sendErr = conv.Send(ctx, startPrompt())
		next := session.New(conv.ChatID, conv.Sender.Username, acc.UserID, e.now())
		next.Draft.SubmissionKey = e.newKey()
		return next
	})
	e.recorder.SessionStarted()
	e.recorder.ActiveSessions(e.sessions.Len())

	slog.InfoContext(ctx, "report intake started", "user_id", acc.UserID)
	return Advanced, sendErr
}

// Cancel drops the chat's report in progress, if any.
func (e *Engine) Cancel(ctx context.Context, conv chat.Conversation) (Outcome, error) {
	var had bool
	e.sessions.Update(conv.ChatID, func(cur *session.Session) *session.Session {
		had = cur != nil
		return nil
	})
	if !had {
		return Ignored, conv.Send(ctx, chat.Text(MsgNothingToCancel))
	}
	e.recorder.SessionCancelled()
	e.recorder.ActiveSessions(e.sessions.Len())
	return Cancelled, conv.Send(ctx, chat.Text(MsgCancelled))
}

type stepFunc func(ctx context.Context, conv chat.Conversation, s *session.Session) (Outcome, error)

// withSession runs fn on a private copy of the chat's session while holding
// the chat's lock. The copy replaces the stored session only when fn accepted
// the input, so a rejected or failed input never leaves a half-written draft.
func (e *Engine) withSession(ctx context.Context, conv chat.Conversation, fn stepFunc) (Outcome, error) {
	var (
		out  Outcome
		err  error
		step string
	)
	e.sessions.Update(conv.ChatID, func(cur *session.Session) *session.Session {
		if cur == nil {
			out = Ignored
			return nil
		}
		step = cur.Step.String()
		ctx := logger.WithLogFields(ctx, logger.LogFields{Step: logger.Ptr(step)})

		next := cur.Clone()
		out, err = fn(ctx, conv, next)
		switch out {
		case Advanced:
			return next
		case Submitted, Cancelled:
			return nil
		default:
			return cur
		}
	})

	if step != "" {
		e.recorder.InputHandled(step, out.String())
	}
	if out == Submitted || out == Cancelled {
		e.recorder.ActiveSessions(e.sessions.Len())
	}
	return out, err
}

func (e *Engine) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.cfg.CallTimeout)
}

type nopRecorder struct{}

func (nopRecorder) SessionStarted()             {}
func (nopRecorder) InputHandled(string, string) {}
func (nopRecorder) SubmissionSucceeded()        {}
func (nopRecorder) SubmissionFailed(string)     {}
func (nopRecorder) SessionCancelled()           {}
func (nopRecorder) ActiveSessions(int)          {}
