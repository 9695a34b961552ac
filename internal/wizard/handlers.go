package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lucaprinsss/Participium-sub003/internal/chat"
	"github.com/lucaprinsss/Participium-sub003/internal/geo"
	"github.com/lucaprinsss/Participium-sub003/internal/model"
	"github.com/lucaprinsss/Participium-sub003/internal/photo"
	"github.com/lucaprinsss/Participium-sub003/internal/session"
	"github.com/lucaprinsss/Participium-sub003/internal/store"
	"github.com/lucaprinsss/Participium-sub003/internal/submission"
)

// HandleLocation accepts a shared location pin while waiting for a location.
func (e *Engine) HandleLocation(ctx context.Context, conv chat.Conversation, loc model.Location) (Outcome, error) {
	return e.withSession(ctx, conv, func(ctx context.Context, conv chat.Conversation, s *session.Session) (Outcome, error) {
		if s.Step != session.StepWaitingLocation {
			return Ignored, nil
		}
		callCtx, cancel := e.callContext(ctx)
		defer cancel()
		place, err := e.locations.ResolvePin(callCtx, loc)
		return e.acceptLocation(ctx, conv, s, place, err)
	})
}

// HandleText routes free text by step: a location, the title, the
// description, or the photo completion command.
func (e *Engine) HandleText(ctx context.Context, conv chat.Conversation, text string) (Outcome, error) {
	return e.withSession(ctx, conv, func(ctx context.Context, conv chat.Conversation, s *session.Session) (Outcome, error) {
		switch s.Step {
		case session.StepWaitingLocation:
			if strings.TrimSpace(text) == "" {
				return Ignored, nil
			}
			callCtx, cancel := e.callContext(ctx)
			defer cancel()
			place, err := e.locations.ResolveText(callCtx, text)
			return e.acceptLocation(ctx, conv, s, place, err)

		case session.StepWaitingTitle:
			title := strings.TrimSpace(text)
			if title == "" {
				return Rejected, conv.Send(ctx, chat.Text(MsgTitleEmpty))
			}
			s.Draft.Title = title
			s.Step = session.StepWaitingDescription
			return Advanced, conv.Send(ctx, chat.Text(MsgAskDescription))

		case session.StepWaitingDescription:
			desc := strings.TrimSpace(text)
			if desc == "" {
				return Rejected, conv.Send(ctx, chat.Text(MsgDescriptionEmpty))
			}
			s.Draft.Description = desc
			s.Step = session.StepWaitingCategory
			return Advanced, conv.Send(ctx, categoryPrompt())

		case session.StepWaitingPhotos:
			if !IsDoneCommand(text) {
				return Ignored, nil
			}
			return e.finishPhotos(ctx, conv, s)
		}
		return Ignored, nil
	})
}

// HandlePhoto adds a photo attachment while collecting photos.
func (e *Engine) HandlePhoto(ctx context.Context, conv chat.Conversation, fileID string) (Outcome, error) {
	return e.withSession(ctx, conv, func(ctx context.Context, conv chat.Conversation, s *session.Session) (Outcome, error) {
		if s.Step != session.StepWaitingPhotos {
			return Ignored, nil
		}

		callCtx, cancel := e.callContext(ctx)
		defer cancel()
		err := e.photos.Collect(callCtx, &s.Draft, fileID)
		switch {
		case errors.Is(err, photo.ErrLimitReached):
			return Rejected, conv.Send(ctx, withDoneButton(MsgMaxPhotos))
		case errors.Is(err, photo.ErrUnsupportedFormat), errors.Is(err, photo.ErrEmpty):
			return Rejected, conv.Send(ctx, chat.Text(MsgPhotoUnsupported))
		case err != nil:
			slog.WarnContext(ctx, "photo collection failed", "error", err)
			return Rejected, conv.Send(ctx, chat.Text(MsgPhotoFailed))
		}

		return Advanced, conv.Send(ctx, photoReceivedPrompt(len(s.Draft.Photos)))
	})
}

// HandleAction applies an inline button press. Buttons that do not belong to
// the current step are ignored.
func (e *Engine) HandleAction(ctx context.Context, conv chat.Conversation, action chat.Action) (Outcome, error) {
	return e.withSession(ctx, conv, func(ctx context.Context, conv chat.Conversation, s *session.Session) (Outcome, error) {
		switch a := action.(type) {
		case chat.CategorySelect:
			if s.Step != session.StepWaitingCategory {
				return Ignored, nil
			}
			cat, ok := model.CategoryByIndex(a.Index)
			if !ok {
				return Ignored, nil
			}
			s.Draft.Category = &cat
			s.Step = session.StepWaitingPhotos
			return Advanced, conv.Send(ctx, chat.Text(fmt.Sprintf(MsgAskPhotos, cat)))

		case chat.PhotosDone:
			if s.Step != session.StepWaitingPhotos {
				return Ignored, nil
			}
			return e.finishPhotos(ctx, conv, s)

		case chat.AnonymityChoice:
			if s.Step != session.StepWaitingAnonymity {
				return Ignored, nil
			}
			anon := a.Anonymous
			s.Draft.Anonymous = &anon
			s.Step = session.StepWaitingConfirmation
			return Advanced, conv.Send(ctx, confirmationPrompt(s.Draft))

		case chat.ConfirmChoice:
			if s.Step != session.StepWaitingConfirmation {
				return Ignored, nil
			}
			if !a.Confirm {
				e.recorder.SessionCancelled()
				return Cancelled, conv.Send(ctx, chat.Text(MsgCancelled))
			}
			return e.submit(ctx, conv, s)
		}
		return Ignored, nil
	})
}

func (e *Engine) acceptLocation(ctx context.Context, conv chat.Conversation, s *session.Session, place geo.Place, err error) (Outcome, error) {
	switch {
	case errors.Is(err, geo.ErrOutsideBoundary):
		return Rejected, conv.Send(ctx, chat.Text(MsgOutsideBoundary))
	case errors.Is(err, geo.ErrCoordinatesOutOfRange):
		return Rejected, conv.Send(ctx, chat.Text(MsgCoordinatesOutOfRange))
	case errors.Is(err, geo.ErrNoResults):
		return Rejected, conv.Send(ctx, chat.Text(MsgAddressNotFound))
	case err != nil:
		slog.WarnContext(ctx, "location resolution failed", "error", err)
		return Rejected, conv.Send(ctx, chat.Text(MsgLocationFailed))
	}

	loc := place.Location
	s.Draft.Location = &loc
	if place.Address != "" {
		addr := place.Address
		s.Draft.Address = &addr
	}
	s.Step = session.StepWaitingTitle
	return Advanced, conv.Send(ctx, locationAcceptedPrompt(s.Draft))
}

func (e *Engine) finishPhotos(ctx context.Context, conv chat.Conversation, s *session.Session) (Outcome, error) {
	if len(s.Draft.Photos) < photo.MinPhotos {
		return Rejected, conv.Send(ctx, chat.Text(MsgPhotosRequired))
	}
	s.Step = session.StepWaitingAnonymity
	return Advanced, conv.Send(ctx, anonymityPrompt())
}

// submit re-checks the caller's link and files the report. On failure the
// session stays in confirmation so the caller can press Confirm again.
func (e *Engine) submit(ctx context.Context, conv chat.Conversation, s *session.Session) (Outcome, error) {
	callCtx, cancel := e.callContext(ctx)
	acc, err := e.accounts.Lookup(callCtx, s.Username)
	cancel()
	switch {
	case errors.Is(err, store.ErrNotFound):
		e.recorder.SubmissionFailed(submission.KindNotFound.String())
		return Rejected, conv.Send(ctx, chat.Text(submission.MsgNotFound))
	case err != nil:
		slog.ErrorContext(ctx, "account re-check failed", "error", err)
		e.recorder.SubmissionFailed(submission.KindUnspecified.String())
		return Rejected, conv.Send(ctx, chat.Text(submission.MsgUnspecified))
	case !acc.Confirmed:
		e.recorder.SubmissionFailed(submission.KindUnauthorized.String())
		return Rejected, conv.Send(ctx, chat.Text(MsgNotLinkedAtConfirm))
	}

	callCtx, cancel = e.callContext(ctx)
	id, err := e.reports.Submit(callCtx, s.UserID, s.Draft)
	cancel()
	if err != nil {
		kind := submission.KindOf(err)
		slog.WarnContext(ctx, "report submission failed", "kind", kind.String(), "error", err)
		e.recorder.SubmissionFailed(kind.String())
		return Rejected, conv.Send(ctx, chat.Text(submission.UserMessage(err)))
	}

	slog.InfoContext(ctx, "report submitted", "report_id", id, "user_id", s.UserID)
	e.recorder.SubmissionSucceeded()
	return Submitted, conv.Send(ctx, chat.Text(fmt.Sprintf(MsgSubmitted, id)))
}

// IsDoneCommand reports whether text is the photo completion command.
func IsDoneCommand(text string) bool {
	t := strings.TrimSpace(text)
	if i := strings.IndexByte(t, '@'); i > 0 && strings.HasPrefix(t, "/") {
		t = t[:i]
	}
	return strings.EqualFold(t, "/done") || strings.EqualFold(t, "done")
}
