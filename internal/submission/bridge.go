package submission

import (
	"context"
	"errors"
	"fmt"

	"github.com/lucaprinsss/Participium-sub003/internal/model"
	"github.com/lucaprinsss/Participium-sub003/internal/session"
)

// ReportCreator files a report and returns its identifier. Failures should be
// *Error values so they can be classified.
type ReportCreator interface {
	CreateReport(ctx context.Context, req model.CreateReportRequest) (int64, error)
}

// Bridge turns a completed draft into a report creation call.
type Bridge struct {
	creator ReportCreator
}

func NewBridge(creator ReportCreator) *Bridge {
	return &Bridge{creator: creator}
}

// Submit files draft on behalf of userID. Incomplete drafts never reach the
// creator.
func (b *Bridge) Submit(ctx context.Context, userID int64, draft session.ReportDraft) (int64, error) {
	if err := validate(draft); err != nil {
		return 0, err
	}

	req := BuildRequest(userID, draft)
	id, err := b.creator.CreateReport(ctx, req)
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			return 0, err
		}
		return 0, &Error{Kind: KindUnspecified, Message: "report creation failed", Err: err}
	}
	return id, nil
}

// BuildRequest maps draft fields one to one. The address is carried as
// resolved during intake.
func BuildRequest(userID int64, draft session.ReportDraft) model.CreateReportRequest {
	photos := make([]string, 0, len(draft.Photos))
	for _, p := range draft.Photos {
		photos = append(photos, p.DataURI)
	}

	req := model.CreateReportRequest{
		Title:          draft.Title,
		Description:    draft.Description,
		Photos:         photos,
		UserID:         userID,
		IdempotencyKey: draft.SubmissionKey,
	}
	if draft.Category != nil {
		req.Category = *draft.Category
	}
	if draft.Location != nil {
		req.Location = *draft.Location
	}
	if draft.Address != nil {
		addr := *draft.Address
		req.Address = &addr
	}
	if draft.Anonymous != nil {
		req.IsAnonymous = *draft.Anonymous
	}
	return req
}

func validate(draft session.ReportDraft) error {
	switch {
	case draft.Location == nil:
		return NewError(KindValidation, "location is required")
	case draft.Title == "":
		return NewError(KindValidation, "title is required")
	case draft.Description == "":
		return NewError(KindValidation, "description is required")
	case draft.Category == nil:
		return NewError(KindValidation, "category is required")
	case len(draft.Photos) < 1 || len(draft.Photos) > 3:
		return NewError(KindValidation, fmt.Sprintf("a report needs between 1 and 3 photos, got %d", len(draft.Photos)))
	}
	return nil
}
