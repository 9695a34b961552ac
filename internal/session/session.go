package session

import (
	"time"

	"github.com/lucaprinsss/Participium-sub003/internal/model"
)

// Step is the wizard state of a conversation. Steps are visited strictly in
// declaration order.
type Step int

const (
	StepWaitingLocation Step = iota
	StepWaitingTitle
	StepWaitingDescription
	StepWaitingCategory
	StepWaitingPhotos
	StepWaitingAnonymity
	StepWaitingConfirmation
)

func (s Step) String() string {
	switch s {
	case StepWaitingLocation:
		return "WAITING_LOCATION"
	case StepWaitingTitle:
		return "WAITING_TITLE"
	case StepWaitingDescription:
		return "WAITING_DESCRIPTION"
	case StepWaitingCategory:
		return "WAITING_CATEGORY"
	case StepWaitingPhotos:
		return "WAITING_PHOTOS"
	case StepWaitingAnonymity:
		return "WAITING_ANONYMITY"
	case StepWaitingConfirmation:
		return "WAITING_CONFIRMATION"
	default:
		return "UNKNOWN"
	}
}

// Session is the state of one report intake conversation.
type Session struct {
	ChatID    int64
	Username  string // Telegram username resolved at flow start
	UserID    int64  // Participium account resolved at flow start
	Step      Step
	Draft     ReportDraft
	StartedAt time.Time
}

// New returns a session waiting for a location.
func New(chatID int64, username string, userID int64, now time.Time) *Session {
	return &Session{
		ChatID:    chatID,
		Username:  username,
		UserID:    userID,
		Step:      StepWaitingLocation,
		StartedAt: now,
	}
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Draft = s.Draft.clone()
	return &out
}

// ReportDraft accumulates the fields of a report. Pointer fields are nil until
// their step has validated an input.
type ReportDraft struct {
	Location    *model.Location
	Address     *string // display only, never re-validated
	Title       string
	Description string
	Category    *model.Category
	Photos      []model.Photo
	Anonymous   *bool

	// SubmissionKey identifies this draft to the report API. It is fixed when
	// the draft is created and sent on every confirm, so a retried confirm
	// cannot file the report twice.
	SubmissionKey string
}

// Complete reports whether the draft can be submitted.
func (d ReportDraft) Complete() bool {
	return d.Location != nil &&
		d.Title != "" &&
		d.Description != "" &&
		d.Category != nil &&
		len(d.Photos) >= 1 && len(d.Photos) <= 3
}

func (d ReportDraft) clone() ReportDraft {
	out := d
	if d.Location != nil {
		loc := *d.Location
		out.Location = &loc
	}
	if d.Address != nil {
		addr := *d.Address
		out.Address = &addr
	}
	if d.Category != nil {
		cat := *d.Category
		out.Category = &cat
	}
	if d.Anonymous != nil {
		anon := *d.Anonymous
		out.Anonymous = &anon
	}
	if d.Photos != nil {
		out.Photos = append([]model.Photo(nil), d.Photos...)
	}
	return out
}
