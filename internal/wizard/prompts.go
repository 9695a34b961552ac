package wizard

import (
	"fmt"

	"github.com/lucaprinsss/Participium-sub003/internal/chat"
	"github.com/lucaprinsss/Participium-sub003/internal/model"
	"github.com/lucaprinsss/Participium-sub003/internal/photo"
	"github.com/lucaprinsss/Participium-sub003/internal/session"
)

const (
	MsgNoUsername       = "⚠️ You need a Telegram username to file reports.\n\nSet one in Telegram Settings → Username, add it to your Participium profile, then send /start again."
	MsgNotLinked        = "🔗 Your Telegram account is not linked to a Participium account.\n\nRegister on Participium, add your Telegram username to your profile and confirm it with /link <code> using the code shown there. Then send /start again."
	MsgStartUnavailable = "⚠️ I couldn't check your account right now. Please try /start again in a moment."

	MsgStart                 = "📍 Let's file a new report!\n\nWhere is the problem? Share your location with the button below or as a pin, type coordinates (e.g. 45.0703, 7.6869) or type a street address in Turin."
	MsgShareLocationButton   = "📍 Send current location"
	MsgOutsideBoundary       = "❌ That location is outside Turin city boundaries. Please send a location inside the city."
	MsgCoordinatesOutOfRange = "❌ Those coordinates are not valid. Latitude must be between -90 and 90, longitude between -180 and 180."
	MsgAddressNotFound       = "🔎 I couldn't find that address. Try adding the street number, or send a location pin instead."
	MsgLocationFailed        = "⚠️ I couldn't verify that location right now. Please try again."

	MsgAskTitle         = "✏️ Now send a short title for the report."
	MsgTitleEmpty       = "✏️ The title can't be empty. Please send a short title."
	MsgAskDescription   = "📝 Describe the problem in a few sentences."
	MsgDescriptionEmpty = "📝 The description can't be empty. Please describe the problem."
	MsgAskCategory      = "🏷️ Choose the category that fits best:"

	MsgAskPhotos        = "🏷️ Category: %s\n\n📸 Now send between 1 and 3 photos of the problem. When you're done, press Done or send /done."
	MsgPhotoReceived    = "📸 Photo %d/%d received."
	MsgPhotoMore        = "Send another one or press Done."
	MsgPhotoLast        = "That's the maximum. Press Done to continue."
	MsgMaxPhotos        = "⚠️ You have already sent the maximum of 3 photos. Press Done to continue."
	MsgPhotosRequired   = "📸 Please send at least one photo before pressing Done."
	MsgPhotoUnsupported = "⚠️ That file is not a supported image. Please send a JPEG, PNG or WebP photo."
	MsgPhotoFailed      = "⚠️ I couldn't download that photo. Please send it again."
	MsgDoneButton       = "✅ Done"

	MsgAskAnonymity    = "🕶️ Do you want to submit this report anonymously?"
	MsgAnonymousYes    = "🕶️ Yes, anonymous"
	MsgAnonymousNo     = "👤 No, show my name"
	MsgConfirmButton   = "✅ Confirm"
	MsgCancelButton    = "❌ Cancel"
	MsgSubmitted       = "✅ Report #%d submitted! Thank you for helping take care of Turin."
	MsgCancelled       = "🗑️ Report cancelled. Send /start whenever you want to file a new one."
	MsgNothingToCancel = "There is no report in progress. Send /start to begin one."

	MsgNotLinkedAtConfirm = "🔗 Your Telegram account is no longer linked to Participium, so the report can't be submitted yet.\n\nLink it again with /link <code>, then press Confirm, or press Cancel."
)

func startPrompt() chat.Message {
	return chat.Message{
		Text: MsgStart,
		ReplyKeyboard: &chat.ReplyKeyboard{
			Buttons: []chat.ReplyButton{{Text: MsgShareLocationButton, RequestLocation: true}},
		},
	}
}

func locationAcceptedPrompt(d session.ReportDraft) chat.Message {
	where := d.Location.String()
	if d.Address != nil {
		where = *d.Address
	}
	return chat.Message{
		Text:           "📍 Location received: " + where + "\n\n" + MsgAskTitle,
		RemoveKeyboard: true,
	}
}

func categoryPrompt() chat.Message {
	rows := make([][]chat.Button, 0, len(model.Categories))
	for i, c := range model.Categories {
		rows = append(rows, []chat.Button{{Label: c.String(), Action: chat.CategorySelect{Index: i}}})
	}
	return chat.Message{Text: MsgAskCategory, InlineKeyboard: rows}
}

func withDoneButton(text string) chat.Message {
	return chat.Message{
		Text:           text,
		InlineKeyboard: [][]chat.Button{{{Label: MsgDoneButton, Action: chat.PhotosDone{}}}},
	}
}

func photoReceivedPrompt(n int) chat.Message {
	next := MsgPhotoMore
	if n >= photo.MaxPhotos {
		next = MsgPhotoLast
	}
	return withDoneButton(fmt.Sprintf(MsgPhotoReceived, n, photo.MaxPhotos) + " " + next)
}

func anonymityPrompt() chat.Message {
	return chat.Message{
		Text: MsgAskAnonymity,
		InlineKeyboard: [][]chat.Button{{
			{Label: MsgAnonymousYes, Action: chat.AnonymityChoice{Anonymous: true}},
			{Label: MsgAnonymousNo, Action: chat.AnonymityChoice{Anonymous: false}},
		}},
	}
}

func confirmationPrompt(d session.ReportDraft) chat.Message {
	return chat.Message{
		Text: Summary(d),
		InlineKeyboard: [][]chat.Button{{
			{Label: MsgConfirmButton, Action: chat.ConfirmChoice{Confirm: true}},
			{Label: MsgCancelButton, Action: chat.ConfirmChoice{Confirm: false}},
		}},
	}
}
