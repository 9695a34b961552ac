package submission

import (
	"errors"
	"strings"
)

const (
	MsgLocationMissing    = "❌ The report location is missing or incomplete. Please start again with /start and share the location."
	MsgCoordinatesInvalid = "❌ The coordinates are not valid. Latitude must be between -90 and 90 and longitude between -180 and 180."
	MsgOutsideBoundary    = "❌ The selected location is outside Turin city boundaries. Reports can only be filed for places inside the city."
	MsgPhotoCount         = "❌ A report needs between 1 and 3 photos."
	MsgPhotoFormat        = "❌ One of the photos has an unsupported format. Please use JPEG, PNG or WebP images."
	MsgPhotoCorrupt       = "❌ One of the photos could not be read. Please try again with a different image."
	MsgValidationPrefix   = "❌ The report could not be created: "
	MsgUnauthorized       = "🔒 Your account is not authorized to submit reports. Make sure your Telegram account is linked with /link and try again."
	MsgInsufficientRights = "🚫 Your account does not have permission to create reports."
	MsgNotFound           = "❓ Your account could not be found. Please check your registration on Participium."
	MsgUnspecified        = "⚠️ Something went wrong while submitting your report. Please try again in a moment or contact support if the problem persists."
)

// UserMessage maps a submission failure to exactly one user-facing message.
// Raw error text only reaches the user through the generic validation
// template, and only when the report API classified the failure as validation.
func UserMessage(err error) string {
	var se *Error
	if !errors.As(err, &se) {
		return MsgUnspecified
	}

	switch se.Kind {
	case KindValidation:
		return validationMessage(se.Message)
	case KindUnauthorized:
		return MsgUnauthorized
	case KindInsufficientRights:
		return MsgInsufficientRights
	case KindNotFound:
		return MsgNotFound
	default:
		return MsgUnspecified
	}
}

// validationMessage picks the most specific template for a validation
// failure. The boundary check comes first because boundary messages also
// mention the location.
func validationMessage(raw string) string {
	msg := strings.ToLower(raw)

	switch {
	case containsAny(msg, "outside turin", "city boundaries", "outside the municipal"):
		return MsgOutsideBoundary
	case containsAny(msg, "out of range", "invalid coordinates", "latitude must", "longitude must"):
		return MsgCoordinatesInvalid
	case containsAny(msg, "location is required", "missing location", "location missing", "incomplete location", "location is incomplete", "latitude and longitude are required"):
		return MsgLocationMissing
	case containsAny(msg, "photo", "image"):
		switch {
		case containsAny(msg, "format", "mime", "unsupported", "not allowed"):
			return MsgPhotoFormat
		case containsAny(msg, "corrupt", "base64", "decode", "malformed"):
			return MsgPhotoCorrupt
		case containsAny(msg, "at least", "at most", "maximum", "minimum", "between 1 and 3", "too many", "required"):
			return MsgPhotoCount
		}
	}

	if strings.TrimSpace(raw) == "" {
		return MsgValidationPrefix + "invalid data."
	}
	return MsgValidationPrefix + raw
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
