package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are attached to every record logged with a context that carries them.
// Handlers enrich the context once per update so the wizard, the gateway and the
// adapters don't have to repeat chat identifiers on each call.
type LogFields struct {
	ChatID    *int64  // Telegram chat the update belongs to
	UpdateID  *int64  // Telegram update ID
	Username  *string // Telegram @username of the sender
	Step      *string // Wizard step at the time of logging
	Component string  // e.g. "intake.wizard.engine"
}

// WithLogFields enriches ctx with fields. Newer non-nil values win.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := mergeFields(GetLogFields(ctx), fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields returns the fields stored in ctx, or the zero value.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.ChatID != nil {
		result.ChatID = next.ChatID
	}
	if next.UpdateID != nil {
		result.UpdateID = next.UpdateID
	}
	if next.Username != nil {
		result.Username = next.Username
	}
	if next.Step != nil {
		result.Step = next.Step
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Truncate shortens s to maxLen bytes, appending "..." when it had to cut.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
