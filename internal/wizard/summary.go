package wizard

import (
	"fmt"
	"strings"

	"github.com/lucaprinsss/Participium-sub003/internal/session"
)

// Summary renders the draft for the confirmation step.
func Summary(d session.ReportDraft) string {
	var b strings.Builder

	b.WriteString("📋 Report summary\n\n")
	if d.Location != nil {
		fmt.Fprintf(&b, "📍 Location: %s\n", d.Location)
	}
	if d.Address != nil {
		fmt.Fprintf(&b, "🏠 Address: %s\n", *d.Address)
	}
	fmt.Fprintf(&b, "✏️ Title: %s\n", d.Title)
	fmt.Fprintf(&b, "📝 Description: %s\n", d.Description)
	if d.Category != nil {
		fmt.Fprintf(&b, "🏷️ Category: %s\n", *d.Category)
	}
	fmt.Fprintf(&b, "📸 Photos: %d\n", len(d.Photos))
	if d.Anonymous != nil {
		fmt.Fprintf(&b, "🕶️ Anonymous: %s\n", yesNo(*d.Anonymous))
	}
	b.WriteString("\nDo you want to submit this report?")

	return b.String()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
