package flow

// WhatsApp interactive message limits. Authoring is validated against
// these; run-time rendering truncates rather than fails, since a flow that
// passed validation can still exceed limits after interpolation.
const (
	MaxBodyLength = 4096

	MaxButtons        = 3
	MaxButtonTitle    = 20
	MaxListButtonText = 20

	// The Cloud API accepts a single section per list message.
	MaxSections       = 1
	MaxRowsPerSection = 10
	MaxSectionTitle   = 24
	MaxRowTitle       = 24
	MaxRowDescription = 72

	MaxIDLength = 256
)

// Truncate cuts s to max runes. Rune-safe so Devanagari and Odia titles
// never split mid-character.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
