package routeerr

import (
	"encoding/json"
	"strings"
	"time"
)

// ANSI color codes for terminal output.
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorWhite = "\033[37m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// Format returns the error formatted for terminal display.
// Colors are used only when color is true.
func (e *RouteError) Format(color bool) string {
	paint := func(code, text string) string {
		if !color {
			return text
		}
		return code + text + colorReset
	}

	var b strings.Builder
	b.WriteString(paint(colorRed, paint(colorBold, "ERROR ")))
	b.WriteString(paint(colorWhite, paint(colorBold, e.CodeString()+": ")))
	b.WriteString(paint(colorWhite, e.Message))
	b.WriteString("\n")

	if e.Original != nil && e.Original.Error() != e.Message {
		b.WriteString("  ")
		b.WriteString(paint(colorGray, "cause: "))
		b.WriteString(e.Original.Error())
		b.WriteString("\n")
	}

	if hint := Suggestion(e.Kind); hint != "" {
		b.WriteString("  ")
		b.WriteString(paint(colorCyan, "Hint: "))
		b.WriteString(hint)
		b.WriteString("\n")
	}

	return b.String()
}

// FormatCompact returns a compact single-line error format.
func (e *RouteError) FormatCompact() string {
	return e.CodeString() + ": " + e.Message
}

// MarshalJSON encodes the error for event streams.
func (e *RouteError) MarshalJSON() ([]byte, error) {
	out := struct {
		Code      any       `json:"code"`
		Kind      string    `json:"kind"`
		Message   string    `json:"message"`
		Timestamp time.Time `json:"timestamp"`
		Original  string    `json:"original,omitempty"`
	}{
		Code:      e.Code,
		Kind:      e.Kind.String(),
		Message:   e.Message,
		Timestamp: e.Timestamp,
	}
	if e.Original != nil {
		out.Original = e.Original.Error()
	}
	return json.Marshal(out)
}
