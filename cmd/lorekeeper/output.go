package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/PabloGalante/lorekeeper/internal/domain"
)

func printTranscript(w io.Writer, msgs []domain.Message) {
	for _, m := range msgs {
		printMessage(w, m)
	}
}

func printMessage(w io.Writer, m domain.Message) {
	prefix := "you"
	if m.Author == domain.RoleAssistant {
		prefix = "lorekeeper"
	}
	fmt.Fprintf(w, "%s: %s\n", prefix, formatSegments(m))
}

// formatSegments prints links as "label (url)"; the terminal has no anchors.
func formatSegments(m domain.Message) string {
	if len(m.Segments) == 0 {
		return m.Text
	}
	var b strings.Builder
	for _, s := range m.Segments {
		b.WriteString(s.Text)
		if s.IsLink() {
			fmt.Fprintf(&b, " (%s)", s.URL)
		}
	}
	return b.String()
}
