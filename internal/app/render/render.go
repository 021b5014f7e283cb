package render

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PabloGalante/lorekeeper/internal/domain"
)

const DefaultBaseURL = "https://www.worldanvil.com"

// [label](path): label without ']', path without ')'
var linkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// Renderer turns assistant text into plain and link segments.
// Only assistant-authored text should go through it.
type Renderer struct {
	base string
}

func NewRenderer(baseURL string) *Renderer {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Renderer{base: strings.TrimRight(baseURL, "/")}
}

// Render splits content into segments. Text outside link matches is kept byte for byte,
// so concatenating every plain segment with the original link markup gives back content.
func (r *Renderer) Render(content string) []domain.Segment {
	matches := linkPattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return []domain.Segment{{Text: content}}
	}

	segments := make([]domain.Segment, 0, 2*len(matches)+1)
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		label := content[m[2]:m[3]]
		target := content[m[4]:m[5]]

		if start > last {
			segments = append(segments, domain.Segment{Text: content[last:start]})
		}

		if href, ok := r.resolve(target); ok {
			segments = append(segments, domain.Segment{Text: label, URL: href})
		} else {
			segments = append(segments, domain.Segment{Text: content[start:end]})
		}
		last = end
	}
	if last < len(content) {
		segments = append(segments, domain.Segment{Text: content[last:]})
	}

	return segments
}

// resolve makes a relative path absolute against the site. Absolute targets pass through
// unchanged; schemes other than http, https and mailto are refused.
func (r *Renderer) resolve(target string) (string, bool) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", false
	}

	u, err := url.Parse(target)
	if err != nil {
		return r.base + "/" + strings.TrimLeft(target, "/"), true
	}

	switch {
	case u.Scheme != "":
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "mailto":
			return target, true
		}
		return "", false
	case u.Host != "":
		// protocol-relative
		return target, true
	}

	return r.base + "/" + strings.TrimLeft(target, "/"), true
}
