package services

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultSectionTitle holds bullets that appear before the first heading.
const DefaultSectionTitle = "Experience"

// headingPattern accepts lines like "EXPERIENCE", "SKILLS & TOOLS" or "R&D / LABS".
// It misses mixed-case headings ("Work Experience", "SKILLS:") and promotes short
// all-caps bullets ("AWS", "SQL & GO") to headings. Both are accepted limitations.
var headingPattern = regexp.MustCompile(`^[A-Z][A-Z\s/&-]{2,}$`)

type ResumeSection struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

// StructuredResume is what gets persisted as a CV's structured data on upload.
type StructuredResume struct {
	Sections []ResumeSection `json:"sections"`
	RawText  string          `json:"rawText"`
}

// StructureResume splits normalized résumé text into titled sections. A section
// without bullets is never emitted.
func StructureResume(text string) []ResumeSection {
	sections := []ResumeSection{}
	current := ResumeSection{Title: DefaultSectionTitle, Bullets: []string{}}

	flush := func() {
		if len(current.Bullets) > 0 {
			sections = append(sections, current)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if IsHeading(line) {
			flush()
			current = ResumeSection{Title: titleCase(line), Bullets: []string{}}
			continue
		}

		current.Bullets = append(current.Bullets, line)
	}

	flush()

	return sections
}

func IsHeading(line string) bool {
	return headingPattern.MatchString(line)
}

// titleCase lowercases the heading and capitalizes the first letter of every
// space-separated word.
func titleCase(s string) string {
	words := strings.Split(strings.ToLower(s), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
