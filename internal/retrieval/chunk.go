package retrieval

import "strings"

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 500
	// DefaultChunkOverlap is the character overlap between adjacent chunks.
	DefaultChunkOverlap = 50
)

// section is a header-delimited slice of a document.
type section struct {
	title string
	body  string
}

// splitSections divides markdown content on header lines. Content before
// the first header lands in an "Overview" section.
func splitSections(content string) []section {
	var sections []section
	current := "Overview"
	var lines []string

	flush := func() {
		body := strings.TrimSpace(strings.Join(lines, "\n"))
		if body != "" {
			sections = append(sections, section{title: current, body: body})
		}
		lines = lines[:0]
	}

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "#") {
			flush()
			current = strings.TrimSpace(strings.TrimLeft(line, "#"))
			continue
		}
		lines = append(lines, line)
	}
	flush()

	return sections
}

// chunkText splits text into chunks of at most size characters with the
// given overlap, breaking at word boundaries where possible.
func chunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if len(text) <= size {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			end = len(text)
		} else {
			// Back up to a word boundary.
			boundary := end
			for boundary > start && text[boundary] != ' ' {
				boundary--
			}
			if boundary > start {
				end = boundary
			}
		}

		chunk := strings.TrimSpace(text[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end == len(text) {
			break
		}
		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks
}
