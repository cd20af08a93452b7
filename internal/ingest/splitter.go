// Package ingest loads source documents, splits them into chunks, and
// drives the offline index build.
package ingest

import "strings"

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Split cuts text into fixed-size windows with the given overlap. Size
// and overlap count runes, so boundaries never land inside a multibyte
// character. The policy is deterministic: the same input always yields
// the same chunks. Whitespace-only windows are dropped.
func Split(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	// Overlap must leave the window moving forward.
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}

	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	contentLen := len(runes)
	step := chunkSize - overlap
	chunks := make([]string, 0, contentLen/step+1)

	for start := 0; start < contentLen; start += step {
		end := start + chunkSize
		if end > contentLen {
			end = contentLen
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == contentLen {
			break
		}
	}

	return chunks
}
