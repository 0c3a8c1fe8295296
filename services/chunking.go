package services

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Chunker splits document text into overlapping chunks with paragraph and
// sentence boundary awareness.
type Chunker struct {
	maxChunkSize   int
	overlap        int
	minChunkSize   int
	sentenceRegex  *regexp.Regexp
	paragraphRegex *regexp.Regexp
}

// NewChunker creates a chunker. Sizes are in characters.
func NewChunker(maxChunkSize, overlap, minChunkSize int) *Chunker {
	return &Chunker{
		maxChunkSize:   maxChunkSize,
		overlap:        overlap,
		minChunkSize:   minChunkSize,
		sentenceRegex:  regexp.MustCompile(`[.!?]+[\s]+`),
		paragraphRegex: regexp.MustCompile(`\n\n+`),
	}
}

// Chunk splits text into chunks of at most maxChunkSize characters,
// preferring paragraph boundaries and carrying overlap characters of
// trailing context into the next chunk.
func (c *Chunker) Chunk(text string) []string {
	paragraphs := filterEmpty(c.paragraphRegex.Split(text, -1))
	if len(paragraphs) == 0 {
		return nil
	}

	var chunks []string
	current := new(strings.Builder)
	currentSize := 0

	for _, paragraph := range paragraphs {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		// oversized paragraphs are split at sentence boundaries first
		for _, piece := range c.splitOversized(paragraph) {
			pieceSize := utf8.RuneCountInString(piece)

			if currentSize+pieceSize > c.maxChunkSize && currentSize >= c.minChunkSize {
				chunks = append(chunks, current.String())

				current = new(strings.Builder)
				currentSize = 0
				if c.overlap > 0 && len(chunks) > 0 {
					tail := overlapTail(chunks[len(chunks)-1], c.overlap)
					if tail != "" {
						current.WriteString(tail)
						currentSize += utf8.RuneCountInString(tail)
					}
				}
			}

			if current.Len() > 0 {
				current.WriteString("\n\n")
				currentSize += 2
			}
			current.WriteString(piece)
			currentSize += pieceSize
		}
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func (c *Chunker) splitOversized(paragraph string) []string {
	if utf8.RuneCountInString(paragraph) <= c.maxChunkSize {
		return []string{paragraph}
	}

	sentences := c.sentenceRegex.Split(paragraph, -1)
	var pieces []string
	current := new(strings.Builder)
	currentLen := 0
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		size := utf8.RuneCountInString(sentence)
		if currentLen > 0 && currentLen+size > c.maxChunkSize {
			pieces = append(pieces, current.String())
			current = new(strings.Builder)
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteString(" ")
			currentLen++
		}
		current.WriteString(sentence)
		currentLen += size
	}
	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}
	return pieces
}

// overlapTail returns the last n characters of text, extended left to the
// nearest word boundary so overlap never starts mid-word.
func overlapTail(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	tail := string(runes[len(runes)-n:])
	if idx := strings.IndexAny(tail, " \n\t"); idx >= 0 {
		tail = tail[idx+1:]
	}
	return strings.TrimSpace(tail)
}

func filterEmpty(parts []string) []string {
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
