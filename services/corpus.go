package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"hmo-chatbot-backend/models"
	"hmo-chatbot-backend/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
)

// CorpusDocument is one source file of the knowledge base with its
// applicability tags resolved from the filename.
type CorpusDocument struct {
	ID           string
	Path         string
	Text         string
	Organization string
	Tier         string
}

var (
	validOrganizations = map[string]bool{"maccabi": true, "meuhedet": true, "clalit": true, models.TagAll: true}
	validTiers         = map[string]bool{"gold": true, "silver": true, "bronze": true, models.TagAll: true}
)

// LoadCorpus reads every supported file (.html, .pdf, .txt) in dir.
// Applicability follows the filename convention
// <topic>.<organization>.<tier>.<ext>; files without a recognizable tag pair
// apply to all organizations and tiers.
func LoadCorpus(dir string) ([]CorpusDocument, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading knowledge base directory %s: %w", dir, err)
	}

	var docs []CorpusDocument
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		ext := strings.ToLower(filepath.Ext(entry.Name()))

		var text string
		switch ext {
		case ".html", ".htm":
			text, err = extractHTMLText(path)
		case ".pdf":
			text, err = extractPDFText(path)
		case ".txt":
			var data []byte
			data, err = os.ReadFile(path)
			text = string(data)
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("extracting %s: %w", entry.Name(), err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		org, tier := parseFilenameTags(entry.Name())
		docs = append(docs, CorpusDocument{
			ID:           strings.TrimSuffix(entry.Name(), ext),
			Path:         path,
			Text:         text,
			Organization: org,
			Tier:         tier,
		})
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no knowledge base documents found in %s", dir)
	}
	return docs, nil
}

func parseFilenameTags(filename string) (organization, tier string) {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	parts := strings.Split(strings.ToLower(name), ".")
	if len(parts) >= 3 {
		org, tr := parts[len(parts)-2], parts[len(parts)-1]
		if validOrganizations[org] && validTiers[tr] {
			return org, tr
		}
	}
	return models.TagAll, models.TagAll
}

var blankLinesRe = regexp.MustCompile(`\n{3,}`)

func extractHTMLText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()

	var b strings.Builder
	doc.Find("body").Each(func(_ int, sel *goquery.Selection) {
		b.WriteString(sel.Text())
	})
	text := b.String()

	// squeeze per-line whitespace, keep paragraph breaks
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return blankLinesRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"), nil
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BuildChunks loads the corpus, chunks each document, and embeds every
// chunk. The result feeds either the in-memory index or the Atlas backend.
// vectorDim, when positive, rejects embeddings of any other dimension; a
// mismatch means the configured embedding model changed under the index.
func BuildChunks(ctx context.Context, dir string, chunker *Chunker, embedder Embedder, vectorDim int) ([]models.DocumentChunk, error) {
	docs, err := LoadCorpus(dir)
	if err != nil {
		return nil, err
	}

	var chunks []models.DocumentChunk
	for _, doc := range docs {
		for order, text := range chunker.Chunk(doc.Text) {
			vector, err := embedder.Embed(ctx, text)
			if err != nil {
				return nil, fmt.Errorf("%w: embedding chunk %d of %s: %v", ErrEmbeddingUnavailable, order, doc.ID, err)
			}
			if vectorDim > 0 && len(vector) != vectorDim {
				return nil, fmt.Errorf("embedding for chunk %d of %s has dimension %d, want %d", order, doc.ID, len(vector), vectorDim)
			}
			chunks = append(chunks, models.DocumentChunk{
				ID:           uuid.New().String(),
				DocumentID:   doc.ID,
				Order:        order,
				Text:         text,
				Vector:       vector,
				Organization: doc.Organization,
				Tier:         doc.Tier,
				Language:     string(utils.DetectLanguage(text)),
			})
		}
	}
	return chunks, nil
}
