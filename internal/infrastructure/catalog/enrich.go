package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/deeplearners/fashion-assistant/internal/core/domain"
)

const descriptionLimit = 100

// rawRecord is one catalog row before enrichment, keyed by the source
// column names.
type rawRecord struct {
	ID          string
	DisplayName string
	Description string
	ArticleType string
	BaseColour  string
	Gender      string
	Usage       string
	Season      string
	Link        string
}

// enrich turns a raw row into an indexable product. The document text leads
// with the display name and cleaned description, then spells out the article
// type with its explanation so near-synonym categories separate in vector
// space.
func enrich(record rawRecord, explanations map[string]string) domain.CatalogProduct {
	desc := truncateRunes(stripHTML(record.Description), descriptionLimit)
	explanation := explanations[record.ArticleType]

	document := fmt.Sprintf(
		"%s. %s This product is a %s: %s It is %s in color, designed for %s. Best used in %s during %s.",
		record.DisplayName, desc, record.ArticleType, explanation,
		record.BaseColour, record.Gender, record.Usage, record.Season,
	)

	metadata := map[string]string{
		"product_name":         record.DisplayName,
		"article_type":         record.ArticleType,
		"base_colour":          record.BaseColour,
		"gender":               record.Gender,
		"usage":                record.Usage,
		"season":               record.Season,
		"category_explanation": explanation,
	}
	if record.Link != "" {
		metadata["link"] = record.Link
	}

	return domain.CatalogProduct{
		ID:          record.ID,
		DisplayName: record.DisplayName,
		ArticleType: record.ArticleType,
		Document:    document,
		Link:        record.Link,
		Metadata:    metadata,
	}
}

// stripHTML flattens markup into plain text. Catalog descriptions arrive as
// HTML fragments; tags become single spaces so words do not run together.
func stripHTML(raw string) string {
	if raw == "" {
		return ""
	}
	if !strings.ContainsRune(raw, '<') {
		return strings.TrimSpace(raw)
	}

	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(raw))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(tokenizer.Text())
			b.WriteByte(' ')
		}
	}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
