package sources

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
	defaultSelector  = "p"
)

type htmlReader struct {
	client HTTPClient
}

// NewHTMLReader fetches a web page and reads one input per element matching the
// source's selector, preceded by the page's OG title and description.
func NewHTMLReader(client HTTPClient) Reader {
	return &htmlReader{client: client}
}

func (h *htmlReader) Type() string { return TypeHTML }

func (h *htmlReader) Read(ctx context.Context, src Source) ([]Input, error) {
	body, err := fetchBody(ctx, h.client, src)
	if err != nil {
		return nil, err
	}
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	texts, err := extractTexts(body, ConfigString(src, ConfigSelectorKey, defaultSelector))
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", src.ID, err)
	}
	return buildInputs(texts), nil
}

func extractTexts(body []byte, selector string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	meta := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	texts := []string{
		firstNonEmpty(
			meta(`meta[property="og:title"]`),
			doc.Find("title").First().Text(),
		),
		firstNonEmpty(
			meta(`meta[property="og:description"]`),
			meta(`meta[name="description"]`),
		),
	}

	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		texts = append(texts, strings.Join(strings.Fields(s.Text()), " "))
	})
	return texts, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
