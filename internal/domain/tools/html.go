package tools

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// MaxSelectorMatches bounds the elements returned for a selector
const MaxSelectorMatches = 100

// decodeBody returns the body as UTF-8 text and the charset it was read as.
// The declared charset wins; otherwise non-UTF-8 bodies are sniffed.
func decodeBody(body []byte, contentType string) (string, string) {
	name := declaredCharset(contentType)
	if name == "" {
		if utf8.Valid(body) {
			return string(body), "utf-8"
		}
		name = detectCharset(body)
	}
	if strings.EqualFold(name, "utf-8") {
		return string(body), "utf-8"
	}

	r, err := charset.NewReaderLabel(name, bytes.NewReader(body))
	if err != nil {
		return string(body), "utf-8"
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return string(body), "utf-8"
	}
	return string(decoded), strings.ToLower(name)
}

func declaredCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

func detectCharset(data []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return result.Charset
}

// selectAll returns text and inner html of elements matching selector
func selectAll(html, selector string) ([]map[string]interface{}, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	matches := []map[string]interface{}{}
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		inner, _ := s.Html()
		matches = append(matches, map[string]interface{}{
			"text": strings.TrimSpace(s.Text()),
			"html": inner,
		})
		return len(matches) < MaxSelectorMatches
	})
	return matches, nil
}

var sanitizer = bluemonday.UGCPolicy()

// sanitize strips scripts, handlers and other unsafe markup
func sanitize(html string) string {
	return sanitizer.Sanitize(html)
}
