package extractor

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/sourcedoc/internal/extractor/extraction"
	"github.com/mvp-joe/sourcedoc/internal/extractor/parsers"
)

// descriptionScanLimit bounds how far into a file the header comment is searched.
const descriptionScanLimit = 20

var (
	preambleRe  = regexp.MustCompile(`^(?:import[\s({"]|from\s|package\s|using\s|namespace\s|use\s|require|include|#include|#import|<\?php|'use strict'|"use strict")`)
	docstringRe = regexp.MustCompile(`^[rRuUbB]{0,2}("""|''')`)
)

// hashCommentLanguages treat '#' as a line comment.
var hashCommentLanguages = map[string]bool{
	LanguagePython:  true,
	LanguageRuby:    true,
	LanguagePHP:     true,
	LanguageUnknown: true,
}

// extractDescription returns the cleaned text of the file's leading comment:
// one block comment, one run of line comments, or a Python module docstring.
func extractDescription(lines []string, language string) string {
	var collected []string
	inBlock := false
	docQuote := ""

	limit := min(len(lines), descriptionScanLimit)
	for _, line := range lines[:limit] {
		trimmed := strings.TrimSpace(line)

		if docQuote != "" {
			if end := strings.Index(trimmed, docQuote); end >= 0 {
				collected = append(collected, trimmed[:end])
				return cleanDescription(collected)
			}
			collected = append(collected, trimmed)
			continue
		}

		if inBlock {
			text, closed := strings.CutSuffix(trimmed, "*/")
			if i := strings.Index(text, "*/"); i >= 0 {
				text, closed = text[:i], true
			}
			addBlockLine(&collected, text)
			if closed {
				return cleanDescription(collected)
			}
			continue
		}

		if trimmed == "" {
			if len(collected) > 0 {
				break
			}
			continue
		}

		if language == LanguagePython && len(collected) == 0 {
			if m := docstringRe.FindStringSubmatch(trimmed); m != nil {
				body := trimmed[len(m[0]):]
				if end := strings.Index(body, m[1]); end >= 0 {
					return cleanDescription([]string{body[:end]})
				}
				collected = append(collected, body)
				docQuote = m[1]
				continue
			}
		}

		if strings.HasPrefix(trimmed, "/*") {
			if len(collected) > 0 {
				break
			}
			text := strings.TrimLeft(trimmed[2:], "*!")
			if end := strings.Index(text, "*/"); end >= 0 {
				addBlockLine(&collected, text[:end])
				return cleanDescription(collected)
			}
			addBlockLine(&collected, text)
			inBlock = true
			continue
		}

		if text, ok := lineComment(trimmed, language); ok {
			collected = append(collected, text)
			continue
		}

		if len(collected) > 0 {
			break
		}
		if preambleRe.MatchString(trimmed) || strings.HasPrefix(trimmed, "#") {
			continue
		}
		break
	}
	return cleanDescription(collected)
}

// lineComment strips a single-line comment marker from trimmed.
func lineComment(trimmed, language string) (string, bool) {
	for _, prefix := range []string{"///", "//!", "//"} {
		if strings.HasPrefix(trimmed, prefix) {
			return strings.TrimSpace(trimmed[len(prefix):]), true
		}
	}
	if hashCommentLanguages[language] && strings.HasPrefix(trimmed, "#") && !strings.HasPrefix(trimmed, "#!") {
		return strings.TrimSpace(strings.TrimLeft(trimmed, "#")), true
	}
	return "", false
}

// addBlockLine keeps the part of a block comment line before its first tag.
func addBlockLine(collected *[]string, text string) {
	text = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(text), "*"))
	text = strings.TrimSpace(parsers.SplitInlineTags(text)[0])
	if text == "" || strings.HasPrefix(text, "@") {
		return
	}
	*collected = append(*collected, text)
}

func cleanDescription(collected []string) string {
	if text := parsers.CleanDocText(strings.Join(collected, " ")); text != "" {
		return text
	}
	return extraction.DefaultFileDescription
}
