package extractor

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/mvp-joe/sourcedoc/internal/extractor/extraction"
	"github.com/mvp-joe/sourcedoc/internal/extractor/parsers"
)

// Language names returned by DetectLanguage.
const (
	LanguageTypeScript = "typescript"
	LanguageJavaScript = "javascript"
	LanguagePython     = "python"
	LanguageJava       = "java"
	LanguageC          = "c"
	LanguageCPP        = "cpp"
	LanguageCSharp     = "csharp"
	LanguagePHP        = "php"
	LanguageRuby       = "ruby"
	LanguageGo         = "go"
	LanguageRust       = "rust"
	LanguageSwift      = "swift"
	LanguageUnknown    = "unknown"
)

var extensionLanguages = map[string]string{
	"ts":    LanguageTypeScript,
	"tsx":   LanguageTypeScript,
	"js":    LanguageJavaScript,
	"jsx":   LanguageJavaScript,
	"py":    LanguagePython,
	"java":  LanguageJava,
	"c":     LanguageC,
	"h":     LanguageC,
	"cpp":   LanguageCPP,
	"hpp":   LanguageCPP,
	"cs":    LanguageCSharp,
	"php":   LanguagePHP,
	"rb":    LanguageRuby,
	"go":    LanguageGo,
	"rs":    LanguageRust,
	"swift": LanguageSwift,
}

// Scanners hold no state between calls, so one instance per language is shared.
var scanners = map[string]parsers.Scanner{
	LanguageTypeScript: parsers.NewTypeScriptScanner(),
	LanguageJavaScript: parsers.NewTypeScriptScanner(),
	LanguagePython:     parsers.NewPythonScanner(),
	LanguageJava:       parsers.NewJavaScanner(),
	LanguageC:          parsers.NewCPPScanner(),
	LanguageCPP:        parsers.NewCPPScanner(),
	LanguageCSharp:     parsers.NewCSharpScanner(),
	LanguagePHP:        parsers.NewPHPScanner(),
	LanguageRuby:       parsers.NewRubyScanner(),
	LanguageGo:         parsers.NewGoScanner(),
	LanguageRust:       parsers.NewRustScanner(),
	LanguageSwift:      parsers.NewSwiftScanner(),
}

// ParseFileContent extracts the documentation model from one source file.
// It never fails: unsupported extensions go through the generic scanner and
// unrecognized lines contribute nothing.
func ParseFileContent(content, path string) *extraction.ParsedFile {
	lines := splitLines(content)
	language := DetectLanguage(path)

	parsed := extraction.NewParsedFile(path)
	parsed.Language = language
	parsed.Description = extractDescription(lines, language)
	parsed.Imports = extractImports(lines, language)

	scanner, ok := scanners[language]
	if !ok {
		scanner = genericScanner{}
	}
	scanner.Scan(lines, parsed)
	return parsed
}

// DetectLanguage maps the case-insensitive extension of path to a language name.
func DetectLanguage(path string) string {
	if lang, ok := extensionLanguages[extensionOf(path)]; ok {
		return lang
	}
	return LanguageUnknown
}

// SupportedExtensions returns the extensions with a dedicated scanner, without
// the leading dot, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensionLanguages))
	for ext := range extensionLanguages {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func extensionOf(path string) string {
	base := filepath.Base(path)
	i := strings.LastIndexByte(base, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(base[i+1:])
}

func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
