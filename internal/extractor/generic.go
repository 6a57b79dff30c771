package extractor

import (
	"regexp"

	"github.com/mvp-joe/sourcedoc/internal/extractor/extraction"
)

var (
	genericFuncRe  = regexp.MustCompile(`\b(?:function|def)\s+([A-Za-z_$][\w$]*)\s*\(`)
	genericTypedRe = regexp.MustCompile(`\b(?:void|int|string|bool|boolean|float|double|char|long|auto)\s+([A-Za-z_]\w*)\s*\(`)
)

// genericScanner records loosely function-like lines for languages without a
// dedicated scanner. It extracts no parameters.
type genericScanner struct{}

func (genericScanner) Scan(lines []string, parsed *extraction.ParsedFile) {
	for i, line := range lines {
		m := genericFuncRe.FindStringSubmatch(line)
		if m == nil {
			m = genericTypedRe.FindStringSubmatch(line)
		}
		if m == nil {
			continue
		}
		parsed.Attach(nil, extraction.NewFunction(m[1], "unknown", parsed.Path, i+1))
	}
}
