package parsers

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/sourcedoc/internal/extractor/extraction"
)

var (
	rubyClassRe      = regexp.MustCompile(`^class\s+([\w:]+)(?:\s*<\s*([\w:]+))?`)
	rubyModuleRe     = regexp.MustCompile(`^module\s+([\w:]+)`)
	rubyDefRe        = regexp.MustCompile(`^def\s+(self\.)?([A-Za-z_]\w*[?!=]?|\[\]=?|[+\-*/%<>=!~^&|]+)`)
	rubyVisibilityRe = regexp.MustCompile(`^(private|protected|public)(?:\s+(.*))?$`)
	rubyAttrRe       = regexp.MustCompile(`^attr_(?:accessor|reader|writer)\s+(.+)$`)
	rubyConstRe      = regexp.MustCompile(`^([A-Z][A-Z0-9_]*)\s*=\s*([^=~].*)$`)
	rubyDocTagRe     = regexp.MustCompile(`^@param\s+(?:\[[^\]]*\]\s+)?(\w+)\s*(?:\[[^\]]*\]\s*)?(.*)$`)
	rubySymbolListRe = regexp.MustCompile(`:(\w+[?!=]?)`)
)

var rubyVisibility = map[string]memberFlags{
	"private":   flagPrivate,
	"protected": flagProtected,
	"public":    0,
}

// rubyFrame is an open class, module or "class << self" section.
type rubyFrame struct {
	class      *extraction.ParsedClass
	indent     int
	singleton  bool
	visibility memberFlags
}

type rubyScanner struct{}

// NewRubyScanner creates a scanner for .rb files.
func NewRubyScanner() Scanner {
	return &rubyScanner{}
}

type rubyState struct {
	parsed  *extraction.ParsedFile
	doc     *docBuffer
	frames  []*rubyFrame
	inBlock bool
}

// Scan implements Scanner.
func (s *rubyScanner) Scan(lines []string, parsed *extraction.ParsedFile) {
	st := &rubyState{
		parsed: parsed,
		doc:    newDocBuffer(regexParamTag(rubyDocTagRe), atTagStart, false),
	}
	for i, line := range lines {
		st.scanLine(i+1, line)
	}
}

func (st *rubyState) scanLine(lineNo int, line string) {
	trimmed := strings.TrimSpace(line)
	indent := indentOf(line)

	if st.inBlock {
		if strings.HasPrefix(line, "=end") {
			st.inBlock = false
		}
		return
	}
	if strings.HasPrefix(line, "=begin") {
		st.inBlock = true
		return
	}
	if trimmed == "" {
		return
	}
	if strings.HasPrefix(trimmed, "#") {
		st.doc.add(strings.TrimLeft(trimmed, "#"))
		return
	}

	if trimmed == "end" {
		st.closeEnd(indent)
		st.doc.reset()
		return
	}
	for f := st.top(); f != nil && indent <= f.indent; f = st.top() {
		st.frames = st.frames[:len(st.frames)-1]
	}

	st.scanCode(lineNo, trimmed, indent)
	st.doc.reset()
}

// closeEnd pops the frame that an "end" at indent closes, along with any
// deeper frames whose own "end" was never seen.
func (st *rubyState) closeEnd(indent int) {
	for f := st.top(); f != nil && f.indent > indent; f = st.top() {
		st.frames = st.frames[:len(st.frames)-1]
	}
	if f := st.top(); f != nil && f.indent == indent {
		st.frames = st.frames[:len(st.frames)-1]
	}
}

func (st *rubyState) top() *rubyFrame {
	if len(st.frames) == 0 {
		return nil
	}
	return st.frames[len(st.frames)-1]
}

func (st *rubyState) scanCode(lineNo int, trimmed string, indent int) {
	frame := st.top()
	oneLiner := strings.HasSuffix(trimmed, "; end") || strings.HasSuffix(trimmed, ";end")

	if trimmed == "class << self" {
		if frame != nil {
			st.frames = append(st.frames, &rubyFrame{class: frame.class, indent: indent, singleton: true})
		}
		return
	}
	if m := rubyClassRe.FindStringSubmatch(trimmed); m != nil {
		st.openClass(lineNo, indent, m[1], m[2], oneLiner)
		return
	}
	if m := rubyModuleRe.FindStringSubmatch(trimmed); m != nil {
		st.openClass(lineNo, indent, m[1], "", oneLiner)
		return
	}

	if m := rubyVisibilityRe.FindStringSubmatch(trimmed); m != nil && frame != nil {
		flags := rubyVisibility[m[1]]
		switch rest := strings.TrimSpace(m[2]); {
		case rest == "":
			frame.visibility = flags
		case strings.HasPrefix(rest, "def "):
			st.addDef(frame, lineNo, rest, flags)
		case strings.HasPrefix(rest, ":"):
			st.markMethods(frame.class, rest, flags)
		}
		return
	}

	if strings.HasPrefix(trimmed, "def ") {
		var flags memberFlags
		if frame != nil {
			flags = frame.visibility
		}
		st.addDef(frame, lineNo, trimmed, flags)
		return
	}

	if m := rubyAttrRe.FindStringSubmatch(trimmed); m != nil && frame != nil {
		for _, sym := range rubySymbolListRe.FindAllStringSubmatch(m[1], -1) {
			frame.class.AddProperty(extraction.PropertyInfo{
				Name:        sym[1],
				Type:        "any",
				Description: st.optionalDescription(),
			})
		}
		return
	}

	if m := rubyConstRe.FindStringSubmatch(trimmed); m != nil {
		st.parsed.AddConstant(extraction.ConstantInfo{
			Name:        m[1],
			Value:       strings.TrimSpace(m[2]),
			Description: st.optionalDescription(),
		})
	}
}

func (st *rubyState) openClass(lineNo, indent int, name, base string, oneLiner bool) {
	class := extraction.NewClass(lastSegment(name, ":"), st.parsed.Path, lineNo)
	class.Extends = base
	class.Description = st.doc.description()
	st.parsed.AddClass(class)
	if !oneLiner {
		st.frames = append(st.frames, &rubyFrame{class: class, indent: indent})
	}
}

func (st *rubyState) addDef(frame *rubyFrame, lineNo int, text string, flags memberFlags) {
	loc := rubyDefRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return
	}
	name := text[loc[4]:loc[5]]
	rest := text[loc[1]:]

	var inner string
	switch {
	case strings.HasPrefix(rest, "("):
		inner, _, _ = parenGroup(rest, 0)
	case strings.HasPrefix(rest, " ") && !strings.HasPrefix(strings.TrimSpace(rest), "="):
		inner = strings.TrimSpace(rest)
		if i := strings.Index(inner, ";"); i >= 0 {
			inner = inner[:i]
		}
	}

	fn := extraction.NewFunction(name, "unknown", st.parsed.Path, lineNo)
	fn.Parameters = parseRubyParams(inner)
	var owner *extraction.ParsedClass
	if frame != nil {
		owner = frame.class
		if frame.singleton {
			flags |= flagStatic
		}
	}
	if loc[2] >= 0 {
		flags |= flagStatic
	}
	applyFlags(fn, flags)
	st.doc.describe(fn)
	st.parsed.Attach(owner, fn)
}

// markMethods applies "private :a, :b" to methods already defined on class.
func (st *rubyState) markMethods(class *extraction.ParsedClass, symbols string, flags memberFlags) {
	for _, sym := range rubySymbolListRe.FindAllStringSubmatch(symbols, -1) {
		for _, fn := range class.Methods {
			if fn.Name == sym[1] {
				fn.IsPrivate = flags&flagPrivate != 0
				fn.IsProtected = flags&flagProtected != 0
			}
		}
	}
}

func (st *rubyState) optionalDescription() string {
	if st.doc.empty() {
		return ""
	}
	return st.doc.description()
}

// parseRubyParams parses positional, optional, keyword, splat and block
// parameters. Types are not declared in Ruby and are recorded as "any".
func parseRubyParams(inner string) []extraction.ParameterInfo {
	params := []extraction.ParameterInfo{}
	for _, piece := range splitTopLevel(inner) {
		piece = stripDefault(piece)
		if i := topLevelIndex(piece, ':'); i >= 0 {
			piece = piece[:i]
		}
		if piece = strings.TrimSpace(piece); piece == "" {
			continue
		}
		params = append(params, extraction.ParameterInfo{Name: piece, Type: "any"})
	}
	return params
}
