package parsers

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/sourcedoc/internal/extractor/extraction"
)

var (
	rustTypeRe     = regexp.MustCompile(`^(?:pub(?:\([^)]*\))?\s+)?(?:unsafe\s+)?(struct|enum|trait|union)\s+(\w+)`)
	rustSuperRe    = regexp.MustCompile(`^\s*(?:<.*?>)?\s*:\s*([\w:]+)`)
	rustImplRe     = regexp.MustCompile(`^(?:unsafe\s+)?impl(?:<.*?>)?\s+(?:!?([\w:]+)(?:<.*?>)?\s+for\s+)?&?(?:mut\s+)?([\w:]+)`)
	rustFnRe       = regexp.MustCompile(`^((?:pub(?:\([^)]*\))?\s+)?(?:(?:const|async|unsafe|default|extern(?:\s+"[^"]*")?)\s+)*)fn\s+(\w+)\s*(?:<.*?>)?\s*\(`)
	rustReturnRe   = regexp.MustCompile(`^\s*->\s*(.+?)\s*(?:\bwhere\b.*)?(?:\{.*|;)?\s*$`)
	rustFieldRe    = regexp.MustCompile(`^(?:pub(?:\([^)]*\))?\s+)?(\w+)\s*:\s*(.+?),?\s*(?://\s*(.*))?$`)
	rustConstRe    = regexp.MustCompile(`^(?:pub(?:\([^)]*\))?\s+)?(?:const|static)\s+(?:mut\s+)?(\w+)\s*:\s*[^=]+=\s*(.+?);?\s*$`)
	rustLifetimeRe = regexp.MustCompile(`'[a-zA-Z_]\w*(?:\s+|([^'\w\s])|$)`)
	rustArgDocRe   = regexp.MustCompile("^[*-]\\s+`(\\w+)`\\s*(?:[-:]\\s*)?(.*)$")
)

// rustModifiers: items are private unless marked pub.
var rustModifiers = modifierTable{
	clears:   map[string]memberFlags{"pub": flagPrivate},
	defaults: flagPrivate,
}

type rustScanner struct{}

// NewRustScanner creates a scanner for .rs files.
func NewRustScanner() Scanner {
	return &rustScanner{}
}

type rustState struct {
	parsed  *extraction.ParsedFile
	doc     *docBuffer
	classes classStack

	sig     string
	sigOpen bool
	sigLine int
}

// Scan implements Scanner.
func (s *rustScanner) Scan(lines []string, parsed *extraction.ParsedFile) {
	st := &rustState{
		parsed: parsed,
		doc: newDocBuffer(regexParamTag(rustArgDocRe), func(part string) bool {
			return strings.HasPrefix(part, "#")
		}, false),
	}
	for i, line := range lines {
		st.scanLine(i+1, line)
	}
}

func (st *rustState) scanLine(lineNo int, line string) {
	trimmed := strings.TrimSpace(line)
	indent := indentOf(line)

	if st.sigOpen {
		st.sig += " " + stripLifetimes(trimmed)
		st.tryFinishFn()
		return
	}
	if st.doc.consumeBlock(trimmed) {
		return
	}
	if trimmed == "" {
		return
	}
	if strings.HasPrefix(trimmed, "//!") {
		return
	}
	if st.doc.consumeLine(trimmed, "///") {
		return
	}
	if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#[") || strings.HasPrefix(trimmed, "#![") {
		return
	}
	trimmed = stripLifetimes(trimmed)

	if st.classes.closeOn(trimmed, indent) {
		st.doc.reset()
		return
	}
	st.classes.observe(trimmed, indent)

	frame := st.classes.top()
	if frame != nil {
		if st.classes.atMember(indent) {
			st.scanMember(frame, lineNo, trimmed)
		}
		st.doc.reset()
		return
	}
	if indent != 0 {
		st.doc.reset()
		return
	}

	switch {
	case rustTypeRe.MatchString(trimmed):
		st.addType(lineNo, trimmed, indent)
	case rustImplRe.MatchString(trimmed):
		m := rustImplRe.FindStringSubmatch(trimmed)
		target := st.parsed.FindClass(lastSegment(m[2], ":"))
		kind := "impl"
		if m[1] != "" {
			kind = "trait-impl"
		}
		st.openBody(target, kind, lineNo, trimmed, indent)
	case rustFnRe.MatchString(trimmed):
		st.startFn(lineNo, trimmed)
		return
	default:
		if m := rustConstRe.FindStringSubmatch(trimmed); m != nil {
			st.parsed.AddConstant(extraction.ConstantInfo{
				Name:        m[1],
				Value:       m[2],
				Description: st.optionalDescription(),
			})
		}
	}
	st.doc.reset()
}

func (st *rustState) addType(lineNo int, trimmed string, indent int) {
	m := rustTypeRe.FindStringSubmatch(trimmed)
	class := extraction.NewClass(m[2], st.parsed.Path, lineNo)
	if m[1] == "trait" {
		if s := rustSuperRe.FindStringSubmatch(trimmed[len(m[0]):]); s != nil {
			class.Extends = lastSegment(s[1], ":")
		}
	}
	class.Description = st.doc.description()
	st.parsed.AddClass(class)

	if strings.HasSuffix(trimmed, ";") {
		return
	}
	st.openBody(class, m[1], lineNo, trimmed, indent)
}

// openBody pushes a type or impl body. A body that closes on the same line is
// scanned in place and popped again.
func (st *rustState) openBody(class *extraction.ParsedClass, kind string, lineNo int, trimmed string, indent int) {
	frame := st.classes.push(class, kind, indent, 0)
	body, ok := braceBody(trimmed)
	if !ok {
		return
	}
	st.doc.reset()
	members := splitMembers(body)
	if kind == "struct" || kind == "union" {
		members = splitTopLevel(body)
	}
	for _, member := range members {
		st.scanMember(frame, lineNo, member)
	}
	st.classes.pop()
}

func (st *rustState) scanMember(frame *classFrame, lineNo int, trimmed string) {
	switch frame.kind {
	case "struct", "union":
		if m := rustFieldRe.FindStringSubmatch(trimmed); m != nil {
			frame.class.AddProperty(extraction.PropertyInfo{
				Name:        m[1],
				Type:        m[2],
				Description: orDefault(m[3], st.optionalDescription()),
			})
		}
	case "impl", "trait-impl", "trait":
		if rustFnRe.MatchString(trimmed) {
			st.startFn(lineNo, trimmed)
		}
	}
}

func (st *rustState) startFn(lineNo int, trimmed string) {
	st.sig = trimmed
	st.sigLine = lineNo
	st.sigOpen = true
	st.tryFinishFn()
}

// tryFinishFn records the pending fn once its parameter list closes.
func (st *rustState) tryFinishFn() {
	loc := rustFnRe.FindStringSubmatchIndex(st.sig)
	inner, rest, closed := parenGroup(st.sig, afterMatch(loc))
	if !closed {
		return
	}
	st.sigOpen = false

	ret := "()"
	if r := rustReturnRe.FindStringSubmatch(rest); r != nil {
		ret = r[1]
	}
	fn := extraction.NewFunction(st.sig[loc[4]:loc[5]], ret, st.parsed.Path, st.sigLine)
	params, hasSelf := parseRustParams(inner)
	fn.Parameters = params

	frame := st.classes.top()
	var owner *extraction.ParsedClass
	var flags memberFlags
	switch {
	case frame == nil:
		flags = rustModifiers.resolve(rustVisibilityWords(st.sig[loc[2]:loc[3]]))
	case frame.kind == "trait" || frame.kind == "trait-impl":
		owner = frame.class
	default:
		owner = frame.class
		flags = rustModifiers.resolve(rustVisibilityWords(st.sig[loc[2]:loc[3]]))
	}
	if frame != nil && !hasSelf {
		flags |= flagStatic
	}
	applyFlags(fn, flags)
	st.doc.describe(fn)
	st.parsed.Attach(owner, fn)
	st.doc.reset()
}

func (st *rustState) optionalDescription() string {
	if st.doc.empty() {
		return ""
	}
	return st.doc.description()
}

var lifetimeLeftovers = strings.NewReplacer("<>", "", "<, ", "<", ", >", ">", "<,", "<")

// stripLifetimes removes lifetime annotations such as 'a and 'static so that
// quote tracking in the parameter splitter only sees char literals.
func stripLifetimes(s string) string {
	if !strings.Contains(s, "'") {
		return s
	}
	return lifetimeLeftovers.Replace(rustLifetimeRe.ReplaceAllString(s, "$1"))
}

// rustVisibilityWords normalizes pub(crate) and pub(super) to pub.
func rustVisibilityWords(s string) []string {
	words := modifierWords(s)
	for i, w := range words {
		if strings.HasPrefix(w, "pub(") {
			words[i] = "pub"
		}
	}
	return words
}

// parseRustParams parses "pattern: Type" pieces and reports whether a self
// receiver was present.
func parseRustParams(inner string) ([]extraction.ParameterInfo, bool) {
	params := []extraction.ParameterInfo{}
	hasSelf := false
	for _, piece := range splitTopLevel(inner) {
		switch {
		case piece == "self", piece == "&self", piece == "&mut self", piece == "mut self",
			strings.HasPrefix(piece, "self:"), strings.HasPrefix(piece, "self :"), strings.HasPrefix(piece, "mut self:"):
			hasSelf = true
			continue
		}
		name, typ := piece, "_"
		if i := topLevelIndex(piece, ':'); i >= 0 {
			name, typ = piece[:i], strings.TrimSpace(piece[i+1:])
		}
		name = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(name), "mut "))
		params = append(params, extraction.ParameterInfo{Name: name, Type: typ})
	}
	return params, hasSelf
}
