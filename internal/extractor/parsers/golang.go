package parsers

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mvp-joe/sourcedoc/internal/extractor/extraction"
)

var (
	goTypeRe       = regexp.MustCompile(`^type\s+(\w+)(?:\[[^\]]*\])?\s+(struct|interface)\s*\{(\s*\})?`)
	goFuncRe       = regexp.MustCompile(`^func\s+(?:\(\s*(?:\w+\s+)?\*?\s*([\w.]+)(?:\[[^\]]*\])?\s*\)\s*)?(\w+)\s*(?:\[[^\]]*\])?\s*\(`)
	goFieldRe      = regexp.MustCompile("^(\\w+(?:\\s*,\\s*\\w+)*)\\s+([^\\s`/][^`]*?)\\s*(?:`[^`]*`)?\\s*(?://\\s*(.*))?$")
	goEmbeddedRe   = regexp.MustCompile("^(\\*?[\\w.]+(?:\\[[^\\]]*\\])?)\\s*(?:`[^`]*`)?\\s*(?://\\s*(.*))?$")
	goIfaceMethRe  = regexp.MustCompile(`^(\w+)\s*(?:\[[^\]]*\])?\s*\(`)
	goConstRe      = regexp.MustCompile(`^const\s+(\w+)(?:\s+[\w.\[\]*]+)?\s*=\s*(.+?)\s*(?://\s*(.*))?$`)
	goConstEntryRe = regexp.MustCompile(`^(\w+)(?:\s+[\w.\[\]*]+)?(?:\s*=\s*(.+?))?\s*(?://\s*(.*))?$`)
)

type goScanner struct{}

// NewGoScanner creates a scanner for .go files.
func NewGoScanner() Scanner {
	return &goScanner{}
}

type goState struct {
	parsed  *extraction.ParsedFile
	doc     *docBuffer
	classes classStack

	inConst bool

	sig     string
	sigOpen bool
	sigLine int
}

// Scan implements Scanner.
func (s *goScanner) Scan(lines []string, parsed *extraction.ParsedFile) {
	st := &goState{
		parsed: parsed,
		doc:    newDocBuffer(nil, nil, false),
	}
	for i, line := range lines {
		st.scanLine(i+1, line)
	}
}

func (st *goState) scanLine(lineNo int, line string) {
	trimmed := strings.TrimSpace(line)
	indent := indentOf(line)

	if st.sigOpen {
		st.sig += " " + trimmed
		st.tryFinishFunc()
		return
	}
	if st.doc.consumeBlock(trimmed) {
		return
	}
	if trimmed == "" {
		st.doc.reset()
		return
	}
	if st.doc.consumeLine(trimmed, "//") {
		return
	}

	if st.inConst {
		st.scanConstEntry(trimmed)
		return
	}
	if st.classes.closeOn(trimmed, indent) {
		st.doc.reset()
		return
	}
	st.classes.observe(trimmed, indent)

	if frame := st.classes.top(); frame != nil {
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
	case goTypeRe.MatchString(trimmed):
		m := goTypeRe.FindStringSubmatch(trimmed)
		class := extraction.NewClass(m[1], st.parsed.Path, lineNo)
		class.Description = st.doc.description()
		st.parsed.AddClass(class)
		if m[3] == "" {
			st.classes.push(class, m[2], indent, 0)
		}
	case goFuncRe.MatchString(trimmed):
		st.sig = trimmed
		st.sigLine = lineNo
		st.sigOpen = true
		st.tryFinishFunc()
		return
	case trimmed == "const (":
		st.inConst = true
		st.doc.reset()
		return
	default:
		if m := goConstRe.FindStringSubmatch(trimmed); m != nil {
			st.addConstant(m[1], m[2], m[3])
		}
	}
	st.doc.reset()
}

func (st *goState) scanMember(frame *classFrame, lineNo int, trimmed string) {
	if frame.kind == "interface" {
		loc := goIfaceMethRe.FindStringSubmatchIndex(trimmed)
		if loc == nil {
			return
		}
		inner, rest, _ := parenGroup(trimmed, afterMatch(loc))
		fn := st.newFunc(trimmed[loc[2]:loc[3]], inner, rest, lineNo)
		st.parsed.Attach(frame.class, fn)
		return
	}

	if m := goFieldRe.FindStringSubmatch(trimmed); m != nil {
		desc := orDefault(m[3], st.optionalDescription())
		for _, name := range strings.Split(m[1], ",") {
			frame.class.AddProperty(extraction.PropertyInfo{
				Name:        strings.TrimSpace(name),
				Type:        m[2],
				Description: desc,
			})
		}
		return
	}
	if m := goEmbeddedRe.FindStringSubmatch(trimmed); m != nil {
		typ := m[1]
		frame.class.AddProperty(extraction.PropertyInfo{
			Name:        lastSegment(stripGenerics(strings.TrimPrefix(typ, "*")), "."),
			Type:        typ,
			Description: orDefault(m[2], st.optionalDescription()),
		})
	}
}

// tryFinishFunc records the pending func declaration once its parameter list
// closes. Parameter lists spanning several lines accumulate until then.
func (st *goState) tryFinishFunc() {
	loc := goFuncRe.FindStringSubmatchIndex(st.sig)
	inner, rest, closed := parenGroup(st.sig, afterMatch(loc))
	if !closed {
		return
	}
	st.sigOpen = false

	fn := st.newFunc(st.sig[loc[4]:loc[5]], inner, rest, st.sigLine)
	var owner *extraction.ParsedClass
	if loc[2] >= 0 {
		owner = st.parsed.FindClass(lastSegment(st.sig[loc[2]:loc[3]], "."))
	}
	st.parsed.Attach(owner, fn)
	st.doc.reset()
}

func (st *goState) newFunc(name, inner, rest string, lineNo int) *extraction.ParsedFunction {
	fn := extraction.NewFunction(name, orDefault(goReturnType(rest), "void"), st.parsed.Path, lineNo)
	fn.Parameters = parseGoParams(inner)
	r, _ := utf8.DecodeRuneInString(name)
	fn.IsPrivate = !unicode.IsUpper(r)
	st.doc.describe(fn)
	return fn
}

func (st *goState) scanConstEntry(trimmed string) {
	if strings.HasPrefix(trimmed, ")") {
		st.inConst = false
		st.doc.reset()
		return
	}
	if m := goConstEntryRe.FindStringSubmatch(trimmed); m != nil {
		st.addConstant(m[1], m[2], m[3])
	}
	st.doc.reset()
}

func (st *goState) addConstant(name, value, trailing string) {
	st.parsed.AddConstant(extraction.ConstantInfo{
		Name:        name,
		Value:       strings.TrimSpace(value),
		Description: orDefault(trailing, st.optionalDescription()),
	})
}

func (st *goState) optionalDescription() string {
	if st.doc.empty() {
		return ""
	}
	return st.doc.description()
}

// goReturnType returns the result list that follows a parameter list, without
// the function body. The body brace is the first '{' outside brackets that
// is preceded by a space, which keeps interface{} and struct{} results intact.
func goReturnType(rest string) string {
	depth := 0
	for i := 0; i < len(rest); i++ {
		switch c := rest[i]; c {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case '{':
			if depth == 0 && (i == 0 || rest[i-1] == ' ') {
				return strings.TrimSpace(rest[:i])
			}
		case '/':
			if depth == 0 && strings.HasPrefix(rest[i:], "//") {
				return strings.TrimSpace(rest[:i])
			}
		}
	}
	return strings.TrimSpace(rest)
}

// parseGoParams parses "name Type" pieces. Grouped names such as "a, b int"
// take the type of the next typed piece; all-unnamed lists record "_" names.
func parseGoParams(inner string) []extraction.ParameterInfo {
	pieces := splitTopLevel(inner)
	params := make([]extraction.ParameterInfo, len(pieces))
	lastType := ""
	for i := len(pieces) - 1; i >= 0; i-- {
		piece := pieces[i]
		if sp := strings.IndexAny(piece, " \t"); sp >= 0 {
			params[i] = extraction.ParameterInfo{
				Name: piece[:sp],
				Type: strings.TrimSpace(piece[sp+1:]),
			}
			lastType = params[i].Type
			continue
		}
		if lastType != "" {
			params[i] = extraction.ParameterInfo{Name: piece, Type: lastType}
			continue
		}
		params[i] = extraction.ParameterInfo{Name: "_", Type: piece}
	}
	return params
}
