package parsers

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/sourcedoc/internal/extractor/extraction"
)

const swiftModifierWords = `public|private|fileprivate|internal|open|static|class|final|override|mutating|nonmutating|convenience|required|dynamic|nonisolated|lazy|weak|unowned|optional`

var (
	swiftTypeRe     = regexp.MustCompile(`^((?:(?:public|private|fileprivate|internal|open|final|indirect)\s+)*)(class|struct|enum|protocol|extension|actor)\s+([\w.]+)`)
	swiftSuperRe    = regexp.MustCompile(`^\s*(?:<[^>]*>)?\s*:\s*([\w.]+)`)
	swiftFuncRe     = regexp.MustCompile(`^((?:(?:` + swiftModifierWords + `)\s+)*)func\s+([^\s(<]+)\s*(?:<[^(]*>)?\s*\(`)
	swiftInitRe     = regexp.MustCompile(`^((?:(?:` + swiftModifierWords + `)\s+)*)init[?!]?\s*(?:<[^(]*>)?\s*\(`)
	swiftPropRe     = regexp.MustCompile(`^((?:(?:` + swiftModifierWords + `)\s+)*)(?:var|let)\s+(\w+)\s*(?::\s*([^={]+?))?\s*(?:[={].*)?$`)
	swiftConstRe    = regexp.MustCompile(`^(?:(?:public|private|fileprivate|internal)\s+)?let\s+(\w+)\s*(?::\s*[^=]+?)?\s*=\s*(.+)$`)
	swiftReturnRe   = regexp.MustCompile(`->\s*(.+?)\s*(?:\bwhere\b.*)?(?:\{.*)?$`)
	swiftAttrRe     = regexp.MustCompile(`^(?:@\w+(?:\([^)]*\))?\s+)+`)
	swiftParamDocRe = regexp.MustCompile(`^-\s+(?:Parameter\s+(\w+)|([a-z_]\w*))\s*:\s*(.*)$`)
	swiftDocTagRe   = regexp.MustCompile(`^-\s+[A-Z]\w*(?:\s+\w+)?\s*:`)
)

var swiftNotTypeNames = newWordSet("func", "var", "let", "subscript", "init")

var swiftModifiers = modifierTable{
	sets: map[string]memberFlags{
		"static":      flagStatic,
		"class":       flagStatic,
		"private":     flagPrivate,
		"fileprivate": flagPrivate,
	},
}

type swiftScanner struct{}

// NewSwiftScanner creates a scanner for .swift files.
func NewSwiftScanner() Scanner {
	return &swiftScanner{}
}

type swiftState struct {
	parsed  *extraction.ParsedFile
	doc     *docBuffer
	classes classStack
}

// swiftParamTag recognizes "- Parameter name: desc" and the "- name: desc"
// entries of a "- Parameters:" list.
func swiftParamTag(part string) (string, string, bool) {
	m := swiftParamDocRe.FindStringSubmatch(part)
	if m == nil {
		return "", "", false
	}
	return m[1] + m[2], strings.TrimSpace(m[3]), true
}

func swiftTagStart(part string) bool {
	return swiftDocTagRe.MatchString(part)
}

// Scan implements Scanner.
func (s *swiftScanner) Scan(lines []string, parsed *extraction.ParsedFile) {
	st := &swiftState{
		parsed: parsed,
		doc:    newDocBuffer(swiftParamTag, swiftTagStart, false),
	}
	for i, line := range lines {
		st.scanLine(i+1, line)
	}
}

func (st *swiftState) scanLine(lineNo int, line string) {
	trimmed := strings.TrimSpace(line)
	indent := indentOf(line)

	if st.doc.consumeBlock(trimmed) {
		return
	}
	if trimmed == "" {
		return
	}
	if st.doc.consumeLine(trimmed, "///") {
		return
	}
	if strings.HasPrefix(trimmed, "//") {
		return
	}
	if strings.HasPrefix(trimmed, "@") {
		rest := swiftAttrRe.ReplaceAllString(trimmed+" ", "")
		if strings.TrimSpace(rest) == "" {
			return
		}
		trimmed = strings.TrimSpace(rest)
	}
	if st.classes.closeOn(trimmed, indent) {
		st.doc.reset()
		return
	}
	st.classes.observe(trimmed, indent)

	frame := st.classes.top()
	if frame != nil && !st.classes.atMember(indent) {
		st.doc.reset()
		return
	}
	if frame == nil && indent != 0 {
		st.doc.reset()
		return
	}

	if st.matchType(lineNo, trimmed, indent) {
		return
	}

	if frame != nil {
		st.matchMember(frame, lineNo, trimmed)
		st.doc.reset()
		return
	}
	if !st.matchFunc(nil, lineNo, trimmed) {
		if m := swiftConstRe.FindStringSubmatch(trimmed); m != nil {
			st.parsed.AddConstant(extraction.ConstantInfo{
				Name:        m[1],
				Value:       strings.TrimSpace(m[2]),
				Description: st.optionalDescription(),
			})
		}
	}
	st.doc.reset()
}

func (st *swiftState) matchMember(frame *classFrame, lineNo int, trimmed string) {
	switch {
	case st.matchFunc(frame.class, lineNo, trimmed):
	case st.matchInit(frame.class, lineNo, trimmed):
	default:
		st.matchProperty(frame, trimmed)
	}
}

func (st *swiftState) matchType(lineNo int, trimmed string, indent int) bool {
	m := swiftTypeRe.FindStringSubmatch(trimmed)
	if m == nil || swiftNotTypeNames.has(m[3]) {
		return false
	}
	kind := m[2]
	var class *extraction.ParsedClass
	if kind == "extension" {
		class = st.parsed.FindClass(lastSegment(m[3], "."))
	}
	if class == nil {
		class = extraction.NewClass(lastSegment(m[3], "."), st.parsed.Path, lineNo)
		if s := swiftSuperRe.FindStringSubmatch(trimmed[len(m[0]):]); s != nil {
			class.Extends = s[1]
		}
		class.Description = st.doc.description()
		st.parsed.AddClass(class)
	}
	st.doc.reset()

	frame := st.classes.push(class, kind, indent, 0)
	if body, ok := braceBody(trimmed); ok {
		for _, member := range splitMembers(body) {
			st.matchMember(frame, lineNo, strings.TrimSuffix(member, ";"))
		}
		st.classes.pop()
	}
	return true
}

func (st *swiftState) matchFunc(owner *extraction.ParsedClass, lineNo int, trimmed string) bool {
	loc := swiftFuncRe.FindStringSubmatchIndex(trimmed)
	if loc == nil {
		return false
	}
	inner, rest, _ := parenGroup(trimmed, afterMatch(loc))
	ret := "Void"
	if r := swiftReturnRe.FindStringSubmatch(rest); r != nil {
		ret = r[1]
	}
	st.addFunction(owner, lineNo, trimmed[loc[4]:loc[5]], ret, inner, trimmed[loc[2]:loc[3]])
	return true
}

func (st *swiftState) matchInit(owner *extraction.ParsedClass, lineNo int, trimmed string) bool {
	loc := swiftInitRe.FindStringSubmatchIndex(trimmed)
	if loc == nil {
		return false
	}
	inner, _, _ := parenGroup(trimmed, afterMatch(loc))
	st.addFunction(owner, lineNo, "init", "Void", inner, trimmed[loc[2]:loc[3]])
	return true
}

func (st *swiftState) addFunction(owner *extraction.ParsedClass, lineNo int, name, ret, inner, modifiers string) {
	fn := extraction.NewFunction(name, ret, st.parsed.Path, lineNo)
	fn.Parameters = parseSwiftParams(inner)
	swiftModifiers.apply(fn, modifierWords(modifiers))
	st.doc.describe(fn)
	st.parsed.Attach(owner, fn)
}

func (st *swiftState) matchProperty(frame *classFrame, trimmed string) {
	m := swiftPropRe.FindStringSubmatch(trimmed)
	if m == nil {
		return
	}
	frame.class.AddProperty(extraction.PropertyInfo{
		Name:        m[2],
		Type:        orDefault(m[3], "inferred"),
		Description: st.optionalDescription(),
	})
}

func (st *swiftState) optionalDescription() string {
	if st.doc.empty() {
		return ""
	}
	return st.doc.description()
}

// parseSwiftParams parses "[external] internal: Type [= default]" pieces and
// records the internal name.
func parseSwiftParams(inner string) []extraction.ParameterInfo {
	params := []extraction.ParameterInfo{}
	for _, piece := range splitTopLevel(inner) {
		piece = stripDefault(piece)
		i := topLevelIndex(piece, ':')
		if i < 0 {
			continue
		}
		names := strings.Fields(piece[:i])
		if len(names) == 0 {
			continue
		}
		params = append(params, extraction.ParameterInfo{
			Name: names[len(names)-1],
			Type: strings.TrimSpace(piece[i+1:]),
		})
	}
	return params
}
