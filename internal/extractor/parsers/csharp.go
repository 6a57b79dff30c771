package parsers

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/sourcedoc/internal/extractor/extraction"
)

const csModifierWords = `public|private|protected|internal|static|readonly|virtual|override|abstract|sealed|async|extern|unsafe|new|partial|const|volatile|required`

var (
	csClassRe    = regexp.MustCompile(`^((?:(?:public|private|protected|internal|static|sealed|abstract|partial|readonly|unsafe|new|file)\s+)*)(class|interface|struct|record(?:\s+struct|\s+class)?|enum)\s+(\w+)`)
	csBaseRe     = regexp.MustCompile(`^\s*(?:<[^>]*>)?\s*(?:\([^)]*\))?\s*:\s*([\w.]+(?:<[^>]*>)?)`)
	csMethodRe   = regexp.MustCompile(`^((?:(?:` + csModifierWords + `)\s+)*)([\w.]+(?:<[^()]*>)?(?:\[[,\s]*\])*\??)\s+(\w+)\s*(?:<[^()]*>)?\s*\(`)
	csCtorRe     = regexp.MustCompile(`^((?:(?:public|private|protected|internal|static)\s+)*)(~?\w+)\s*\(`)
	csPropertyRe = regexp.MustCompile(`^((?:(?:` + csModifierWords + `)\s+)*)([\w.]+(?:<[^()]*>)?(?:\[[,\s]*\])*\??)\s+(\w+)\s*(?:\{\s*(?:get|set|init|private|protected|internal)|=>)`)
	csFieldRe    = regexp.MustCompile(`^((?:(?:` + csModifierWords + `)\s+)*)([\w.]+(?:<[^()]*>)?(?:\[[,\s]*\])*\??)\s+(\w+)\s*(?:=\s*(.*?))?;\s*$`)
	csTailRe     = regexp.MustCompile(`^\s*(?:where\s+.+?)?\s*(?:\{.*|;|=>.*|:\s*(?:base|this)\s*\(.*)?\s*$`)
	csSummaryRe  = regexp.MustCompile(`</?summary>|</?remarks>|</?para>`)
	csParamOpen  = regexp.MustCompile(`<param\s+name\s*=\s*"(\w+)"\s*>(.*)$`)
	csSeeRe      = regexp.MustCompile(`<(?:see|seealso)\s+(?:cref|langword|href)\s*=\s*"([^"]*)"\s*/>`)
	csParamRefRe = regexp.MustCompile(`<(?:paramref|typeparamref)\s+name\s*=\s*"([^"]*)"\s*/>`)
	csSkipTagRe  = regexp.MustCompile(`<(returns|exception|typeparam|example|value)\b[^>]*>`)
	csAttrRe     = regexp.MustCompile(`^\[[^\]]*\]\s*`)
)

var csNotTypes = newWordSet(
	"return", "new", "else", "throw", "case", "yield", "await", "using", "namespace",
	"if", "for", "foreach", "while", "switch", "catch", "lock", "var", "goto",
)

// csMemberModifiers: members without an access keyword are private.
var csMemberModifiers = modifierTable{
	sets: map[string]memberFlags{
		"static":    flagStatic,
		"const":     flagStatic,
		"protected": flagProtected,
	},
	clears: map[string]memberFlags{
		"public":    flagPrivate,
		"internal":  flagPrivate,
		"protected": flagPrivate,
	},
	defaults: flagPrivate,
}

// csInterfaceModifiers: interface members are public unless marked otherwise.
var csInterfaceModifiers = modifierTable{
	sets: map[string]memberFlags{
		"static":    flagStatic,
		"private":   flagPrivate,
		"protected": flagProtected,
	},
}

var csParamPrefixes = newWordSet("ref", "out", "in", "params", "this", "scoped")

type csharpScanner struct{}

// NewCSharpScanner creates a scanner for .cs files.
func NewCSharpScanner() Scanner {
	return &csharpScanner{}
}

// csDoc accumulates /// XML doc comments. openParam is the parameter whose
// <param> tag was the last one opened without being closed on its line.
type csDoc struct {
	summary   []string
	params    map[string]string
	openParam string
	skipping  bool
}

func (d *csDoc) reset() {
	d.summary = d.summary[:0]
	d.params = map[string]string{}
	d.openParam = ""
	d.skipping = false
}

func (d *csDoc) empty() bool {
	return len(d.summary) == 0 && len(d.params) == 0
}

func (d *csDoc) add(text string) {
	text = csSeeRe.ReplaceAllString(text, "$1")
	text = csParamRefRe.ReplaceAllString(text, "$1")

	if m := csParamOpen.FindStringSubmatch(text); m != nil {
		body, closed := strings.CutSuffix(strings.TrimSpace(m[2]), "</param>")
		if i := strings.Index(body, "</param>"); i >= 0 {
			body, closed = body[:i], true
		}
		d.params[m[1]] = strings.TrimSpace(body)
		d.openParam = ""
		if !closed {
			d.openParam = m[1]
		}
		d.skipping = false
		return
	}
	if d.openParam != "" {
		body, closed := strings.CutSuffix(strings.TrimSpace(text), "</param>")
		d.params[d.openParam] = strings.TrimSpace(d.params[d.openParam] + " " + body)
		if closed {
			d.openParam = ""
		}
		return
	}
	if csSkipTagRe.MatchString(text) {
		d.skipping = !strings.Contains(text, "</")
		return
	}
	if d.skipping {
		if strings.Contains(text, "</") {
			d.skipping = false
		}
		return
	}
	text = strings.TrimSpace(csSummaryRe.ReplaceAllString(text, " "))
	if text != "" {
		d.summary = append(d.summary, text)
	}
}

func (d *csDoc) description() string {
	if text := CleanDocText(strings.Join(d.summary, " ")); text != "" {
		return text
	}
	return extraction.DefaultDescription
}

type csState struct {
	parsed  *extraction.ParsedFile
	doc     csDoc
	block   *docBuffer
	classes classStack
}

// Scan implements Scanner.
func (s *csharpScanner) Scan(lines []string, parsed *extraction.ParsedFile) {
	st := &csState{
		parsed: parsed,
		block:  newDocBuffer(nil, atTagStart, false),
	}
	st.doc.reset()
	for i, line := range lines {
		st.scanLine(i+1, line)
	}
}

func (st *csState) scanLine(lineNo int, line string) {
	trimmed := strings.TrimSpace(line)
	indent := indentOf(line)

	if st.block.consumeBlock(trimmed) {
		return
	}
	if trimmed == "" {
		return
	}
	if strings.HasPrefix(trimmed, "///") {
		st.doc.add(strings.TrimSpace(trimmed[3:]))
		return
	}
	if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") {
		return
	}
	if strings.HasPrefix(trimmed, "[") {
		rest := strings.TrimSpace(csAttrRe.ReplaceAllString(trimmed, ""))
		if rest == "" {
			return
		}
		trimmed = rest
	}
	if st.classes.closeOn(trimmed, indent) {
		st.reset()
		return
	}
	st.classes.observe(trimmed, indent)

	if m := csClassRe.FindStringSubmatch(trimmed); m != nil {
		class := extraction.NewClass(m[3], st.parsed.Path, lineNo)
		if b := csBaseRe.FindStringSubmatch(trimmed[len(m[0]):]); b != nil {
			class.Extends = stripGenerics(b[1])
		}
		class.Description = st.description()
		st.parsed.AddClass(class)
		frame := st.classes.push(class, strings.Fields(m[2])[0], indent, 0)
		st.reset()
		if body, ok := braceBody(trimmed); ok {
			members := splitMembers(body)
			if frame.kind == "enum" {
				members = splitTopLevel(body)
			}
			for _, member := range members {
				st.matchMember(frame, lineNo, member)
			}
			st.classes.pop()
		}
		return
	}

	frame := st.classes.top()
	if frame == nil || !st.classes.atMember(indent) {
		st.reset()
		return
	}
	st.matchMember(frame, lineNo, trimmed)
	st.reset()
}

func (st *csState) matchMember(frame *classFrame, lineNo int, trimmed string) {
	switch {
	case st.matchConstructor(frame, lineNo, trimmed):
	case st.matchMethod(frame, lineNo, trimmed):
	case st.matchProperty(frame, trimmed):
	default:
		st.matchField(frame, trimmed)
	}
}

func (st *csState) reset() {
	st.doc.reset()
	st.block.reset()
}

func (st *csState) description() string {
	if !st.doc.empty() {
		return st.doc.description()
	}
	return st.block.description()
}

func (st *csState) modifiers(frame *classFrame) modifierTable {
	if frame.kind == "interface" {
		return csInterfaceModifiers
	}
	return csMemberModifiers
}

func (st *csState) matchConstructor(frame *classFrame, lineNo int, trimmed string) bool {
	loc := csCtorRe.FindStringSubmatchIndex(trimmed)
	if loc == nil {
		return false
	}
	name := trimmed[loc[4]:loc[5]]
	if strings.TrimPrefix(name, "~") != frame.class.Name {
		return false
	}
	inner, rest, _ := parenGroup(trimmed, afterMatch(loc))
	if !csTailRe.MatchString(rest) {
		return false
	}
	st.addMethod(frame, lineNo, name, "void", inner, modifierWords(trimmed[loc[2]:loc[3]]))
	return true
}

func (st *csState) matchMethod(frame *classFrame, lineNo int, trimmed string) bool {
	loc := csMethodRe.FindStringSubmatchIndex(trimmed)
	if loc == nil {
		return false
	}
	ret := trimmed[loc[4]:loc[5]]
	if csNotTypes.has(ret) {
		return false
	}
	inner, rest, _ := parenGroup(trimmed, afterMatch(loc))
	if !csTailRe.MatchString(rest) {
		return false
	}
	st.addMethod(frame, lineNo, trimmed[loc[6]:loc[7]], ret, inner, modifierWords(trimmed[loc[2]:loc[3]]))
	return true
}

func (st *csState) addMethod(frame *classFrame, lineNo int, name, ret, inner string, modifiers []string) {
	fn := extraction.NewFunction(name, ret, st.parsed.Path, lineNo)
	fn.Parameters = parseCSharpParams(inner)
	st.modifiers(frame).apply(fn, modifiers)
	fn.Description = st.description()
	applyParamDocs(fn, st.doc.params)
	st.parsed.Attach(frame.class, fn)
}

func (st *csState) matchProperty(frame *classFrame, trimmed string) bool {
	m := csPropertyRe.FindStringSubmatch(trimmed)
	if m == nil || csNotTypes.has(m[2]) {
		return false
	}
	st.addProperty(frame, m[3], m[2])
	return true
}

func (st *csState) matchField(frame *classFrame, trimmed string) {
	if frame.kind == "enum" {
		name := strings.TrimSuffix(strings.TrimSpace(strings.SplitN(trimmed, "=", 2)[0]), ",")
		if isIdentifier(name) {
			st.addProperty(frame, name, frame.class.Name)
		}
		return
	}
	m := csFieldRe.FindStringSubmatch(trimmed)
	if m == nil || csNotTypes.has(m[2]) {
		return
	}
	st.addProperty(frame, m[3], m[2])
	if newWordSet(modifierWords(m[1])...).has("const") {
		st.parsed.AddConstant(extraction.ConstantInfo{
			Name:        m[3],
			Value:       strings.TrimSpace(m[4]),
			Description: st.optionalDescription(),
		})
	}
}

func (st *csState) addProperty(frame *classFrame, name, typ string) {
	frame.class.AddProperty(extraction.PropertyInfo{
		Name:        name,
		Type:        typ,
		Description: st.optionalDescription(),
	})
}

func (st *csState) optionalDescription() string {
	if st.doc.empty() && st.block.empty() {
		return ""
	}
	return st.description()
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9') {
			continue
		}
		return false
	}
	return true
}

// parseCSharpParams parses "[ref|out|in|params|this] Type name [= default]" pieces.
func parseCSharpParams(inner string) []extraction.ParameterInfo {
	params := []extraction.ParameterInfo{}
	for _, piece := range splitTopLevel(inner) {
		piece = strings.TrimSpace(csAttrRe.ReplaceAllString(stripDefault(piece), ""))
		fields := strings.Fields(piece)
		for len(fields) > 2 && csParamPrefixes.has(fields[0]) {
			fields = fields[1:]
		}
		if len(fields) < 2 {
			continue
		}
		params = append(params, extraction.ParameterInfo{
			Name: fields[len(fields)-1],
			Type: strings.Join(fields[:len(fields)-1], " "),
		})
	}
	return params
}
