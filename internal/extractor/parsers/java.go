package parsers

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/sourcedoc/internal/extractor/extraction"
)

var (
	javaClassRe   = regexp.MustCompile(`^((?:(?:public|private|protected|static|final|abstract|sealed|non-sealed|strictfp)\s+)*)(class|interface|enum|record|@interface)\s+(\w+)`)
	javaExtendsRe = regexp.MustCompile(`\bextends\s+([\w.$]+)`)
	javaMethodRe  = regexp.MustCompile(`^((?:(?:public|private|protected|static|final|abstract|synchronized|native|default|strictfp)\s+)*)(?:<[^()]*?>\s+)?([\w.$]+(?:<[^()]*>)?(?:\[\])*)\s+(\w+)\s*\(`)
	javaCtorRe    = regexp.MustCompile(`^((?:(?:public|private|protected)\s+)*)(\w+)\s*\(`)
	javaFieldRe   = regexp.MustCompile(`^((?:(?:public|private|protected|static|final|transient|volatile)\s+)*)([\w.$]+(?:<[^()]*>)?(?:\[\])*)\s+(\w+)\s*(?:=\s*(.*?))?;\s*$`)
	javaTailRe    = regexp.MustCompile(`^\s*(?:throws\s+[\w.,\s<>]+?)?\s*(?:\{.*|;|default\s+.*)?\s*$`)
	javaAnnRe     = regexp.MustCompile(`@[\w.]+(?:\([^)]*\))?\s*`)
	javaDocTagRe  = regexp.MustCompile(`^@param\s+<?(\w+)>?\s*(.*)$`)
)

var javaNotTypes = newWordSet(
	"return", "new", "else", "throw", "case", "yield", "await", "import", "package",
	"if", "for", "while", "switch", "catch", "do", "try", "synchronized",
)

var javaModifiers = modifierTable{
	sets: map[string]memberFlags{
		"static":    flagStatic,
		"private":   flagPrivate,
		"protected": flagProtected,
	},
}

type javaScanner struct{}

// NewJavaScanner creates a scanner for .java files.
func NewJavaScanner() Scanner {
	return &javaScanner{}
}

type javaState struct {
	parsed  *extraction.ParsedFile
	doc     *docBuffer
	classes classStack
}

// Scan implements Scanner.
func (s *javaScanner) Scan(lines []string, parsed *extraction.ParsedFile) {
	st := &javaState{
		parsed: parsed,
		doc:    newDocBuffer(regexParamTag(javaDocTagRe), atTagStart, true),
	}
	for i, line := range lines {
		st.scanLine(i+1, line)
	}
}

func (st *javaState) scanLine(lineNo int, line string) {
	trimmed := strings.TrimSpace(line)
	indent := indentOf(line)

	if st.doc.consumeBlock(trimmed) {
		return
	}
	if trimmed == "" {
		return
	}
	if st.doc.consumeLine(trimmed, "//") {
		return
	}
	if strings.HasPrefix(trimmed, "@") && !strings.HasPrefix(trimmed, "@interface") {
		// Annotations on their own line keep the pending Javadoc.
		if rest := strings.TrimSpace(javaAnnRe.ReplaceAllString(trimmed, "")); rest == "" {
			return
		}
		trimmed = strings.TrimSpace(javaAnnRe.ReplaceAllString(trimmed, ""))
	}
	if st.classes.closeOn(trimmed, indent) {
		st.doc.reset()
		return
	}
	st.classes.observe(trimmed, indent)

	if m := javaClassRe.FindStringSubmatch(trimmed); m != nil {
		class := extraction.NewClass(m[3], st.parsed.Path, lineNo)
		if e := javaExtendsRe.FindStringSubmatch(trimmed[len(m[0]):]); e != nil {
			class.Extends = stripGenerics(e[1])
		}
		class.Description = st.doc.description()
		st.parsed.AddClass(class)
		frame := st.classes.push(class, m[2], indent, 0)
		st.doc.reset()
		if body, ok := braceBody(trimmed); ok {
			for _, member := range splitMembers(body) {
				st.matchMember(frame, lineNo, member)
			}
			st.classes.pop()
		}
		return
	}

	frame := st.classes.top()
	if frame == nil || !st.classes.atMember(indent) {
		st.doc.reset()
		return
	}
	st.matchMember(frame, lineNo, trimmed)
	st.doc.reset()
}

func (st *javaState) matchMember(frame *classFrame, lineNo int, trimmed string) {
	switch {
	case st.matchConstructor(frame, lineNo, trimmed):
	case st.matchMethod(frame, lineNo, trimmed):
	default:
		st.matchField(frame, trimmed)
	}
}

func (st *javaState) matchConstructor(frame *classFrame, lineNo int, trimmed string) bool {
	loc := javaCtorRe.FindStringSubmatchIndex(trimmed)
	if loc == nil || trimmed[loc[4]:loc[5]] != frame.class.Name {
		return false
	}
	inner, rest, _ := parenGroup(trimmed, afterMatch(loc))
	if !javaTailRe.MatchString(rest) {
		return false
	}
	st.addMethod(frame, lineNo, frame.class.Name, "void", inner, modifierWords(trimmed[loc[2]:loc[3]]))
	return true
}

func (st *javaState) matchMethod(frame *classFrame, lineNo int, trimmed string) bool {
	loc := javaMethodRe.FindStringSubmatchIndex(trimmed)
	if loc == nil {
		return false
	}
	ret := trimmed[loc[4]:loc[5]]
	if javaNotTypes.has(ret) {
		return false
	}
	inner, rest, _ := parenGroup(trimmed, afterMatch(loc))
	if !javaTailRe.MatchString(rest) {
		return false
	}
	st.addMethod(frame, lineNo, trimmed[loc[6]:loc[7]], ret, inner, modifierWords(trimmed[loc[2]:loc[3]]))
	return true
}

func (st *javaState) addMethod(frame *classFrame, lineNo int, name, ret, inner string, modifiers []string) {
	fn := extraction.NewFunction(name, ret, st.parsed.Path, lineNo)
	fn.Parameters = parseJavaParams(inner)
	javaModifiers.apply(fn, modifiers)
	st.doc.describe(fn)
	st.parsed.Attach(frame.class, fn)
}

func (st *javaState) matchField(frame *classFrame, trimmed string) {
	m := javaFieldRe.FindStringSubmatch(trimmed)
	if m == nil || javaNotTypes.has(m[2]) {
		return
	}
	desc := ""
	if !st.doc.empty() {
		desc = st.doc.description()
	}
	frame.class.AddProperty(extraction.PropertyInfo{Name: m[3], Type: m[2], Description: desc})

	modifiers := newWordSet(modifierWords(m[1])...)
	if modifiers.has("static") && modifiers.has("final") && m[4] != "" {
		st.parsed.AddConstant(extraction.ConstantInfo{Name: m[3], Value: strings.TrimSpace(m[4]), Description: desc})
	}
}

// parseJavaParams parses "[final] [@Ann] Type name" pieces.
func parseJavaParams(inner string) []extraction.ParameterInfo {
	params := []extraction.ParameterInfo{}
	for _, piece := range splitTopLevel(inner) {
		piece = strings.TrimSpace(javaAnnRe.ReplaceAllString(piece, ""))
		piece = strings.TrimSpace(strings.TrimPrefix(piece, "final "))
		i := strings.LastIndexAny(piece, " \t")
		if i < 0 {
			continue
		}
		params = append(params, extraction.ParameterInfo{
			Name: strings.TrimSpace(piece[i+1:]),
			Type: strings.TrimSpace(piece[:i]),
		})
	}
	return params
}
