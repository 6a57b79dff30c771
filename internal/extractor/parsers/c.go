package parsers

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/sourcedoc/internal/extractor/extraction"
)

var (
	cppClassRe   = regexp.MustCompile(`^(?:template\s*<[^>]*>\s*)?(?:typedef\s+)?(class|struct)\s+(?:\w+_API\s+)?(\w+)(?:\s+final)?\s*(?::\s*(?:(?:public|private|protected|virtual)\s+)*([\w:]+(?:<[^{]*>)?))?(?:[^;{=]*\{.*\}\s*\w*\s*;|[^;]*?\{?)\s*$`)
	cppAccessRe  = regexp.MustCompile(`^(public|private|protected)\s*:\s*$`)
	cppLabelRe   = regexp.MustCompile(`^(public|private|protected)\s*:\s*`)
	cppFuncRe    = regexp.MustCompile(`^((?:(?:virtual|static|inline|explicit|constexpr|extern|friend)\s+)*)((?:(?:const|unsigned|signed|long|short|struct|enum)\s+)*[\w:]+(?:<[^()]*>)?(?:\s*[*&]+\s*|\s+))(~?\w+(?:::~?\w+)*)\s*\(`)
	cppCtorRe    = regexp.MustCompile(`^((?:(?:explicit|inline|virtual|constexpr)\s+)*)(~?\w+)\s*\(`)
	cppScopedRe  = regexp.MustCompile(`^(\w+::~?\w+)\s*\(`)
	cppFieldRe   = regexp.MustCompile(`^((?:(?:static|const|mutable|constexpr|inline)\s+)*)((?:(?:const|unsigned|signed|long|short|struct)\s+)*[\w:]+(?:<[^()]*>)?(?:\s*[*&]+\s*|\s+))(\w+)\s*(?:\[[^\]]*\]\s*)?(?:=\s*[^;]*|\{[^}]*\})?;\s*$`)
	cppTailRe    = regexp.MustCompile(`^\s*(?:const\s*)?(?:noexcept(?:\([^)]*\))?\s*)?(?:override\s*)?(?:final\s*)?(?:->\s*[\w:<>*&\s]+?\s*)?(?:=\s*(?:0|default|delete)\s*)?(?:\{.*|;|:.*)?\s*$`)
	cppDefineRe  = regexp.MustCompile(`^#\s*define\s+(\w+)(?:\s+(.+))?$`)
	cppParamRe   = regexp.MustCompile(`^(.*?[\s*&])(\w+)\s*(\[[^\]]*\])?$`)
	cppDocTagRe  = regexp.MustCompile(`^[@\\]param(?:\[[\w,]+\])?\s+(\w+)\s*(.*)$`)
	cppStarSpace = regexp.MustCompile(`\s+([*&])`)
)

var cppNotTypes = newWordSet(
	"return", "else", "delete", "new", "throw", "case", "goto", "using", "typedef",
	"namespace", "template", "if", "while", "for", "switch", "do", "sizeof", "co_return",
)

var cppNotNames = newWordSet("if", "while", "for", "switch", "catch", "return", "sizeof", "decltype", "static_assert")

var cppModifiers = modifierTable{
	sets: map[string]memberFlags{"static": flagStatic},
}

type cppScanner struct{}

// NewCPPScanner creates a scanner for .c, .cpp, .h and .hpp files.
func NewCPPScanner() Scanner {
	return &cppScanner{}
}

type cppState struct {
	parsed  *extraction.ParsedFile
	doc     *docBuffer
	classes classStack
}

// Scan implements Scanner.
func (s *cppScanner) Scan(lines []string, parsed *extraction.ParsedFile) {
	st := &cppState{
		parsed: parsed,
		doc:    newDocBuffer(regexParamTag(cppDocTagRe), atTagStart, true),
	}
	for i, line := range lines {
		st.scanLine(i+1, line)
	}
}

func (st *cppState) scanLine(lineNo int, line string) {
	trimmed := strings.TrimSpace(line)
	indent := indentOf(line)

	if st.doc.consumeBlock(trimmed) {
		return
	}
	if trimmed == "" {
		return
	}
	if st.doc.consumeLine(trimmed, "///", "//!", "//") {
		return
	}
	if st.classes.closeOn(trimmed, indent) {
		st.doc.reset()
		return
	}
	// Access labels are often outdented, so they must not fix the member level.
	if m := cppAccessRe.FindStringSubmatch(trimmed); m != nil {
		if frame := st.classes.top(); frame != nil {
			frame.access = cppAccess(m[1])
		}
		return
	}
	st.classes.observe(trimmed, indent)

	if m := cppDefineRe.FindStringSubmatch(trimmed); m != nil {
		st.parsed.AddConstant(extraction.ConstantInfo{
			Name:        m[1],
			Value:       strings.TrimSpace(m[2]),
			Description: st.optionalDescription(),
		})
		st.doc.reset()
		return
	}
	if strings.HasPrefix(trimmed, "#") {
		return
	}

	frame := st.classes.top()
	if frame != nil && !st.classes.atMember(indent) {
		st.doc.reset()
		return
	}

	if st.matchClass(lineNo, trimmed, indent) {
		return
	}

	if frame != nil {
		st.matchMember(frame, lineNo, trimmed)
		st.doc.reset()
		return
	}

	if indent == 0 {
		if !st.matchFunction(nil, lineNo, trimmed) {
			st.matchScoped(lineNo, trimmed)
		}
	}
	st.doc.reset()
}

func cppAccess(keyword string) memberFlags {
	switch keyword {
	case "private":
		return flagPrivate
	case "protected":
		return flagProtected
	}
	return 0
}

func (st *cppState) matchClass(lineNo int, trimmed string, indent int) bool {
	m := cppClassRe.FindStringSubmatch(trimmed)
	if m == nil {
		return false
	}
	class := extraction.NewClass(m[2], st.parsed.Path, lineNo)
	if m[3] != "" {
		class.Extends = stripGenerics(m[3])
	}
	class.Description = st.doc.description()
	st.parsed.AddClass(class)

	var access memberFlags
	if m[1] == "class" {
		access = flagPrivate
	}
	frame := st.classes.push(class, m[1], indent, access)
	st.doc.reset()
	if body, ok := braceBody(trimmed); ok {
		for _, member := range splitMembers(body) {
			// Access labels share the line with the member that follows them.
			for {
				label := cppLabelRe.FindStringSubmatch(member)
				if label == nil {
					break
				}
				frame.access = cppAccess(label[1])
				member = member[len(label[0]):]
			}
			st.matchMember(frame, lineNo, member)
		}
		st.classes.pop()
	}
	return true
}

func (st *cppState) matchMember(frame *classFrame, lineNo int, trimmed string) {
	switch {
	case st.matchConstructor(frame, lineNo, trimmed):
	case st.matchFunction(frame, lineNo, trimmed):
	default:
		st.matchField(frame, trimmed)
	}
}

func (st *cppState) matchConstructor(frame *classFrame, lineNo int, trimmed string) bool {
	loc := cppCtorRe.FindStringSubmatchIndex(trimmed)
	if loc == nil {
		return false
	}
	name := trimmed[loc[4]:loc[5]]
	if strings.TrimPrefix(name, "~") != frame.class.Name {
		return false
	}
	inner, rest, _ := parenGroup(trimmed, afterMatch(loc))
	if !cppTailRe.MatchString(rest) {
		return false
	}
	st.addFunction(frame.class, lineNo, name, "void", inner, frame.access)
	return true
}

func (st *cppState) matchFunction(frame *classFrame, lineNo int, trimmed string) bool {
	loc := cppFuncRe.FindStringSubmatchIndex(trimmed)
	if loc == nil {
		return false
	}
	ret := cppNormalizeType(trimmed[loc[4]:loc[5]])
	name := trimmed[loc[6]:loc[7]]
	if cppNotTypes.has(ret) || cppNotNames.has(name) {
		return false
	}
	inner, rest, _ := parenGroup(trimmed, afterMatch(loc))
	if !cppTailRe.MatchString(rest) {
		return false
	}

	flags := cppModifiers.resolve(modifierWords(trimmed[loc[2]:loc[3]]))
	var owner *extraction.ParsedClass
	if frame != nil {
		owner = frame.class
		flags |= frame.access
	}
	st.addFunction(owner, lineNo, name, ret, inner, flags)
	return true
}

// matchScoped records out-of-class constructor and destructor definitions
// such as "Widget::Widget(int w)" as top-level functions.
func (st *cppState) matchScoped(lineNo int, trimmed string) bool {
	loc := cppScopedRe.FindStringSubmatchIndex(trimmed)
	if loc == nil {
		return false
	}
	inner, rest, _ := parenGroup(trimmed, afterMatch(loc))
	if !cppTailRe.MatchString(rest) {
		return false
	}
	st.addFunction(nil, lineNo, trimmed[loc[2]:loc[3]], "void", inner, 0)
	return true
}

func (st *cppState) addFunction(owner *extraction.ParsedClass, lineNo int, name, ret, inner string, flags memberFlags) {
	fn := extraction.NewFunction(name, ret, st.parsed.Path, lineNo)
	fn.Parameters = parseCPPParams(inner)
	applyFlags(fn, flags)
	st.doc.describe(fn)
	st.parsed.Attach(owner, fn)
}

func (st *cppState) matchField(frame *classFrame, trimmed string) {
	m := cppFieldRe.FindStringSubmatch(trimmed)
	if m == nil {
		return
	}
	typ := cppNormalizeType(m[2])
	if cppNotTypes.has(typ) || typ == "friend" {
		return
	}
	frame.class.AddProperty(extraction.PropertyInfo{
		Name:        m[3],
		Type:        typ,
		Description: st.optionalDescription(),
	})
}

func (st *cppState) optionalDescription() string {
	if st.doc.empty() {
		return ""
	}
	return st.doc.description()
}

// cppNormalizeType collapses whitespace and binds pointer and reference
// markers to the type name: "const char *" becomes "const char*".
func cppNormalizeType(t string) string {
	t = strings.Join(strings.Fields(t), " ")
	return cppStarSpace.ReplaceAllString(t, "$1")
}

// parseCPPParams parses "[const] Type [*&]name [= default]" pieces.
func parseCPPParams(inner string) []extraction.ParameterInfo {
	params := []extraction.ParameterInfo{}
	if strings.TrimSpace(inner) == "void" {
		return params
	}
	for _, piece := range splitTopLevel(inner) {
		piece = stripDefault(piece)
		if piece == "..." {
			params = append(params, extraction.ParameterInfo{Name: "...", Type: "..."})
			continue
		}
		m := cppParamRe.FindStringSubmatch(piece)
		if m == nil || strings.TrimSpace(m[1]) == "" || strings.TrimSpace(m[1]) == "const" {
			params = append(params, extraction.ParameterInfo{Name: "_", Type: cppNormalizeType(piece)})
			continue
		}
		params = append(params, extraction.ParameterInfo{
			Name: m[2],
			Type: cppNormalizeType(m[1] + m[3]),
		})
	}
	return params
}
