package parsers

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/sourcedoc/internal/extractor/extraction"
)

var (
	tsClassRe     = regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:declare\s+)?(?:abstract\s+)?(class|interface|enum)\s+([A-Za-z_$][\w$]*)`)
	tsExtendsRe   = regexp.MustCompile(`\bextends\s+([A-Za-z_$][\w$.]*)`)
	tsFunctionRe  = regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:declare\s+)?(async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)\s*(?:<[^(]*?>)?\s*\(`)
	tsMethodRe    = regexp.MustCompile(`^((?:(?:public|private|protected|static|readonly|abstract|async|override|declare|get|set)\s+)*)\*?(#?[A-Za-z_$][\w$]*)\s*\??\s*(?:<[^(]*?>)?\s*\(`)
	tsArrowRe     = regexp.MustCompile(`^(?:export\s+)?(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*(?::\s*[^=]+)?=\s*(?:async\s+)?(?:\(|([A-Za-z_$][\w$]*)\s*=>)`)
	tsArrowPropRe = regexp.MustCompile(`^((?:(?:public|private|protected|static|readonly)\s+)*)(#?[A-Za-z_$][\w$]*)\s*(?::\s*[^=]+)?=\s*(?:async\s+)?(?:\(|([A-Za-z_$][\w$]*)\s*=>)`)
	tsPropertyRe  = regexp.MustCompile(`^((?:(?:public|private|protected|static|readonly|declare|override|abstract)\s+)*)(#?[A-Za-z_$][\w$]*)\s*[?!]?\s*(?::\s*([^=;]+?))?\s*(?:=\s*(.*?))?[;,]?\s*$`)
	tsConstRe     = regexp.MustCompile(`^(?:export\s+)?const\s+([A-Za-z_$][\w$]*)\s*(?::\s*[^=]+?)?\s*=\s*(.+?);?\s*$`)
	tsReturnRe    = regexp.MustCompile(`^\s*:\s*([^{;]+?)\s*(?:\{.*|;)?\s*$`)
	tsArrowRetRe  = regexp.MustCompile(`^\s*:\s*(.+?)\s*=>`)
	tsDecoratorRe = regexp.MustCompile(`@\w+(?:\([^)]*\))?\s*`)
	jsDocParamRe  = regexp.MustCompile(`^@param\s+(?:\{[^}]*\}\s*)?\[?(?:\.\.\.)?([A-Za-z_$][\w$]*)[^\s]*\s*(?:-\s*)?(.*)$`)
)

var tsNotMethods = newWordSet(
	"if", "for", "while", "switch", "catch", "return", "function", "new", "super",
	"typeof", "else", "do", "try", "with", "await", "yield", "throw", "delete",
	"import", "export", "require",
)

var tsParamModifiers = newWordSet("public", "private", "protected", "readonly", "override")

// tsModifiers maps TypeScript member modifiers to flags. JavaScript's #name
// private fields are handled by the caller.
var tsModifiers = modifierTable{
	sets: map[string]memberFlags{
		"static":    flagStatic,
		"private":   flagPrivate,
		"protected": flagProtected,
	},
}

// typeScriptScanner scans TypeScript and JavaScript sources.
type typeScriptScanner struct{}

// NewTypeScriptScanner creates a scanner for .ts, .tsx, .js and .jsx files.
func NewTypeScriptScanner() Scanner {
	return &typeScriptScanner{}
}

// tsState is the loop state threaded through one TypeScript scan.
type tsState struct {
	parsed  *extraction.ParsedFile
	doc     *docBuffer
	classes classStack
}

// Scan implements Scanner.
func (s *typeScriptScanner) Scan(lines []string, parsed *extraction.ParsedFile) {
	st := &tsState{
		parsed: parsed,
		doc:    newDocBuffer(regexParamTag(jsDocParamRe), atTagStart, true),
	}
	for i, line := range lines {
		st.scanLine(i+1, line)
	}
}

func (st *tsState) scanLine(lineNo int, line string) {
	trimmed := strings.TrimSpace(line)
	indent := indentOf(line)

	if st.doc.consumeBlock(trimmed) {
		return
	}
	if trimmed == "" || strings.HasPrefix(trimmed, "@") {
		return
	}
	if st.doc.consumeLine(trimmed, "//") {
		return
	}
	if st.classes.closeOn(trimmed, indent) {
		st.doc.reset()
		return
	}
	st.classes.observe(trimmed, indent)

	if st.matchClass(lineNo, trimmed, indent) {
		return
	}

	if frame := st.classes.top(); frame != nil {
		if st.classes.atMember(indent) && st.matchMember(frame, lineNo, trimmed) {
			st.doc.reset()
			return
		}
		st.doc.reset()
		return
	}

	if indent == 0 {
		st.matchTopLevel(lineNo, trimmed)
	}
	st.doc.reset()
}

func (st *tsState) matchClass(lineNo int, trimmed string, indent int) bool {
	m := tsClassRe.FindStringSubmatch(trimmed)
	if m == nil {
		return false
	}
	class := extraction.NewClass(m[2], st.parsed.Path, lineNo)
	if e := tsExtendsRe.FindStringSubmatch(trimmed[len(m[0]):]); e != nil {
		class.Extends = e[1]
	}
	class.Description = st.doc.description()
	st.parsed.AddClass(class)
	st.doc.reset()

	frame := st.classes.push(class, m[1], indent, 0)
	if body, ok := braceBody(trimmed); ok {
		st.scanInlineBody(frame, lineNo, body)
		st.classes.pop()
	}
	return true
}

// scanInlineBody records the members of a class body that opens and closes
// on its declaration line.
func (st *tsState) scanInlineBody(frame *classFrame, lineNo int, body string) {
	members := splitMembers(body)
	if frame.kind == "enum" {
		members = splitTopLevel(body)
	}
	for _, member := range members {
		st.matchMember(frame, lineNo, member)
	}
}

func (st *tsState) matchMember(frame *classFrame, lineNo int, trimmed string) bool {
	if loc := tsMethodRe.FindStringSubmatchIndex(trimmed); loc != nil {
		name := trimmed[loc[4]:loc[5]]
		modifiers := modifierWords(trimmed[loc[2]:loc[3]])
		inner, rest, _ := parenGroup(trimmed, afterMatch(loc))
		if !tsNotMethods.has(name) && isTSDeclTail(rest) {
			ret := "unknown"
			if name == "constructor" {
				ret = "void"
			} else if r := tsReturnRe.FindStringSubmatch(rest); r != nil {
				ret = r[1]
			}
			st.addFunction(frame.class, name, ret, inner, modifiers, lineNo)
			return true
		}
	}

	if m := tsArrowPropRe.FindStringSubmatch(trimmed); m != nil {
		if fn := st.arrowFunction(m[2], m[3], trimmed, lineNo); fn != nil {
			tsModifiers.apply(fn, modifierWords(m[1]))
			if strings.HasPrefix(fn.Name, "#") {
				fn.IsPrivate = true
			}
			st.parsed.Attach(frame.class, fn)
			return true
		}
	}

	m := tsPropertyRe.FindStringSubmatch(trimmed)
	if m == nil || strings.Contains(trimmed, "(") && m[4] == "" {
		return false
	}
	if m[3] == "" && m[4] == "" && frame.kind != "enum" {
		return false
	}
	typ := orDefault(m[3], "any")
	if frame.kind == "enum" {
		typ = frame.class.Name
	}
	frame.class.AddProperty(extraction.PropertyInfo{
		Name:        m[2],
		Type:        typ,
		Description: st.optionalDescription(),
	})
	return true
}

func (st *tsState) matchTopLevel(lineNo int, trimmed string) {
	if loc := tsFunctionRe.FindStringSubmatchIndex(trimmed); loc != nil {
		name := trimmed[loc[4]:loc[5]]
		inner, rest, _ := parenGroup(trimmed, afterMatch(loc))
		ret := "unknown"
		if r := tsReturnRe.FindStringSubmatch(rest); r != nil {
			ret = r[1]
		}
		st.addFunction(nil, name, ret, inner, nil, lineNo)
		return
	}

	if m := tsArrowRe.FindStringSubmatch(trimmed); m != nil {
		if fn := st.arrowFunction(m[1], m[2], trimmed, lineNo); fn != nil {
			st.parsed.Attach(nil, fn)
			return
		}
	}

	if m := tsConstRe.FindStringSubmatch(trimmed); m != nil {
		st.parsed.AddConstant(extraction.ConstantInfo{
			Name:        m[1],
			Value:       strings.TrimSuffix(strings.TrimSpace(m[2]), ";"),
			Description: st.optionalDescription(),
		})
	}
}

// arrowFunction builds a function from "name = (params) =>" or "name = x =>".
// It returns nil when the parenthesized expression is not followed by an arrow.
func (st *tsState) arrowFunction(name, bareParam, trimmed string, lineNo int) *extraction.ParsedFunction {
	if bareParam != "" {
		fn := extraction.NewFunction(name, "unknown", st.parsed.Path, lineNo)
		fn.Parameters = append(fn.Parameters, extraction.ParameterInfo{Name: bareParam, Type: "any"})
		st.doc.describe(fn)
		return fn
	}
	eq := topLevelIndex(trimmed, '=')
	if eq < 0 {
		return nil
	}
	open := strings.IndexByte(trimmed[eq:], '(')
	if open < 0 {
		return nil
	}
	inner, rest, _ := parenGroup(trimmed, eq+open)
	if !strings.Contains(rest, "=>") {
		return nil
	}
	ret := "unknown"
	if r := tsArrowRetRe.FindStringSubmatch(rest); r != nil {
		ret = r[1]
	}
	fn := extraction.NewFunction(name, ret, st.parsed.Path, lineNo)
	fn.Parameters = parseTSParams(inner)
	st.doc.describe(fn)
	return fn
}

func (st *tsState) addFunction(owner *extraction.ParsedClass, name, ret, inner string, modifiers []string, lineNo int) {
	fn := extraction.NewFunction(name, ret, st.parsed.Path, lineNo)
	fn.Parameters = parseTSParams(inner)
	tsModifiers.apply(fn, modifiers)
	if strings.HasPrefix(name, "#") {
		fn.IsPrivate = true
	}
	st.doc.describe(fn)
	st.parsed.Attach(owner, fn)
}

func (st *tsState) optionalDescription() string {
	if st.doc.empty() {
		return ""
	}
	return st.doc.description()
}

// isTSDeclTail reports whether the text after a parameter list can end a
// method declaration: a return annotation, an opening brace or a semicolon.
func isTSDeclTail(rest string) bool {
	rest = strings.TrimSpace(rest)
	if rest == "" || rest[0] == '{' || rest == ";" {
		return true
	}
	return rest[0] == ':' && !strings.Contains(rest, "=>")
}

// parseTSParams parses "name?: Type = default" pieces.
func parseTSParams(inner string) []extraction.ParameterInfo {
	params := []extraction.ParameterInfo{}
	for _, piece := range splitTopLevel(inner) {
		piece = strings.TrimSpace(tsDecoratorRe.ReplaceAllString(piece, ""))
		fields := strings.Fields(piece)
		for len(fields) > 1 && tsParamModifiers.has(fields[0]) {
			piece = strings.TrimSpace(strings.TrimPrefix(piece, fields[0]))
			fields = fields[1:]
		}
		piece = stripDefault(piece)

		name, typ := piece, ""
		if i := topLevelIndex(piece, ':'); i >= 0 {
			name, typ = piece[:i], piece[i+1:]
		}
		name = strings.TrimSuffix(strings.TrimSpace(name), "?")
		if name == "" || name == "this" {
			continue
		}
		params = append(params, extraction.ParameterInfo{Name: name, Type: orDefault(typ, "any")})
	}
	return params
}
