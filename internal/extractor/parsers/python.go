package parsers

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/sourcedoc/internal/extractor/extraction"
)

var (
	pyClassRe     = regexp.MustCompile(`^class\s+(\w+)\s*(?:\(([^)]*)\))?\s*:`)
	pyDefRe       = regexp.MustCompile(`^(?:async\s+)?def\s+(\w+)\s*(?:\[[^\]]*\]\s*)?\(`)
	pyReturnRe    = regexp.MustCompile(`^\s*(?:->\s*(.+?))?\s*:`)
	pyConstRe     = regexp.MustCompile(`^([A-Z][A-Z0-9_]*)\s*(?::\s*[^=]+?)?\s*=\s*([^=].*)$`)
	pyAttrRe      = regexp.MustCompile(`^(\w+)\s*(?::\s*([^=]+?))?\s*(?:=\s*([^=].*))?$`)
	pyDocOpenRe   = regexp.MustCompile(`^[rRuUbB]{0,2}("""|''')`)
	pyArgRe       = regexp.MustCompile(`^\*{0,2}(\w+)\s*(?:\(([^)]*)\))?\s*:\s*(.+)$`)
	pySphinxRe    = regexp.MustCompile(`^:param\s+(?:[\w\[\], .]+\s+)?(\w+)\s*:\s*(.*)$`)
	pyNumpyArgRe  = regexp.MustCompile(`^(\w+)\s*:\s*\S`)
	pySectionRe   = regexp.MustCompile(`^(?:Args|Arguments|Parameters|Params|Keyword Args|Returns|Return|Yields|Raises|Examples?|Notes?|Attributes|See Also|Warnings?|Todo)\s*:?\s*$`)
	pyUnderlineRe = regexp.MustCompile(`^-{3,}$`)
)

// pyFrame is an open class body.
type pyFrame struct {
	class        *extraction.ParsedClass
	indent       int
	memberIndent int
}

// pyDocTarget is the declaration a following docstring describes.
type pyDocTarget struct {
	class *extraction.ParsedClass
	fn    *extraction.ParsedFunction
}

// pyState is the loop state for one Python scan.
type pyState struct {
	parsed   *extraction.ParsedFile
	comments []string
	frames   []*pyFrame
	static   bool

	// defIndent is the indentation of the innermost recorded def whose body is
	// still open, or -1.
	defIndent int

	target    pyDocTarget
	docOpen   bool
	docQuote  string
	docLines  []string
	docTarget pyDocTarget

	sig       string
	sigOpen   bool
	sigIndent int
	sigLine   int
}

type pythonScanner struct{}

// NewPythonScanner creates a scanner for .py files.
func NewPythonScanner() Scanner {
	return &pythonScanner{}
}

// Scan implements Scanner.
func (s *pythonScanner) Scan(lines []string, parsed *extraction.ParsedFile) {
	st := &pyState{parsed: parsed, defIndent: -1}
	for i, line := range lines {
		st.scanLine(i+1, line)
	}
	if st.docOpen {
		st.finishDocstring()
	}
}

func (st *pyState) scanLine(lineNo int, line string) {
	trimmed := strings.TrimSpace(line)
	indent := indentOf(line)

	if st.docOpen {
		if end := strings.Index(trimmed, st.docQuote); end >= 0 {
			st.docLines = append(st.docLines, trimmed[:end])
			st.finishDocstring()
			return
		}
		st.docLines = append(st.docLines, trimmed)
		return
	}

	if st.sigOpen {
		st.sig += " " + trimmed
		st.tryFinishSignature()
		return
	}

	if trimmed == "" {
		return
	}
	if strings.HasPrefix(trimmed, "#") {
		st.comments = append(st.comments, strings.TrimSpace(strings.TrimLeft(trimmed, "#")))
		return
	}

	st.dedent(indent)

	if m := pyDocOpenRe.FindStringSubmatch(trimmed); m != nil {
		st.startDocstring(trimmed[len(m[0]):], m[1])
		return
	}
	st.target = pyDocTarget{}

	if strings.HasPrefix(trimmed, "@") {
		if trimmed == "@staticmethod" {
			st.static = true
		}
		return
	}

	if st.defIndent >= 0 {
		// Inside a function body: nested classes and defs are ignored.
		st.clear()
		return
	}

	if m := pyClassRe.FindStringSubmatch(trimmed); m != nil {
		st.addClass(lineNo, indent, m[1], m[2])
		return
	}

	if loc := pyDefRe.FindStringIndex(trimmed); loc != nil {
		st.sig = trimmed
		st.sigIndent = indent
		st.sigLine = lineNo
		st.sigOpen = true
		st.tryFinishSignature()
		return
	}

	if frame := st.top(); frame != nil {
		if indent == frame.memberIndent {
			st.addAttribute(frame, trimmed)
		}
		st.clear()
		return
	}

	if indent == 0 {
		if m := pyConstRe.FindStringSubmatch(trimmed); m != nil {
			st.parsed.AddConstant(extraction.ConstantInfo{
				Name:        m[1],
				Value:       strings.TrimSpace(m[2]),
				Description: CleanDocText(strings.Join(st.comments, " ")),
			})
		}
	}
	st.clear()
}

// dedent closes class bodies and function bodies that executable code at
// indent has left, and records the member indentation of a new class body.
func (st *pyState) dedent(indent int) {
	if st.defIndent >= 0 && indent <= st.defIndent {
		st.defIndent = -1
	}
	for len(st.frames) > 0 && indent <= st.top().indent {
		st.frames = st.frames[:len(st.frames)-1]
	}
	if f := st.top(); f != nil && f.memberIndent < 0 && indent > f.indent {
		f.memberIndent = indent
	}
}

func (st *pyState) top() *pyFrame {
	if len(st.frames) == 0 {
		return nil
	}
	return st.frames[len(st.frames)-1]
}

func (st *pyState) clear() {
	st.comments = st.comments[:0]
	st.static = false
	st.target = pyDocTarget{}
}

func (st *pyState) commentDescription() string {
	if text := CleanDocText(strings.Join(st.comments, " ")); text != "" {
		return text
	}
	return extraction.DefaultDescription
}

func (st *pyState) addClass(lineNo, indent int, name, bases string) {
	class := extraction.NewClass(name, st.parsed.Path, lineNo)
	if bases != "" {
		if parts := splitTopLevel(bases); len(parts) > 0 && parts[0] != "object" && !strings.Contains(parts[0], "=") {
			class.Extends = parts[0]
		}
	}
	class.Description = st.commentDescription()
	st.parsed.AddClass(class)
	st.frames = append(st.frames, &pyFrame{class: class, indent: indent, memberIndent: -1})
	st.clear()
	st.target = pyDocTarget{class: class}
}

func (st *pyState) addAttribute(frame *pyFrame, trimmed string) {
	m := pyAttrRe.FindStringSubmatch(trimmed)
	if m == nil || (m[2] == "" && m[3] == "") {
		return
	}
	desc := ""
	if len(st.comments) > 0 {
		desc = CleanDocText(strings.Join(st.comments, " "))
	}
	frame.class.AddProperty(extraction.PropertyInfo{
		Name:        m[1],
		Type:        orDefault(m[2], "Any"),
		Description: desc,
	})
}

// tryFinishSignature records the pending def once its parameter list closes.
// Signatures spanning several lines are accumulated until then.
func (st *pyState) tryFinishSignature() {
	loc := pyDefRe.FindStringSubmatchIndex(st.sig)
	inner, rest, closed := parenGroup(st.sig, afterMatch(loc))
	if !closed {
		return
	}
	st.sigOpen = false
	name := st.sig[loc[2]:loc[3]]

	ret := "None"
	if r := pyReturnRe.FindStringSubmatch(rest); r != nil && r[1] != "" {
		ret = r[1]
	}

	fn := extraction.NewFunction(name, ret, st.parsed.Path, st.sigLine)
	fn.Parameters = parsePythonParams(inner)
	fn.Description = st.commentDescription()
	fn.IsStatic = st.static
	if strings.HasPrefix(name, "__") && !strings.HasSuffix(name, "__") {
		fn.IsPrivate = true
	} else if strings.HasPrefix(name, "_") && !strings.HasPrefix(name, "__") {
		fn.IsProtected = true
	}

	st.parsed.Attach(st.owner(), fn)
	st.defIndent = st.sigIndent
	st.clear()
	st.target = pyDocTarget{fn: fn}
}

func (st *pyState) owner() *extraction.ParsedClass {
	if f := st.top(); f != nil {
		return f.class
	}
	return nil
}

func (st *pyState) startDocstring(body, quote string) {
	target := st.target
	st.clear()
	if end := strings.Index(body, quote); end >= 0 {
		st.applyDocstring(target, []string{body[:end]})
		return
	}
	st.docOpen = true
	st.docQuote = quote
	st.docLines = append(st.docLines[:0], strings.TrimSpace(body))
	st.docTarget = target
}

func (st *pyState) finishDocstring() {
	st.docOpen = false
	st.applyDocstring(st.docTarget, st.docLines)
	st.docTarget = pyDocTarget{}
	st.docLines = st.docLines[:0]
}

// applyDocstring sets the summary text on target and fills parameter
// descriptions from Google, NumPy and Sphinx style argument lines.
func (st *pyState) applyDocstring(target pyDocTarget, lines []string) {
	if target.class == nil && target.fn == nil {
		return
	}
	var summary []string
	params := map[string]string{}
	inSection := false
	lastParam := ""
	for i, l := range lines {
		l = strings.TrimSpace(l)
		switch {
		case l == "":
			lastParam = ""
			continue
		case pyUnderlineRe.MatchString(l):
			continue
		case pySectionRe.MatchString(l), i+1 < len(lines) && pyUnderlineRe.MatchString(strings.TrimSpace(lines[i+1])):
			inSection = true
			lastParam = ""
			continue
		}
		if m := pySphinxRe.FindStringSubmatch(l); m != nil {
			params[m[1]] = m[2]
			lastParam = m[1]
			inSection = true
			continue
		}
		if strings.HasPrefix(l, ":") {
			inSection = true
			lastParam = ""
			continue
		}
		if m := pyArgRe.FindStringSubmatch(l); m != nil && target.fn != nil && hasPythonParam(target.fn, m[1]) {
			params[m[1]] = m[3]
			lastParam = m[1]
			continue
		}
		if m := pyNumpyArgRe.FindStringSubmatch(l); m != nil && inSection && target.fn != nil && hasPythonParam(target.fn, m[1]) {
			params[m[1]] = ""
			lastParam = m[1]
			continue
		}
		if lastParam != "" {
			params[lastParam] = strings.TrimSpace(params[lastParam] + " " + l)
			continue
		}
		if !inSection {
			summary = append(summary, l)
		}
	}

	desc := CleanDocText(strings.Join(summary, " "))
	if target.class != nil {
		if desc != "" {
			target.class.Description = desc
		}
		return
	}
	if desc != "" {
		target.fn.Description = desc
	}
	applyParamDocs(target.fn, params)
}

func hasPythonParam(fn *extraction.ParsedFunction, name string) bool {
	for _, p := range fn.Parameters {
		if strings.TrimLeft(p.Name, "*") == name {
			return true
		}
	}
	return false
}

// parsePythonParams parses "name[: type][= default]" pieces, dropping self,
// cls and the bare * and / markers.
func parsePythonParams(inner string) []extraction.ParameterInfo {
	params := []extraction.ParameterInfo{}
	for _, piece := range splitTopLevel(inner) {
		piece = stripDefault(piece)
		name, typ := piece, ""
		if i := topLevelIndex(piece, ':'); i >= 0 {
			name, typ = piece[:i], piece[i+1:]
		}
		name = strings.TrimSpace(name)
		switch name {
		case "", "self", "cls", "*", "/":
			continue
		}
		params = append(params, extraction.ParameterInfo{Name: name, Type: orDefault(typ, "Any")})
	}
	return params
}
