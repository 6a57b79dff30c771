package parsers

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/sourcedoc/internal/extractor/extraction"
)

var (
	phpClassRe    = regexp.MustCompile(`^(?:(?:abstract|final|readonly)\s+)*(class|interface|trait|enum)\s+(\w+)`)
	phpExtendsRe  = regexp.MustCompile(`\bextends\s+([\w\\]+)`)
	phpFuncRe     = regexp.MustCompile(`^((?:(?:public|private|protected|static|abstract|final)\s+)*)function\s+&?(\w+)\s*\(`)
	phpReturnRe   = regexp.MustCompile(`^\s*:\s*([?\w\\|&]+)`)
	phpPropertyRe = regexp.MustCompile(`^((?:(?:public|private|protected|static|readonly|var)\s+)+)(?:(\??[\w\\|]+)\s+)?\$(\w+)\s*(?:=\s*(.*?))?;\s*$`)
	phpConstRe    = regexp.MustCompile(`^(?:(?:public|private|protected|final)\s+)*const\s+(?:\w+\s+)?(\w+)\s*=\s*(.+?);\s*$`)
	phpDefineRe   = regexp.MustCompile(`^define\(\s*['"](\w+)['"]\s*,\s*(.+?)\s*\)\s*;`)
	phpParamRe    = regexp.MustCompile(`^(.*?)\s*&?(?:\.\.\.)?\$(\w+)$`)
	phpDocTagRe   = regexp.MustCompile(`^@param\s+(?:[^\s$]+\s+)?&?(?:\.\.\.)?\$(\w+)\s*(.*)$`)
)

var phpParamModifiers = newWordSet("public", "private", "protected", "readonly")

var phpModifiers = modifierTable{
	sets: map[string]memberFlags{
		"static":    flagStatic,
		"private":   flagPrivate,
		"protected": flagProtected,
	},
}

type phpScanner struct{}

// NewPHPScanner creates a scanner for .php files.
func NewPHPScanner() Scanner {
	return &phpScanner{}
}

type phpState struct {
	parsed  *extraction.ParsedFile
	doc     *docBuffer
	classes classStack

	sig     string
	sigOpen bool
	sigLine int
	sigOwn  *extraction.ParsedClass
}

// Scan implements Scanner.
func (s *phpScanner) Scan(lines []string, parsed *extraction.ParsedFile) {
	st := &phpState{
		parsed: parsed,
		doc:    newDocBuffer(regexParamTag(phpDocTagRe), atTagStart, true),
	}
	for i, line := range lines {
		st.scanLine(i+1, line)
	}
}

func (st *phpState) scanLine(lineNo int, line string) {
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
	switch {
	case trimmed == "", strings.HasPrefix(trimmed, "<?php"), strings.HasPrefix(trimmed, "#["):
		return
	case strings.HasPrefix(trimmed, "//"), strings.HasPrefix(trimmed, "#"):
		return
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

	if m := phpClassRe.FindStringSubmatch(trimmed); m != nil {
		class := extraction.NewClass(m[2], st.parsed.Path, lineNo)
		if e := phpExtendsRe.FindStringSubmatch(trimmed[len(m[0]):]); e != nil {
			class.Extends = lastSegment(e[1], `\`)
		}
		class.Description = st.doc.description()
		st.parsed.AddClass(class)
		frame := st.classes.push(class, m[1], indent, 0)
		st.doc.reset()
		if body, ok := braceBody(trimmed); ok {
			st.scanInlineBody(frame, lineNo, body)
			st.classes.pop()
		}
		return
	}

	if m := phpConstRe.FindStringSubmatch(trimmed); m != nil {
		st.addConstant(m[1], m[2])
		st.doc.reset()
		return
	}
	if m := phpDefineRe.FindStringSubmatch(trimmed); m != nil && frame == nil {
		st.addConstant(m[1], m[2])
		st.doc.reset()
		return
	}

	if phpFuncRe.MatchString(trimmed) && (frame != nil || indent == 0) {
		st.sig = trimmed
		st.sigLine = lineNo
		st.sigOpen = true
		st.sigOwn = nil
		if frame != nil {
			st.sigOwn = frame.class
		}
		st.tryFinishFunc()
		return
	}

	if frame != nil {
		if m := phpPropertyRe.FindStringSubmatch(trimmed); m != nil {
			frame.class.AddProperty(extraction.PropertyInfo{
				Name:        m[3],
				Type:        orDefault(m[2], "mixed"),
				Description: st.optionalDescription(),
			})
		}
	}
	st.doc.reset()
}

// scanInlineBody records the members of a class body that closes on its
// declaration line.
func (st *phpState) scanInlineBody(frame *classFrame, lineNo int, body string) {
	for _, member := range splitMembers(body) {
		switch {
		case phpConstRe.MatchString(member):
			m := phpConstRe.FindStringSubmatch(member)
			st.addConstant(m[1], m[2])
		case phpFuncRe.MatchString(member):
			st.sig = member
			st.sigLine = lineNo
			st.sigOpen = true
			st.sigOwn = frame.class
			st.tryFinishFunc()
		default:
			if m := phpPropertyRe.FindStringSubmatch(member); m != nil {
				frame.class.AddProperty(extraction.PropertyInfo{
					Name: m[3],
					Type: orDefault(m[2], "mixed"),
				})
			}
		}
	}
}

// tryFinishFunc records the pending function once its parameter list closes.
func (st *phpState) tryFinishFunc() {
	loc := phpFuncRe.FindStringSubmatchIndex(st.sig)
	inner, rest, closed := parenGroup(st.sig, afterMatch(loc))
	if !closed {
		return
	}
	st.sigOpen = false

	name := st.sig[loc[4]:loc[5]]
	ret := "mixed"
	if r := phpReturnRe.FindStringSubmatch(rest); r != nil {
		ret = r[1]
	} else if name == "__construct" || name == "__destruct" {
		ret = "void"
	}
	fn := extraction.NewFunction(name, ret, st.parsed.Path, st.sigLine)
	fn.Parameters = parsePHPParams(inner)
	phpModifiers.apply(fn, modifierWords(st.sig[loc[2]:loc[3]]))
	st.doc.describe(fn)
	st.parsed.Attach(st.sigOwn, fn)
	st.doc.reset()
}

func (st *phpState) addConstant(name, value string) {
	st.parsed.AddConstant(extraction.ConstantInfo{
		Name:        name,
		Value:       strings.TrimSpace(value),
		Description: st.optionalDescription(),
	})
}

func (st *phpState) optionalDescription() string {
	if st.doc.empty() {
		return ""
	}
	return st.doc.description()
}

// parsePHPParams parses "[?Type] [&][...]$name [= default]" pieces, dropping
// promoted-property modifiers and the leading '$'.
func parsePHPParams(inner string) []extraction.ParameterInfo {
	params := []extraction.ParameterInfo{}
	for _, piece := range splitTopLevel(inner) {
		piece = stripDefault(piece)
		fields := strings.Fields(piece)
		for len(fields) > 1 && phpParamModifiers.has(fields[0]) {
			fields = fields[1:]
		}
		m := phpParamRe.FindStringSubmatch(strings.Join(fields, " "))
		if m == nil {
			continue
		}
		params = append(params, extraction.ParameterInfo{
			Name: m[2],
			Type: orDefault(m[1], "mixed"),
		})
	}
	return params
}
