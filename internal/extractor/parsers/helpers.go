package parsers

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/sourcedoc/internal/extractor/extraction"
)

// Scanner populates a ParsedFile from the lines of one source file.
// Implementations keep no state between calls; every Scan threads its own
// state record through a single forward pass.
type Scanner interface {
	Scan(lines []string, parsed *extraction.ParsedFile)
}

var (
	preBlockRe    = regexp.MustCompile(`(?is)<pre>.*?</pre>`)
	inlineCodeRe  = regexp.MustCompile(`\{@code\s+([^}]*)\}`)
	inlineLinkRe  = regexp.MustCompile(`\{@(?:link|linkplain|literal)\s+([^}]*)\}`)
	inlineOtherRe = regexp.MustCompile(`\{@\w+\s*([^}]*)\}`)
	htmlTagRe     = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9]*(?:\s[^<>]*)?/?>`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	inlineTagRe   = regexp.MustCompile(`\s@[a-zA-Z]`)
)

// CleanDocText normalizes doc comment text: <pre> blocks are dropped,
// inline {@tags} unwrapped, HTML tags stripped and whitespace collapsed.
func CleanDocText(text string) string {
	text = preBlockRe.ReplaceAllString(text, " ")
	text = inlineCodeRe.ReplaceAllString(text, "`$1`")
	text = inlineLinkRe.ReplaceAllString(text, "$1")
	text = inlineOtherRe.ReplaceAllString(text, "$1")
	text = htmlTagRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// indentOf returns the visual indentation of line, counting tabs as four columns.
func indentOf(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}

// wordSet is an immutable set of keywords.
type wordSet map[string]struct{}

func newWordSet(words ...string) wordSet {
	s := make(wordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func (s wordSet) has(w string) bool {
	_, ok := s[w]
	return ok
}

// memberFlags is a bitmask of the modifier flags carried by ParsedFunction.
type memberFlags uint8

const (
	flagStatic memberFlags = 1 << iota
	flagPrivate
	flagProtected
)

// modifierTable maps a language's modifier keywords to member flags.
// defaults apply when no keyword clears them, which lets languages where
// visibility is opt-in (Rust's pub, C#'s implicit private) share the same shape
// as languages with explicit private keywords.
type modifierTable struct {
	sets     map[string]memberFlags
	clears   map[string]memberFlags
	defaults memberFlags
}

// resolve computes the flags for a list of modifier words.
func (t modifierTable) resolve(words []string) memberFlags {
	flags := t.defaults
	for _, w := range words {
		if c, ok := t.clears[w]; ok {
			flags &^= c
		}
	}
	for _, w := range words {
		if s, ok := t.sets[w]; ok {
			flags |= s
		}
	}
	return flags
}

// apply resolves words and stores the result on fn.
func (t modifierTable) apply(fn *extraction.ParsedFunction, words []string) {
	applyFlags(fn, t.resolve(words))
}

func applyFlags(fn *extraction.ParsedFunction, flags memberFlags) {
	fn.IsStatic = flags&flagStatic != 0
	fn.IsPrivate = flags&flagPrivate != 0
	fn.IsProtected = flags&flagProtected != 0
}

// splitTopLevel splits s on commas that are not nested inside brackets or quotes.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	var quote rune
	start := 0
	for i, r := range s {
		if quote != 0 {
			if r == quote {
				quote = 0
			}
			continue
		}
		switch r {
		case '"', '\'', '`':
			quote = r
		case '<':
			// <- is a Go channel direction, not a type argument list.
			if !strings.HasPrefix(s[i:], "<-") {
				depth++
			}
		case '>':
			// => and -> are arrows.
			if depth > 0 && (i == 0 || (s[i-1] != '=' && s[i-1] != '-')) {
				depth--
			}
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])

	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// topLevelIndex returns the index of the first sep outside brackets and quotes, or -1.
func topLevelIndex(s string, sep byte) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			if depth > 0 {
				depth--
			}
		default:
			if c != sep || depth != 0 {
				continue
			}
			if sep == '=' && !isAssignment(s, i) {
				continue
			}
			return i
		}
	}
	return -1
}

// isAssignment reports whether the '=' at i is a plain assignment rather than
// part of =>, ==, !=, <= or >=.
func isAssignment(s string, i int) bool {
	if i+1 < len(s) && (s[i+1] == '>' || s[i+1] == '=') {
		return false
	}
	if i > 0 && strings.IndexByte("=!<>:", s[i-1]) >= 0 {
		return false
	}
	return true
}

// stripDefault removes a top-level "= default" suffix from a parameter.
func stripDefault(param string) string {
	if i := topLevelIndex(param, '='); i >= 0 {
		return strings.TrimSpace(param[:i])
	}
	return param
}

// parenGroup returns the text between the '(' at open and its matching ')'
// plus whatever follows it. closed is false when the line ends first, in which
// case inner holds the remainder of the line.
func parenGroup(line string, open int) (inner, rest string, closed bool) {
	if open < 0 || open >= len(line) || line[open] != '(' {
		return "", line, false
	}
	depth := 0
	var quote byte
	for i := open; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return line[open+1 : i], line[i+1:], true
			}
		}
	}
	return line[open+1:], "", false
}

// afterMatch returns the '(' position that ends a regex match on line.
func afterMatch(loc []int) int {
	return loc[1] - 1
}

// lastSegment returns the part of a qualified name after the final separator.
func lastSegment(name string, seps string) string {
	if i := strings.LastIndexAny(name, seps); i >= 0 {
		return name[i+1:]
	}
	return name
}

// stripGenerics removes a trailing <...> type argument list.
func stripGenerics(name string) string {
	if i := strings.IndexAny(name, "<["); i >= 0 {
		return strings.TrimSpace(name[:i])
	}
	return strings.TrimSpace(name)
}

// paramTagFunc recognizes a per-parameter doc tag and returns its name and text.
type paramTagFunc func(part string) (name, desc string, ok bool)

// tagStartFunc reports whether a doc line begins a tag section of any kind.
type tagStartFunc func(part string) bool

func atTagStart(part string) bool {
	return len(part) > 1 && (part[0] == '@' || part[0] == '\\') && isLetter(part[1])
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// regexParamTag builds a paramTagFunc from a pattern with name and description groups.
func regexParamTag(re *regexp.Regexp) paramTagFunc {
	return func(part string) (string, string, bool) {
		m := re.FindStringSubmatch(part)
		if m == nil {
			return "", "", false
		}
		return m[1], strings.TrimSpace(m[2]), true
	}
}

// docBuffer accumulates pending doc comment text and per-parameter descriptions
// until the next declaration consumes or discards them.
type docBuffer struct {
	lines    []string
	params   map[string]string
	inBlock  bool
	tagName  string
	inTag    bool
	paramTag paramTagFunc
	tagStart tagStartFunc
	split    bool
}

func newDocBuffer(paramTag paramTagFunc, tagStart tagStartFunc, splitInline bool) *docBuffer {
	return &docBuffer{
		params:   map[string]string{},
		paramTag: paramTag,
		tagStart: tagStart,
		split:    splitInline,
	}
}

func (d *docBuffer) reset() {
	d.lines = d.lines[:0]
	d.params = map[string]string{}
	d.inBlock = false
	d.inTag = false
	d.tagName = ""
}

func (d *docBuffer) empty() bool {
	return len(d.lines) == 0 && len(d.params) == 0
}

// add feeds one line of comment text (markers already stripped).
func (d *docBuffer) add(text string) {
	if !d.split {
		d.addPart(text)
		return
	}
	for _, part := range SplitInlineTags(text) {
		d.addPart(part)
	}
}

func (d *docBuffer) addPart(part string) {
	part = strings.TrimSpace(part)
	if part == "" {
		return
	}
	if d.paramTag != nil {
		if name, desc, ok := d.paramTag(part); ok {
			d.inTag = true
			d.tagName = name
			if name != "" {
				d.params[name] = desc
			}
			return
		}
	}
	if d.tagStart != nil && d.tagStart(part) {
		d.inTag = true
		d.tagName = ""
		return
	}
	if d.inTag {
		if d.tagName != "" {
			d.params[d.tagName] = strings.TrimSpace(d.params[d.tagName] + " " + part)
		}
		return
	}
	d.lines = append(d.lines, part)
}

// consumeBlock feeds a /* */ comment line into the buffer and reports whether
// trimmed belonged to a block comment. A new block discards older pending text.
func (d *docBuffer) consumeBlock(trimmed string) bool {
	if !d.inBlock {
		if !strings.HasPrefix(trimmed, "/*") {
			return false
		}
		d.reset()
		d.inBlock = true
		trimmed = strings.TrimLeft(trimmed[2:], "*")
	}
	if end := strings.Index(trimmed, "*/"); end >= 0 {
		trimmed = trimmed[:end]
		d.inBlock = false
	}
	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimSpace(strings.TrimLeft(trimmed, "*"))
	d.add(trimmed)
	return true
}

// consumeLine feeds a single-line comment starting with one of prefixes.
func (d *docBuffer) consumeLine(trimmed string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(trimmed, p) {
			d.add(strings.TrimPrefix(trimmed, p))
			return true
		}
	}
	return false
}

func (d *docBuffer) description() string {
	if len(d.lines) == 0 {
		return extraction.DefaultDescription
	}
	if text := CleanDocText(strings.Join(d.lines, " ")); text != "" {
		return text
	}
	return extraction.DefaultDescription
}

// describe copies the buffered description and parameter text onto fn.
func (d *docBuffer) describe(fn *extraction.ParsedFunction) {
	fn.Description = d.description()
	applyParamDocs(fn, d.params)
}

func applyParamDocs(fn *extraction.ParsedFunction, docs map[string]string) {
	if len(docs) == 0 {
		return
	}
	for i := range fn.Parameters {
		name := strings.TrimLeft(fn.Parameters[i].Name, "*&.$")
		if desc, ok := docs[name]; ok && desc != "" {
			fn.Parameters[i].Description = CleanDocText(desc)
		}
	}
}

// SplitInlineTags breaks "text @param x y" into ["text", "@param x y"].
func SplitInlineTags(text string) []string {
	locs := inlineTagRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}
	parts := make([]string, 0, len(locs)+1)
	start := 0
	for _, loc := range locs {
		parts = append(parts, text[start:loc[0]])
		start = loc[0] + 1
	}
	return append(parts, text[start:])
}

// classFrame is an open class body in a brace language.
type classFrame struct {
	class        *extraction.ParsedClass
	kind         string
	indent       int
	memberIndent int
	access       memberFlags
}

// classStack tracks nested class bodies by declaration indentation.
type classStack struct {
	frames []*classFrame
}

func (s *classStack) push(class *extraction.ParsedClass, kind string, indent int, access memberFlags) *classFrame {
	f := &classFrame{class: class, kind: kind, indent: indent, memberIndent: -1, access: access}
	s.frames = append(s.frames, f)
	return f
}

// pop closes the innermost frame.
func (s *classStack) pop() {
	if len(s.frames) > 0 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

func (s *classStack) top() *classFrame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// current returns the innermost open class, or nil at file level.
func (s *classStack) current() *extraction.ParsedClass {
	if f := s.top(); f != nil {
		return f.class
	}
	return nil
}

// closeOn pops the innermost frame when trimmed is a standalone closing brace
// at or left of the class declaration's indentation.
func (s *classStack) closeOn(trimmed string, indent int) bool {
	f := s.top()
	if f == nil || !isClosingBrace(trimmed) || indent > f.indent {
		return false
	}
	s.frames = s.frames[:len(s.frames)-1]
	return true
}

// observe records the indentation of the first member line of the innermost class.
func (s *classStack) observe(trimmed string, indent int) {
	f := s.top()
	if f == nil || f.memberIndent >= 0 {
		return
	}
	if trimmed == "" || trimmed == "{" || isClosingBrace(trimmed) {
		return
	}
	f.memberIndent = indent
}

// atMember reports whether indent is the member level of the innermost class.
func (s *classStack) atMember(indent int) bool {
	f := s.top()
	return f != nil && f.memberIndent == indent
}

func isClosingBrace(trimmed string) bool {
	switch trimmed {
	case "}", "};", "});", "},", "})":
		return true
	}
	return false
}

// braceBody returns the text between the first '{' on line and its matching
// '}'. ok is false when the body does not close on the same line.
func braceBody(line string) (body string, ok bool) {
	open := strings.IndexByte(line, '{')
	if open < 0 {
		return "", false
	}
	depth := 0
	var quote byte
	for i := open; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return line[open+1 : i], true
			}
		}
	}
	return "", false
}

// splitMembers breaks a one-line class body into member declarations. A
// member ends at a top-level ';' or at the '}' closing its own body.
func splitMembers(body string) []string {
	var members []string
	depth := 0
	var quote byte
	start := 0
	emit := func(end int) {
		if m := strings.TrimSpace(body[start:end]); m != "" && m != ";" {
			members = append(members, m)
		}
		start = end
	}
	for i := 0; i < len(body); i++ {
		c := body[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case '}':
			if depth > 0 {
				depth--
			}
			if depth == 0 {
				emit(i + 1)
			}
		case ';':
			if depth == 0 {
				emit(i + 1)
			}
		}
	}
	emit(len(body))
	return members
}

// orDefault returns s when non-empty, otherwise def.
func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

// modifierWords splits a captured run of modifier keywords.
func modifierWords(s string) []string {
	return strings.Fields(s)
}
