package extractor

import (
	"testing"

	"github.com/mvp-joe/sourcedoc/internal/extractor/extraction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for ParseFileContent:
// - Totality: empty and malformed input never panic for any extension
// - Imports and constants keep source order
// - For every brace language a class with one method attaches the method to the class,
//   including bodies that open and close on the declaration line
// - Java @param linkage through the dispatcher
// - Unknown extensions fall back to the generic scanner
// - Python end-to-end: module docstring, class, method, parameters and return type
// - CRLF line endings are handled
// - DetectLanguage is case-insensitive and SupportedExtensions is sorted

func TestParseFileContent_Totality(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"\n\n\n",
		"}}}\n/* unterminated\n(((",
		"/**\n * @param\n",
		"class\ndef\nfunc (\nfn (\nfunction (\n",
		"\"\"\"\nnever closed",
		"class A {\n  x(\n",
		"end\nend\n}\n};\n",
	}
	exts := append(SupportedExtensions(), "xyz", "")

	for _, ext := range exts {
		for _, input := range inputs {
			path := "sample." + ext
			assert.NotPanics(t, func() {
				parsed := ParseFileContent(input, path)
				assert.NotNil(t, parsed.Imports)
				assert.NotNil(t, parsed.Constants)
				assert.NotNil(t, parsed.Classes)
				assert.NotNil(t, parsed.Functions)
				assert.NotEmpty(t, parsed.Description)
			}, "ext=%q input=%q", ext, input)
		}
	}
}

func TestParseFileContent_Empty(t *testing.T) {
	t.Parallel()

	parsed := ParseFileContent("", "empty.ts")

	assert.Equal(t, "empty.ts", parsed.Path)
	assert.Equal(t, LanguageTypeScript, parsed.Language)
	assert.Equal(t, extraction.DefaultFileDescription, parsed.Description)
	assert.Empty(t, parsed.Imports)
	assert.Empty(t, parsed.Constants)
	assert.Empty(t, parsed.Classes)
	assert.Empty(t, parsed.Functions)
}

func TestParseFileContent_OrderPreservation(t *testing.T) {
	t.Parallel()

	src := `import a from 'a';
import { b } from 'b';
import * as c from 'c';
export const ONE = 1;
export const TWO = 2;
`
	parsed := ParseFileContent(src, "order.ts")

	assert.Equal(t, []string{
		"import a from 'a';",
		"import { b } from 'b';",
		"import * as c from 'c';",
	}, parsed.Imports)
	require.Len(t, parsed.Constants, 2)
	assert.Equal(t, "ONE", parsed.Constants[0].Name)
	assert.Equal(t, "1", parsed.Constants[0].Value)
	assert.Equal(t, "TWO", parsed.Constants[1].Name)
}

func TestParseFileContent_Attachment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		src  string
	}{
		{"foo.ts", "class Foo {\n  bar() {}\n}\n"},
		{"foo.js", "class Foo {\n  bar() {}\n}\n"},
		{"Foo.java", "class Foo {\n    void bar() {}\n}\n"},
		{"Foo.cs", "class Foo {\n    void bar() {}\n}\n"},
		{"foo.cpp", "class Foo {\n    void bar() {}\n};\n"},
		{"foo.h", "struct Foo {\n    void bar();\n};\n"},
		{"Foo.php", "<?php\nclass Foo {\n    function bar() {}\n}\n"},
		{"Foo.swift", "class Foo {\n    func bar() {}\n}\n"},
		{"foo.go", "type Foo struct {\n}\n\nfunc (f *Foo) bar() {}\n"},
		{"foo.rs", "struct Foo {}\n\nimpl Foo {\n    fn bar(&self) {}\n}\n"},
		{"foo.py", "class Foo:\n    def bar(self):\n        pass\n"},
		{"foo.rb", "class Foo\n  def bar\n  end\nend\n"},
		{"one-line/foo.ts", "class Foo { bar() {} }\n"},
		{"one-line/foo.js", "export class Foo { bar() { return 1; } }\n"},
		{"one-line/Foo.java", "class Foo { void bar() {} }\n"},
		{"one-line/Foo.cs", "class Foo { public void bar() { } }\n"},
		{"one-line/foo.cpp", "class Foo { void bar() {} };\n"},
		{"one-line/foo.hpp", "struct Foo { public: void bar(); };\n"},
		{"one-line/Foo.php", "<?php\nclass Foo { function bar() {} }\n"},
		{"one-line/Foo.swift", "class Foo { func bar() {} }\n"},
		{"one-line/foo.rs", "struct Foo {}\nimpl Foo { fn bar(&self) {} }\n"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			parsed := ParseFileContent(tt.src, tt.path)

			require.Len(t, parsed.Classes, 1)
			assert.Equal(t, "Foo", parsed.Classes[0].Name)
			require.Len(t, parsed.Classes[0].Methods, 1)
			assert.Equal(t, "bar", parsed.Classes[0].Methods[0].Name)
			assert.Empty(t, parsed.Functions)
		})
	}
}

func TestParseFileContent_GoMethodBeforeType(t *testing.T) {
	t.Parallel()

	src := "func (f *Foo) bar() {}\n\ntype Foo struct {\n}\n"
	parsed := ParseFileContent(src, "late.go")

	require.Len(t, parsed.Classes, 1)
	assert.Empty(t, parsed.Classes[0].Methods)
	require.Len(t, parsed.Functions, 1)
	assert.Equal(t, "bar", parsed.Functions[0].Name)
}

func TestParseFileContent_JavaDocLinkage(t *testing.T) {
	t.Parallel()

	src := `class A {
    /**
     * Does m.
     * @param x the x value
     */
    void m(int x) {}
}
`
	parsed := ParseFileContent(src, "A.java")

	require.Len(t, parsed.Classes, 1)
	require.Len(t, parsed.Classes[0].Methods, 1)
	m := parsed.Classes[0].Methods[0]
	require.Len(t, m.Parameters, 1)
	assert.Equal(t, "x", m.Parameters[0].Name)
	assert.Equal(t, "the x value", m.Parameters[0].Description)
}

func TestParseFileContent_Fallback(t *testing.T) {
	t.Parallel()

	src := "function do() {\n  return 1;\n}\nstring compute(x) {\n}\n"
	parsed := ParseFileContent(src, "notes.xyz")

	assert.Equal(t, LanguageUnknown, parsed.Language)
	require.Len(t, parsed.Functions, 2)
	assert.Equal(t, "do", parsed.Functions[0].Name)
	assert.Equal(t, "unknown", parsed.Functions[0].ReturnType)
	assert.Empty(t, parsed.Functions[0].Parameters)
	assert.Equal(t, 1, parsed.Functions[0].Line)
	assert.Equal(t, "compute", parsed.Functions[1].Name)
	assert.Equal(t, 4, parsed.Functions[1].Line)
}

func TestParseFileContent_PythonEndToEnd(t *testing.T) {
	t.Parallel()

	src := `"""Module doc."""
class Greeter:
    def greet(self, name: str) -> str:
        """Say hi."""
        return f"hi {name}"
`
	parsed := ParseFileContent(src, "a.py")

	assert.Equal(t, "Module doc.", parsed.Description)
	require.Len(t, parsed.Classes, 1)
	greeter := parsed.Classes[0]
	assert.Equal(t, "Greeter", greeter.Name)
	require.Len(t, greeter.Methods, 1)
	greet := greeter.Methods[0]
	assert.Equal(t, "greet", greet.Name)
	assert.Equal(t, "str", greet.ReturnType)
	assert.Equal(t, "Say hi.", greet.Description)
	assert.Equal(t, []extraction.ParameterInfo{{Name: "name", Type: "str"}}, greet.Parameters)
	assert.Empty(t, parsed.Functions)
}

func TestParseFileContent_CRLF(t *testing.T) {
	t.Parallel()

	src := "// Widget helpers.\r\nclass Widget {\r\n  render(): void {}\r\n}\r\n"
	parsed := ParseFileContent(src, "widget.ts")

	assert.Equal(t, "Widget helpers.", parsed.Description)
	require.Len(t, parsed.Classes, 1)
	require.Len(t, parsed.Classes[0].Methods, 1)
	assert.Equal(t, "render", parsed.Classes[0].Methods[0].Name)
}

func TestDetectLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"src/app/Main.TSX", LanguageTypeScript},
		{"index.js", LanguageJavaScript},
		{"lib/util.py", LanguagePython},
		{"include/vec.H", LanguageC},
		{"vec.hpp", LanguageCPP},
		{"Program.cs", LanguageCSharp},
		{"main.go", LanguageGo},
		{"lib.rs", LanguageRust},
		{"App.swift", LanguageSwift},
		{"Makefile", LanguageUnknown},
		{"dir.v1/README", LanguageUnknown},
		{"notes.xyz", LanguageUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectLanguage(tt.path), tt.path)
	}
}

func TestSupportedExtensions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{
		"c", "cpp", "cs", "go", "h", "hpp", "java", "js", "jsx",
		"php", "py", "rb", "rs", "swift", "ts", "tsx",
	}, SupportedExtensions())
}
