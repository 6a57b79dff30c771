package extractor

import (
	"strings"
	"testing"

	"github.com/mvp-joe/sourcedoc/internal/extractor/extraction"
	"github.com/stretchr/testify/assert"
)

// Test Plan for extractDescription and extractImports:
// - Leading block comments drop '*' gutters, @tag lines and inline @tags
// - Runs of line comments are joined; the first code line ends the run
// - Shebangs, #include lines and preamble statements are skipped
// - Python module docstrings, single and multi-line
// - Inline doc markup is cleaned
// - Headers past the scan limit are ignored
// - Imports: Go blocks, C includes, C# using, Ruby require, PHP use

func TestExtractDescription(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		language string
		src      string
		want     string
	}{
		{
			name:     "block comment",
			language: LanguageJava,
			src:      "/**\n * Utility helpers.\n * @author someone\n */\npackage x;",
			want:     "Utility helpers.",
		},
		{
			name:     "inline tag in one-line block",
			language: LanguageJava,
			src:      "/** Adds. @param a first */\nclass A {}",
			want:     "Adds.",
		},
		{
			name:     "inline tag after text line",
			language: LanguageTypeScript,
			src:      "/**\n * Math helpers. @since 2.0\n */\nexport {}",
			want:     "Math helpers.",
		},
		{
			name:     "line comment run",
			language: LanguageGo,
			src:      "// First line.\n// Second line.\npackage main",
			want:     "First line. Second line.",
		},
		{
			name:     "shebang skipped",
			language: LanguagePython,
			src:      "#!/usr/bin/env python\n# Tool script.\nimport os",
			want:     "Tool script.",
		},
		{
			name:     "include is not a comment",
			language: LanguageC,
			src:      "#include <stdio.h>\n// Main file.\nint main() {}",
			want:     "Main file.",
		},
		{
			name:     "python one-line docstring",
			language: LanguagePython,
			src:      `"""Module doc."""` + "\nimport os",
			want:     "Module doc.",
		},
		{
			name:     "python multi-line docstring",
			language: LanguagePython,
			src:      "'''\nMulti line\ndoc.\n'''\n",
			want:     "Multi line doc.",
		},
		{
			name:     "inline markup",
			language: LanguageJava,
			src:      "/** Returns {@code null}. <p>More</p> */",
			want:     "Returns `null`. More",
		},
		{
			name:     "preamble then comment",
			language: LanguageTypeScript,
			src:      "'use strict'\n\n// Entry point.\nexport {}",
			want:     "Entry point.",
		},
		{
			name:     "code first",
			language: LanguageTypeScript,
			src:      "const x = 1;\n// Too late.",
			want:     extraction.DefaultFileDescription,
		},
		{
			name:     "hash is not a comment in go",
			language: LanguageGo,
			src:      "# heading\n",
			want:     extraction.DefaultFileDescription,
		},
		{
			name:     "empty block",
			language: LanguageCPP,
			src:      "/*\n */\nint x;",
			want:     extraction.DefaultFileDescription,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, extractDescription(splitLines(tt.src), tt.language))
		})
	}
}

func TestExtractDescription_ScanLimit(t *testing.T) {
	t.Parallel()

	src := strings.Repeat("import x\n", descriptionScanLimit) + "// Too far.\n"
	assert.Equal(t, extraction.DefaultFileDescription, extractDescription(splitLines(src), LanguagePython))
}

func TestExtractImports(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		language string
		src      string
		want     []string
	}{
		{
			name:     "go block and single",
			language: LanguageGo,
			src:      "package main\n\nimport (\n\t\"fmt\"\n\t// tools\n\tio \"io\"\n)\n\nimport \"os\"\n",
			want:     []string{`"fmt"`, `io "io"`, `import "os"`},
		},
		{
			name:     "c includes only",
			language: LanguageCPP,
			src:      "#include <vector>\n#include \"x.h\"\nimport foo;\n",
			want:     []string{"#include <vector>", `#include "x.h"`},
		},
		{
			name:     "csharp using",
			language: LanguageCSharp,
			src:      "using System;\nusing (var x = y) {}\nusing var z = w;\n",
			want:     []string{"using System;"},
		},
		{
			name:     "ruby require",
			language: LanguageRuby,
			src:      "require 'json'\nrequire_relative 'cart'\n",
			want:     []string{"require 'json'", "require_relative 'cart'"},
		},
		{
			name:     "python duplicates kept",
			language: LanguagePython,
			src:      "import os\nfrom x import y\n    import os\n",
			want:     []string{"import os", "from x import y", "import os"},
		},
		{
			name:     "php use not require",
			language: LanguagePHP,
			src:      "<?php\nuse App\\Foo;\nrequire 'x.php';\n",
			want:     []string{`use App\Foo;`},
		},
		{
			name:     "none",
			language: LanguageTypeScript,
			src:      "export const a = 1;\n",
			want:     []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, extractImports(splitLines(tt.src), tt.language))
		})
	}
}
