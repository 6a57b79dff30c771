package extractor

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/sourcedoc/internal/extractor/extraction"
)

const noDescription = "No description"

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

// RenderMarkdown renders a ParsedFile as a Markdown document. It is pure:
// the same input always produces byte-identical output.
func RenderMarkdown(parsed *extraction.ParsedFile) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Documentation: %s\n\n", parsed.Path)
	fmt.Fprintf(&sb, "%s\n\n", orPlaceholder(parsed.Description, extraction.DefaultFileDescription))

	writeTableOfContents(&sb, parsed)

	if len(parsed.Imports) > 0 {
		sb.WriteString("## Imports\n\n```text\n")
		for _, imp := range parsed.Imports {
			sb.WriteString(imp)
			sb.WriteString("\n")
		}
		sb.WriteString("```\n\n")
	}

	if len(parsed.Constants) > 0 {
		sb.WriteString("## Constants\n\n")
		sb.WriteString("| Name | Value | Description |\n|------|-------|-------------|\n")
		for _, c := range parsed.Constants {
			fmt.Fprintf(&sb, "| `%s` | %s | %s |\n",
				cell(c.Name), codeCell(c.Value), cell(orPlaceholder(c.Description, noDescription)))
		}
		sb.WriteString("\n")
	}

	if len(parsed.Classes) > 0 {
		sb.WriteString("## Classes\n\n")
		for _, class := range parsed.Classes {
			writeClass(&sb, class)
		}
	}

	if len(parsed.Functions) > 0 {
		sb.WriteString("## Functions\n\n")
		for _, fn := range parsed.Functions {
			fmt.Fprintf(&sb, "### `%s`\n\n", Signature(fn))
			fmt.Fprintf(&sb, "**File:** `%s:%d`\n\n", fn.FilePath, fn.Line)
			writeFunctionBody(&sb, fn)
		}
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// Signature formats fn as "name(p: T, q: U): ret".
func Signature(fn *extraction.ParsedFunction) string {
	params := make([]string, len(fn.Parameters))
	for i, p := range fn.Parameters {
		params[i] = p.Name + ": " + p.Type
	}
	return fmt.Sprintf("%s(%s): %s", fn.Name, strings.Join(params, ", "), fn.ReturnType)
}

func writeTableOfContents(sb *strings.Builder, parsed *extraction.ParsedFile) {
	var entries []string
	if len(parsed.Imports) > 0 {
		entries = append(entries, "- [Imports](#imports)")
	}
	if len(parsed.Constants) > 0 {
		entries = append(entries, "- [Constants](#constants)")
	}
	if len(parsed.Classes) > 0 {
		entries = append(entries, "- [Classes](#classes)")
	}
	if len(parsed.Functions) > 0 {
		entries = append(entries, "- [Functions](#functions)")
	}
	if len(entries) == 0 {
		return
	}
	sb.WriteString("## Table of Contents\n\n")
	sb.WriteString(strings.Join(entries, "\n"))
	sb.WriteString("\n\n")
}

func writeClass(sb *strings.Builder, class *extraction.ParsedClass) {
	fmt.Fprintf(sb, "### %s\n\n", class.Name)
	fmt.Fprintf(sb, "**File:** `%s:%d`\n", class.FilePath, class.Line)
	if class.Extends != "" {
		fmt.Fprintf(sb, "**Extends:** `%s`\n", class.Extends)
	}
	sb.WriteString("\n")
	fmt.Fprintf(sb, "%s\n\n", orPlaceholder(class.Description, extraction.DefaultDescription))

	sb.WriteString("#### Methods\n\n")
	if len(class.Methods) == 0 {
		sb.WriteString("_None_\n\n")
	}
	for _, m := range class.Methods {
		fmt.Fprintf(sb, "##### `%s`\n\n", Signature(m))
		writeFunctionBody(sb, m)
	}

	sb.WriteString("#### Properties\n\n")
	sb.WriteString("| Name | Type | Description |\n|------|------|-------------|\n")
	if len(class.Properties) == 0 {
		sb.WriteString("| _None_ | - | - |\n")
	}
	for _, p := range class.Properties {
		fmt.Fprintf(sb, "| `%s` | `%s` | %s |\n",
			cell(p.Name), cell(p.Type), cell(orPlaceholder(p.Description, noDescription)))
	}
	sb.WriteString("\n")
}

func writeFunctionBody(sb *strings.Builder, fn *extraction.ParsedFunction) {
	fmt.Fprintf(sb, "**Returns:** `%s`\n\n", fn.ReturnType)
	if mods := modifierLabels(fn); mods != "" {
		fmt.Fprintf(sb, "**Modifiers:** %s\n\n", mods)
	}
	fmt.Fprintf(sb, "%s\n\n", orPlaceholder(fn.Description, extraction.DefaultDescription))
	if len(fn.Parameters) == 0 {
		return
	}
	sb.WriteString("| Parameter | Type | Description |\n|-----------|------|-------------|\n")
	for _, p := range fn.Parameters {
		fmt.Fprintf(sb, "| `%s` | `%s` | %s |\n",
			cell(p.Name), cell(p.Type), cell(orPlaceholder(p.Description, noDescription)))
	}
	sb.WriteString("\n")
}

func modifierLabels(fn *extraction.ParsedFunction) string {
	var labels []string
	if fn.IsStatic {
		labels = append(labels, "`static`")
	}
	if fn.IsPrivate {
		labels = append(labels, "`private`")
	}
	if fn.IsProtected {
		labels = append(labels, "`protected`")
	}
	return strings.Join(labels, " ")
}

func cell(s string) string {
	return cellEscaper.Replace(s)
}

// codeCell wraps a constant value in backticks; empty values render as "-".
func codeCell(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return "`" + cell(s) + "`"
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}
