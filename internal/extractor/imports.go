package extractor

import "strings"

// extractImports collects import statements verbatim, in source order.
func extractImports(lines []string, language string) []string {
	imports := []string{}
	inGoBlock := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch language {
		case LanguageC, LanguageCPP:
			if strings.HasPrefix(trimmed, "#include") {
				imports = append(imports, trimmed)
			}
			continue
		case LanguageGo:
			if inGoBlock {
				if strings.HasPrefix(trimmed, ")") {
					inGoBlock = false
				} else if !strings.HasPrefix(trimmed, "//") {
					imports = append(imports, trimmed)
				}
				continue
			}
			if trimmed == "import (" {
				inGoBlock = true
				continue
			}
		case LanguageCSharp:
			if strings.HasPrefix(trimmed, "using ") && !strings.HasPrefix(trimmed, "using (") && !strings.HasPrefix(trimmed, "using var ") {
				imports = append(imports, trimmed)
				continue
			}
		case LanguageRuby:
			if strings.HasPrefix(trimmed, "require") {
				imports = append(imports, trimmed)
				continue
			}
		}

		if strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "from ") || strings.HasPrefix(trimmed, "use ") {
			imports = append(imports, trimmed)
		}
	}
	return imports
}
