package util

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseFrontMatter splits a YAML header from the body. The header opens with
// a "---" line and ends at the next line that is exactly "---".
func ParseFrontMatter[T any](content string) (T, string, error) {
	var frontMatter T
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, "---\n") {
		return frontMatter, content, fmt.Errorf("front matter not found")
	}

	lines := strings.Split(strings.TrimPrefix(content, "---\n"), "\n")
	end := -1
	for i, line := range lines {
		if strings.TrimRight(line, " \t") == "---" {
			end = i
			break
		}
	}
	if end < 0 {
		return frontMatter, content, fmt.Errorf("invalid front matter format")
	}

	frontMatterStr := strings.Join(lines[:end], "\n")
	body := strings.TrimSpace(strings.Join(lines[end+1:], "\n"))

	if err := yaml.Unmarshal([]byte(frontMatterStr), &frontMatter); err != nil {
		return frontMatter, content, fmt.Errorf("failed to parse front matter: %w", err)
	}

	return frontMatter, body, nil
}

func RenderFrontMatter[T any](frontMatter T, body string) (string, error) {
	frontMatterBytes, err := yaml.Marshal(frontMatter)
	if err != nil {
		return "", fmt.Errorf("failed to convert front matter to YAML: %w", err)
	}

	// Preserve `---` and merge YAML with body
	return fmt.Sprintf("---\n%s---\n\n%s\n", string(frontMatterBytes), body), nil
}
