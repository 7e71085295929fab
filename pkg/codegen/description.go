package codegen

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	descriptionPolicy     *bluemonday.Policy
	descriptionPolicyOnce sync.Once
)

func textPolicy() *bluemonday.Policy {
	descriptionPolicyOnce.Do(func() {
		descriptionPolicy = bluemonday.StrictPolicy()
	})
	return descriptionPolicy
}

// CleanDescription strips markup from a schema description and splits it into
// trimmed comment lines. Leading and trailing blank lines are dropped.
func CleanDescription(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	stripped := html.UnescapeString(textPolicy().Sanitize(normalized))

	lines := strings.Split(stripped, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil
	}
	return lines
}
