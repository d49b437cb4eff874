// Package prompt loads the default system prompt.
package prompt

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// Load returns the contents of path on fs, trimmed. An empty path or a blank
// file yields fallback.
func Load(fs afero.Fs, path, fallback string) (string, error) {
	if path == "" {
		return fallback, nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", fmt.Errorf("failed to read system prompt file %s: %w", path, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return fallback, nil
	}
	return text, nil
}
