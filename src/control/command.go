package control

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Parse splits a command line into url-escaped tokens.
func Parse(line string) ([]string, error) {
	tokens := strings.Split(strings.TrimSpace(line), " ")
	for i, item := range tokens {
		escaped, err := url.QueryUnescape(item)
		if err != nil {
			return nil, fmt.Errorf("control: malformed token %q: %w", item, err)
		}
		tokens[i] = escaped
	}
	if len(tokens) == 0 || tokens[0] == "" {
		return nil, fmt.Errorf("control: empty command")
	}
	return tokens, nil
}

// Format joins tokens into a command line, escaping each one.
func Format(tokens ...string) string {
	escaped := make([]string, len(tokens))
	for i, token := range tokens {
		escaped[i] = url.QueryEscape(token)
	}
	return strings.Join(escaped, " ")
}

// FormatSpectrum formats a spectrum report line.
func FormatSpectrum(spectrum []float64) string {
	s := "spectrum"
	for _, value := range spectrum {
		s += " " + strconv.FormatFloat(value, 'f', 6, 64)
	}
	return s
}
