package parser

import (
	"fmt"
	"regexp"
	"strings"
)

var colorRegex = regexp.MustCompile(`^#([0-9A-F]{6}|[0-9A-F]{3})$`)

// NormalizeColor normalizes tag colours to uppercase #RRGGBB format
// Accepts formats like:
// - "#3b82f6", "3B82F6" -> "#3B82F6"
// - "#fa0" -> "#FFAA00"
// Returns error if format is invalid
func NormalizeColor(color string) (string, error) {
	color = strings.ToUpper(strings.TrimSpace(color))
	if color == "" {
		return "", nil
	}
	if !strings.HasPrefix(color, "#") {
		color = "#" + color
	}

	matches := colorRegex.FindStringSubmatch(color)
	if matches == nil {
		return "", fmt.Errorf("invalid colour %q. Use: #RRGGBB", color)
	}

	hex := matches[1]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	return "#" + hex, nil
}

// IsValidColor checks if a string is a usable tag colour
func IsValidColor(color string) bool {
	_, err := NormalizeColor(color)
	return err == nil
}
