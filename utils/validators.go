package utils

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// NormalizeTags trims each tag and strips one leading '#'. It reports false
// when the list is empty or any tag is blank after normalization.
func NormalizeTags(tags []string) ([]string, bool) {
	if len(tags) == 0 {
		return nil, false
	}

	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
		if tag == "" {
			return nil, false
		}
		out = append(out, tag)
	}
	return out, true
}
