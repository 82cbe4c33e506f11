package format

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/ShubhamK2003/JSONCover/pointer"
)

func isURI(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs() && !strings.ContainsAny(s, " \\")
}

func isURIReference(s string) bool {
	_, err := url.Parse(s)
	return err == nil && !strings.ContainsAny(s, " \\")
}

// isURITemplate checks RFC 6570 brace balance.
func isURITemplate(s string) bool {
	open := false
	for _, r := range s {
		switch r {
		case '{':
			if open {
				return false
			}
			open = true
		case '}':
			if !open {
				return false
			}
			open = false
		}
	}
	return !open
}

// isUUID accepts only the canonical hyphenated form.
func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

func isJSONPointer(s string) bool {
	_, err := pointer.Parse(s)
	return err == nil
}

var relPointerRE = regexp.MustCompile(`^(0|[1-9][0-9]*)(#|/.*)?$`)

func isRelativeJSONPointer(s string) bool {
	m := relPointerRE.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	if strings.HasPrefix(m[2], "/") {
		return isJSONPointer(m[2])
	}
	return true
}

func isRegex(s string) bool {
	_, err := regexp.Compile(s)
	return err == nil
}
