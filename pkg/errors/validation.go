package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// maxIDLength bounds instance ids so a token cannot smuggle arbitrarily
// large keys into the layout.
const maxIDLength = 128

// ValidateID checks an instance id: non-empty, at most maxIDLength bytes,
// no whitespace or control characters.
func ValidateID(id string) error {
	switch {
	case id == "":
		return New(ErrCodeInvalidInput, "instance id cannot be empty")
	case len(id) > maxIDLength:
		return New(ErrCodeInvalidInput, "instance id too long (max %d characters)", maxIDLength)
	case strings.IndexFunc(id, func(r rune) bool { return unicode.IsControl(r) || unicode.IsSpace(r) }) >= 0:
		return New(ErrCodeInvalidInput, "instance id %q contains whitespace or control characters", id)
	}
	return nil
}

// widgetTypeRegex matches registry keys: lowercase words joined by dashes.
var widgetTypeRegex = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// ValidateWidgetType validates a widget type identifier.
func ValidateWidgetType(typ string) error {
	if typ == "" {
		return New(ErrCodeInvalidInput, "widget type cannot be empty")
	}
	if !widgetTypeRegex.MatchString(typ) {
		return New(ErrCodeInvalidInput, "invalid widget type: %q", typ)
	}
	return nil
}

// ValidateURL checks an image or iframe source: an absolute http(s) URL
// with a host. The empty string passes, since widgets are often placed
// before they are configured.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL %q has no host", rawURL)
	}
	return nil
}

// colorRegex matches #rgb, #rrggbb and #rrggbbaa hex colors.
var colorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// ValidateColor validates a theme color. Colors are opaque to the layout
// engine, but the CLI rejects obvious typos before they are encoded.
func ValidateColor(color string) error {
	if !colorRegex.MatchString(color) {
		return New(ErrCodeInvalidInput, "invalid color %q (want #rgb or #rrggbb)", color)
	}
	return nil
}
