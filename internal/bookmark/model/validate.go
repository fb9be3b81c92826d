package model

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateURL checks that raw parses as an absolute http or https URL with a
// host. Anything else (relative paths, missing scheme, ftp:, javascript:)
// is rejected with ErrInvalidURL.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}
	return nil
}

// ValidateTitle rejects titles that are empty after trimming.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidRequest)
	}
	return nil
}
