package validator

import (
	"fmt"
	"regexp"
	"time"

	"titlehub/internal/apperror"
)

const (
	UsernameMaxLength = 150
	EmailMaxLength    = 254
	SlugMaxLength     = 50

	// "me" is routed to the self-profile endpoint, so no user may claim it.
	reservedUsername = "me"
)

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_.@+-]+$`)
	slugRe     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// Now is the clock used by Year. Tests override it to stay deterministic.
var Now = time.Now

// Username checks format, length and the reserved "me" literal.
func Username(value string) error {
	if value == "" {
		return apperror.ValidationFailed("username", "username is required")
	}
	if len(value) > UsernameMaxLength {
		return apperror.ValidationFailed("username",
			fmt.Sprintf("username must be at most %d characters", UsernameMaxLength))
	}
	if value == reservedUsername {
		return apperror.ValidationFailed("username", `username "me" is reserved`)
	}
	if !usernameRe.MatchString(value) {
		return apperror.ValidationFailed("username",
			"username may only contain letters, digits and _.@+-")
	}
	return nil
}

// Year rejects years after the current calendar year.
func Year(value int) error {
	if current := Now().Year(); value > current {
		return apperror.ValidationFailed("year",
			fmt.Sprintf("year %d is in the future (current year %d)", value, current))
	}
	return nil
}

// Slug checks the URL-safe identifier used by categories and genres.
func Slug(value string) error {
	if value == "" {
		return apperror.ValidationFailed("slug", "slug is required")
	}
	if len(value) > SlugMaxLength {
		return apperror.ValidationFailed("slug",
			fmt.Sprintf("slug must be at most %d characters", SlugMaxLength))
	}
	if !slugRe.MatchString(value) {
		return apperror.ValidationFailed("slug",
			"slug may only contain letters, digits, hyphens and underscores")
	}
	return nil
}
