package services

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
)

var (
	ErrAuthEmailInvalid     = errors.New("valid email required")
	ErrAuthLoginCodeInvalid = errors.New("login code invalid")
)

var loginCodeFormatRegex = regexp.MustCompile(`^[0-9]{6}$`)

func NormalizeAuthEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return ""
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ""
	}
	return email
}

// NormalizeLoginInput validates an email and six digit code pair.
func NormalizeLoginInput(emailRaw string, codeRaw string) (string, string, error) {
	email := NormalizeAuthEmail(emailRaw)
	if email == "" {
		return "", "", ErrAuthEmailInvalid
	}
	code := strings.TrimSpace(codeRaw)
	if !loginCodeFormatRegex.MatchString(code) {
		return "", "", ErrAuthLoginCodeInvalid
	}
	return email, code, nil
}
