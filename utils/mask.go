package utils

import (
	"regexp"
	"strings"
)

var (
	emailRe    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRe    = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
	cardRe     = regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`)
	cvvRe      = regexp.MustCompile(`(?i)"cvv"\s*:\s*"?\d{3,4}"?`)
	passwordRe = regexp.MustCompile(`(?i)"password"\s*:\s*"[^"]*"`)
	sepRe      = regexp.MustCompile(`[\s-]`)
)

// MaskSensitive redacts emails, phone numbers, card numbers (keeping the
// last 4 digits), CVVs, and passwords from s before it reaches a log line.
func MaskSensitive(s string) string {
	if s == "" {
		return s
	}
	s = emailRe.ReplaceAllStringFunc(s, maskEmail)
	s = phoneRe.ReplaceAllString(s, "***-***-****")
	s = cardRe.ReplaceAllStringFunc(s, maskCardNumber)
	s = cvvRe.ReplaceAllString(s, `"cvv":"***"`)
	s = passwordRe.ReplaceAllString(s, `"password":"***"`)
	return s
}

func maskEmail(email string) string {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 {
		return "***@***.com"
	}
	local := parts[0]
	masked := "***"
	if len(local) > 2 {
		masked = local[:1] + "***" + local[len(local)-1:]
	}
	return masked + "@" + parts[1]
}

func maskCardNumber(card string) string {
	digits := sepRe.ReplaceAllString(card, "")
	if len(digits) < 4 {
		return "****"
	}
	return "****-****-****-" + digits[len(digits)-4:]
}
