package utils

import (
	"regexp"
	"strings"

	"github.com/fintrackeasy/user-service/internal/apperror"
	"github.com/fintrackeasy/user-service/internal/model"
)

var (
	emailRx = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRx = regexp.MustCompile(`^\d{10}$`)
)

// NormalizeEmail lowercases and trims an address before any lookup or write.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validNickname(s string) bool {
	n := len([]rune(s))
	return n >= 2 && n <= 30
}

func ValidateRegister(nickname, email string) []apperror.FieldError {
	var errs []apperror.FieldError
	if !validNickname(nickname) {
		errs = append(errs, apperror.FieldError{Field: "nickname", Message: "Nickname must be between 2 and 30 characters"})
	}
	if !emailRx.MatchString(NormalizeEmail(email)) {
		errs = append(errs, apperror.FieldError{Field: "email", Message: "Invalid email address"})
	}
	return errs
}

// ValidateProfileUpdate checks each supplied field independently; nil means
// the field was absent from the request and stays unchanged.
func ValidateProfileUpdate(nickname, phone, preferredLanguage *string) []apperror.FieldError {
	var errs []apperror.FieldError
	if nickname != nil && !validNickname(*nickname) {
		errs = append(errs, apperror.FieldError{Field: "nickname", Message: "Nickname must be between 2 and 30 characters"})
	}
	if phone != nil && !phoneRx.MatchString(*phone) {
		errs = append(errs, apperror.FieldError{Field: "phone", Message: "Phone number must be exactly 10 digits"})
	}
	if preferredLanguage != nil && *preferredLanguage != model.LanguageEN && *preferredLanguage != model.LanguageFR {
		errs = append(errs, apperror.FieldError{Field: "preferredLanguage", Message: "Preferred language must be one of: en, fr"})
	}
	return errs
}
