package service

import (
	"math"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	nameMinLen     = 2
	nameMaxLen     = 15
	passwordMinLen = 8
	passwordMaxLen = 64
	tweetMaxLen    = 280

	feedDefaultLimit = 20
	feedMaxLimit     = 100
)

var nameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// RegisterInput — данные формы регистрации.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	PasswordControl string
}

func (in RegisterInput) validate() (RegisterInput, error) {
	name := strings.TrimSpace(in.Name)
	if n := utf8.RuneCountInString(name); n < nameMinLen || n > nameMaxLen {
		return in, invalid("name", "must be 2 to 15 characters long")
	}

	if !nameRe.MatchString(name) {
		return in, invalid("name", "may contain only latin letters, digits and underscore")
	}

	email, ok := normalizeEmail(in.Email)
	if !ok {
		return in, invalid("email", "invalid email address")
	}

	if n := utf8.RuneCountInString(in.Password); n < passwordMinLen || n > passwordMaxLen {
		return in, invalid("password", "must be 8 to 64 characters long")
	}

	if in.Password != in.PasswordControl {
		return in, invalid("password_control", "passwords do not match")
	}

	in.Name = name
	in.Email = email

	return in, nil
}

// normalizeEmail обрезает пробелы, проверяет формат и приводит к нижнему регистру.
func normalizeEmail(raw string) (string, bool) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", false
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", false
	}

	return strings.ToLower(email), true
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", invalid("tweet_data", "must not be empty")
	}

	if utf8.RuneCountInString(content) > tweetMaxLen {
		return "", invalid("tweet_data", "must be at most 280 characters long")
	}

	return content, nil
}

// normalizePage: limit <= 0 -> значение по умолчанию, limit > max -> max,
// offset приводится к диапазону [0, MaxInt32].
func normalizePage(limit, offset int) (int32, int32) {
	switch {
	case limit <= 0:
		limit = feedDefaultLimit
	case limit > feedMaxLimit:
		limit = feedMaxLimit
	}

	switch {
	case offset < 0:
		offset = 0
	case offset > math.MaxInt32:
		offset = math.MaxInt32
	}

	return int32(limit), int32(offset)
}
