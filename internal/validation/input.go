package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinProjectTitleLength       = 3
	MaxProjectTitleLength       = 200
	MinProjectDescriptionLength = 10
	MaxProjectDescriptionLength = 5000
	MaxCoverLetterLength        = 2000
	MaxNotesLength              = 2000
	MaxMessageLength            = 5000
	MinBudget                   = 0.0
	MaxBudget                   = 100000000.0 // 100 миллионов
)

var emailLocalRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+$`)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if !emailLocalRe.MatchString(localPart) {
		return fmt.Errorf("email содержит недопустимые символы")
	}

	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}
	if !strings.Contains(domainPart, ".") {
		return fmt.Errorf("некорректный домен email")
	}

	return nil
}

// ValidateBudget проверяет бюджетное значение.
func ValidateBudget(fieldName string, value float64) error {
	if value < MinBudget {
		return fmt.Errorf("%s не может быть отрицательным", fieldName)
	}
	if value > MaxBudget {
		return fmt.Errorf("%s превышает допустимый максимум", fieldName)
	}
	return nil
}
