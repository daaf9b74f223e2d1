package validation

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode"

	"AdminPanelPlatform/pkg/errors"
)

// Validator предоставляет общие функции валидации форм перед отправкой.
// Все ошибки возвращаются как ValidationError (errors.ErrValidation)
type Validator struct{}

// NewValidator создает новый Validator
func NewValidator() *Validator {
	return &Validator{}
}

// Problems накапливает ошибки по полям формы
type Problems struct {
	order  []string
	fields map[string]string
}

// Add добавляет ошибку поля; первая ошибка поля сохраняется
func (p *Problems) Add(field, message string) {
	if p.fields == nil {
		p.fields = make(map[string]string)
	}
	if _, exists := p.fields[field]; exists {
		return
	}
	p.order = append(p.order, field)
	p.fields[field] = message
}

// Merge добавляет ошибку валидации, полученную от Validator
func (p *Problems) Merge(err error) {
	if err == nil {
		return
	}
	appErr, ok := errors.As(err)
	if !ok || appErr.Code != errors.ErrValidation {
		p.Add("_", err.Error())
		return
	}
	if len(appErr.Fields) == 0 {
		p.Add("_", appErr.Message)
		return
	}
	keys := make([]string, 0, len(appErr.Fields))
	for k := range appErr.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.Add(k, appErr.Fields[k])
	}
}

// Empty сообщает, что ошибок нет
func (p *Problems) Empty() bool {
	return len(p.order) == 0
}

// Err возвращает ValidationError со всеми накопленными полями или nil
func (p *Problems) Err() error {
	if p.Empty() {
		return nil
	}
	details := make([]string, 0, len(p.order))
	fields := make(map[string]string, len(p.fields))
	for _, field := range p.order {
		details = append(details, field+": "+p.fields[field])
		fields[field] = p.fields[field]
	}
	first := p.order[0]
	err := errors.New(errors.ErrValidation, fmt.Sprintf("%s %s", first, p.fields[first])).
		WithDetails(strings.Join(details, "; "))
	err.Fields = fields
	return err
}

func fieldError(field, message string) error {
	var p Problems
	p.Add(field, message)
	return p.Err()
}

// ValidateRequiredFields проверяет, что обязательные поля заполнены.
// Пустыми считаются строки из одних пробелов
func (v *Validator) ValidateRequiredFields(values map[string]string, required []string) error {
	var p Problems
	for _, field := range required {
		if strings.TrimSpace(values[field]) == "" {
			p.Add(field, "is required")
		}
	}
	return p.Err()
}

// ValidateEmail проверяет базовый формат email
func (v *Validator) ValidateEmail(field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fieldError(field, "is required")
	}
	at := strings.LastIndex(value, "@")
	if at <= 0 || at == len(value)-1 || !strings.Contains(value[at+1:], ".") || strings.ContainsAny(value, " \t") {
		return fieldError(field, "must be a valid email address")
	}
	return nil
}

// ValidatePhone проверяет номер телефона: 7-15 цифр, допускается ведущий +
func (v *Validator) ValidatePhone(field, value string) error {
	value = strings.TrimPrefix(strings.TrimSpace(value), "+")
	if value == "" {
		return fieldError(field, "is required")
	}
	if len(value) < 7 || len(value) > 15 || !allDigits(value) {
		return fieldError(field, "must contain 7 to 15 digits")
	}
	return nil
}

// ValidatePincode проверяет почтовый индекс из 6 цифр
func (v *Validator) ValidatePincode(field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fieldError(field, "is required")
	}
	if len(value) != 6 || !allDigits(value) {
		return fieldError(field, "must contain exactly 6 digits")
	}
	return nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ValidateEnum проверяет значение на соответствие enum
func (v *Validator) ValidateEnum(value string, allowedValues []string, fieldName string) error {
	if value == "" {
		return fieldError(fieldName, "is required")
	}
	for _, allowed := range allowedValues {
		if value == allowed {
			return nil
		}
	}
	return fieldError(fieldName, fmt.Sprintf("must be one of %v, got: %s", allowedValues, value))
}

// ValidateStringLength проверяет длину строки в символах
func (v *Validator) ValidateStringLength(value, fieldName string, min, max int) error {
	length := len([]rune(value))
	if length < min {
		return fieldError(fieldName, fmt.Sprintf("must be at least %d characters", min))
	}
	if length > max {
		return fieldError(fieldName, fmt.Sprintf("must not exceed %d characters", max))
	}
	return nil
}

// ValidateNonNegative проверяет, что число не отрицательное
func (v *Validator) ValidateNonNegative(fieldName string, value float64) error {
	if value < 0 {
		return fieldError(fieldName, "must not be negative")
	}
	return nil
}

// ValidateURL проверяет корректность URL
func (v *Validator) ValidateURL(target string, allowedSchemes []string) error {
	if target == "" {
		return fieldError("url", "is required")
	}
	if strings.ContainsAny(target, " \t\n\r") {
		return fieldError("url", "contains whitespace characters")
	}

	parsedURL, err := url.Parse(target)
	if err != nil {
		return fieldError("url", "has invalid format")
	}

	if len(allowedSchemes) > 0 {
		schemeValid := false
		for _, scheme := range allowedSchemes {
			if parsedURL.Scheme == scheme {
				schemeValid = true
				break
			}
		}
		if !schemeValid {
			return fieldError("url", fmt.Sprintf("must use one of schemes %v", allowedSchemes))
		}
	}

	if parsedURL.Host == "" {
		return fieldError("url", "must have a host")
	}

	return nil
}
