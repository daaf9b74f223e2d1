package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error представляет кастомную ошибку с дополнительной информацией
type Error struct {
	Code    ErrorCode       `json:"code"`
	Message string          `json:"message"`
	Details string          `json:"details,omitempty"`
	Status  int             `json:"status,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	// Fields ошибки валидации по полям формы
	Fields map[string]string `json:"fields,omitempty"`
	Cause  error             `json:"-"`
}

// ErrorCode представляет код ошибки
type ErrorCode string

// Определение кодов ошибок
const (
	// ErrValidation клиентская проверка обязательных полей, запрос не отправлялся
	ErrValidation ErrorCode = "VALIDATION_ERROR"
	// ErrAPI сервер вернул не-2xx ответ или success=false
	ErrAPI ErrorCode = "API_ERROR"
	// ErrNetwork ответ не получен (транспорт, таймаут)
	ErrNetwork ErrorCode = "NETWORK_ERROR"
	// ErrAuth не удалось обновить сессию, ошибка фатальна для сессии
	ErrAuth ErrorCode = "AUTH_ERROR"

	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrForbidden    ErrorCode = "FORBIDDEN"
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrConflict     ErrorCode = "CONFLICT"
)

// Error возвращает сообщение об ошибке
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap возвращает причину ошибки
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду
func (e *Error) Is(target error) bool {
	if targetError, ok := target.(*Error); ok {
		return e.Code == targetError.Code
	}
	return false
}

// New создает новую кастомную ошибку
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap оборачивает существующую ошибку в кастомную
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

func (e *Error) clone() *Error {
	c := *e
	return &c
}

// WithDetails добавляет детали к ошибке
func (e *Error) WithDetails(details string) *Error {
	if e == nil {
		return nil
	}
	c := e.clone()
	c.Details = details
	return c
}

// WithStatus добавляет HTTP статус ответа
func (e *Error) WithStatus(status int) *Error {
	if e == nil {
		return nil
	}
	c := e.clone()
	c.Status = status
	return c
}

// WithPayload добавляет сырое тело ответа сервера
func (e *Error) WithPayload(payload []byte) *Error {
	if e == nil {
		return nil
	}
	c := e.clone()
	if len(payload) > 0 {
		if json.Valid(payload) {
			c.Payload = json.RawMessage(payload)
		} else {
			quoted, _ := json.Marshal(string(payload))
			c.Payload = quoted
		}
	}
	return c
}

// As извлекает *Error из цепочки ошибок
func As(err error) (*Error, bool) {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf возвращает код ошибки или ErrInternal для посторонних ошибок
func CodeOf(err error) ErrorCode {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return ErrInternal
}

// IsValidation проверяет, что ошибка является ValidationError
func IsValidation(err error) bool { return hasCode(err, ErrValidation) }

// IsAPI проверяет, что ошибка является ApiError
func IsAPI(err error) bool { return hasCode(err, ErrAPI) }

// IsNetwork проверяет, что ошибка является NetworkError
func IsNetwork(err error) bool { return hasCode(err, ErrNetwork) }

// IsAuth проверяет, что ошибка является AuthError
func IsAuth(err error) bool { return hasCode(err, ErrAuth) }

func hasCode(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// StatusOf возвращает HTTP статус из ApiError или 0
func StatusOf(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.Status
	}
	return 0
}

// FromHTTPStatus переводит HTTP статус в код ошибки
func FromHTTPStatus(status int) ErrorCode {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrValidation
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	default:
		return ErrInternal
	}
}

// HTTPStatus возвращает соответствующий HTTP статус для ошибки
func (e *Error) HTTPStatus() int {
	if e == nil {
		return http.StatusOK
	}
	if e.Status != 0 {
		return e.Status
	}

	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrValidation:
		return http.StatusBadRequest
	case ErrUnauthorized, ErrAuth:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrConflict:
		return http.StatusConflict
	case ErrNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// GetUserMessage возвращает сообщение для пользователя: сообщение сервера,
// а при его отсутствии общее сообщение по коду ошибки
func (e *Error) GetUserMessage() string {
	if e == nil {
		return ""
	}
	if e.Message != "" && e.Code != ErrInternal && e.Code != ErrNetwork {
		return e.Message
	}

	switch e.Code {
	case ErrValidation:
		return "Please fill in all required fields"
	case ErrNetwork:
		return "Network error, please check your connection"
	case ErrAuth, ErrUnauthorized:
		return "Your session has expired, please log in again"
	case ErrNotFound:
		return "Resource not found"
	case ErrForbidden:
		return "Access denied"
	case ErrConflict:
		return "Conflicting data"
	default:
		return "Something went wrong, please try again"
	}
}

// UserMessage возвращает пользовательское сообщение для произвольной ошибки
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := As(err); ok {
		return appErr.GetUserMessage()
	}
	return New(ErrInternal, "").GetUserMessage()
}

// WriteJSON отправляет ошибку в формате конверта {success:false, message}
func WriteJSON(w http.ResponseWriter, err *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus())

	response := map[string]interface{}{
		"success": false,
		"data":    nil,
		"message": err.Message,
		"code":    err.Code,
	}
	if err.Details != "" {
		response["details"] = err.Details
	}
	if len(err.Fields) > 0 {
		response["fields"] = err.Fields
	}

	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		w.Write([]byte(`{"success":false,"message":"Internal server error"}`))
	}
}
