package output

import (
	"time"
)

// JSONOutput представляет JSON вывод с метаданными
type JSONOutput struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Metadata  *Metadata   `json:"metadata,omitempty"`
}

// Metadata содержит метаданные вывода
type Metadata struct {
	Command string                 `json:"command"`
	Format  string                 `json:"format"`
	Context map[string]interface{} `json:"context,omitempty"`
	Total   int                    `json:"total,omitempty"`
	Page    int                    `json:"page,omitempty"`
	Limit   int                    `json:"limit,omitempty"`
}

// PageMetadata метаданные страницы списка
func PageMetadata(total, page, limit int) *Metadata {
	return &Metadata{Total: total, Page: page, Limit: limit}
}

// NewJSONOutput создает новый JSON вывод
func NewJSONOutput(success bool, data interface{}, err error) *JSONOutput {
	return &JSONOutput{
		Success:   success,
		Data:      data,
		Error:     getErrorString(err),
		Timestamp: time.Now(),
	}
}

// getErrorString преобразует ошибку в строку
func getErrorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
