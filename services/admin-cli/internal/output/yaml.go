package output

import (
	"time"
)

// YAMLOutput представляет YAML вывод с метаданными.
// Поля сериализуются по json тегам, см. YAMLFormatter
type YAMLOutput struct {
	Success   bool        `json:"success" yaml:"success"`
	Data      interface{} `json:"data,omitempty" yaml:"data,omitempty"`
	Error     string      `json:"error,omitempty" yaml:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp" yaml:"timestamp"`
	Metadata  *Metadata   `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// NewYAMLOutput создает новый YAML вывод
func NewYAMLOutput(success bool, data interface{}, err error) *YAMLOutput {
	return &YAMLOutput{
		Success:   success,
		Data:      data,
		Error:     getErrorString(err),
		Timestamp: time.Now(),
	}
}
