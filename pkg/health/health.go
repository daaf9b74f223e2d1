package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Статусы проверок
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthChecker интерфейс для проверки здоровья сервиса
type HealthChecker interface {
	Check(ctx context.Context) *HealthStatus
}

// HealthStatus представляет статус здоровья сервиса
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]Status `json:"services,omitempty"`
	Version   string            `json:"version,omitempty"`
}

// Healthy сообщает, что все проверки прошли
func (s *HealthStatus) Healthy() bool {
	return s.Status == StatusHealthy
}

// Status представляет статус компонента
type Status struct {
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
}

// CheckFunc проверка компонента; возвращает описание состояния или ошибку
type CheckFunc func(ctx context.Context) (string, error)

// Checker агрегирует именованные проверки компонентов
type Checker struct {
	version string
	now     func() time.Time

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// NewChecker создает Checker без проверок
func NewChecker(version string) *Checker {
	return &Checker{
		version: version,
		now:     time.Now,
		checks:  make(map[string]CheckFunc),
	}
}

// Register добавляет проверку компонента; повторная регистрация заменяет проверку
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Check выполняет все проверки. Сервис здоров, если здоровы все компоненты
func (c *Checker) Check(ctx context.Context) *HealthStatus {
	c.mu.RLock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()
	sort.Strings(names)

	status := &HealthStatus{
		Status:    StatusHealthy,
		Timestamp: c.now(),
		Version:   c.version,
	}
	if len(names) > 0 {
		status.Services = make(map[string]Status, len(names))
	}
	for _, name := range names {
		details, err := checks[name](ctx)
		if err != nil {
			status.Status = StatusUnhealthy
			status.Services[name] = Status{Status: StatusUnhealthy, Details: err.Error()}
			continue
		}
		status.Services[name] = Status{Status: StatusHealthy, Details: details}
	}
	return status
}

// Handler создает HTTP обработчик для health check эндпоинта.
// Нездоровый сервис отвечает 503
func Handler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := checker.Check(r.Context())

		code := http.StatusOK
		if !status.Healthy() {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, status)
	}
}

// ReadyHandler создает HTTP обработчик для ready check эндпоинта
// Возвращает 200 если сервис готов принимать трафик
func ReadyHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !checker.Check(r.Context()).Healthy() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// LiveHandler создает HTTP обработчик для live check эндпоинта
// Возвращает 200 если сервис жив
func LiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
