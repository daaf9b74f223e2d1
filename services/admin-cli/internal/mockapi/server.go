package mockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"AdminPanelPlatform/pkg/errors"
	"AdminPanelPlatform/pkg/health"
	"AdminPanelPlatform/pkg/logger"
	"AdminPanelPlatform/pkg/metrics"
	"AdminPanelPlatform/pkg/validation"
	"AdminPanelPlatform/services/admin-cli/internal/api"
)

// Учетные данные пользователя по умолчанию
const (
	DefaultEmail    = "admin@example.com"
	DefaultPassword = "admin123"
)

// Config настройки mock сервера
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	// RotateRefreshTokens выдавать новый refresh токен при обновлении
	RotateRefreshTokens bool
	// Seed заполнить демонстрационными данными
	Seed bool
	// BcryptCost стоимость хеширования паролей; 0 означает bcrypt.MinCost
	BcryptCost int
	Metrics    *metrics.Metrics
	// Version версия, которую отдает /health
	Version string
}

// userRecord пользователь с хешем пароля
type userRecord struct {
	api.User
	PasswordHash string
}

// failure запланированный ответ с ошибкой
type failure struct {
	status  int
	message string
}

// Server in-memory реализация REST API админ-панели
type Server struct {
	cfg       Config
	logger    logger.Logger
	tokens    *TokenManager
	validator *validation.Validator
	router    *mux.Router
	health    *health.Checker

	customers  *collection[api.Customer]
	orders     *collection[api.Order]
	products   *collection[api.Product]
	companies  *collection[api.Company]
	categories *collection[api.Category]

	mu       sync.Mutex
	users    map[string]*userRecord
	// sessions активные refresh токены по jti
	sessions map[string]bool
	requests map[string]int
	failures map[string][]failure
	now      func() time.Time
}

// NewServer создает mock сервер
func NewServer(cfg Config, log logger.Logger) (*Server, error) {
	if cfg.AccessSecret == "" {
		cfg.AccessSecret = "mock-access-secret"
	}
	if cfg.RefreshSecret == "" {
		cfg.RefreshSecret = "mock-refresh-secret"
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.BcryptCost <= 0 {
		cfg.BcryptCost = bcrypt.MinCost
	}
	if log == nil {
		log = logger.NewNop()
	}

	s := &Server{
		cfg:        cfg,
		logger:     log,
		tokens:     NewTokenManager(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL),
		validator:  validation.NewValidator(),
		customers:  newCollection(func(c *api.Customer, id string) { c.ID = id }),
		orders:     newCollection(func(o *api.Order, id string) { o.ID = id }),
		products:   newCollection(func(p *api.Product, id string) { p.ID = id }),
		companies:  newCollection(func(c *api.Company, id string) { c.ID = id }),
		categories: newCollection(func(c *api.Category, id string) { c.ID = id }),
		users:      make(map[string]*userRecord),
		sessions:   make(map[string]bool),
		requests:   make(map[string]int),
		failures:   make(map[string][]failure),
		now:        time.Now,
	}

	if _, err := s.AddUser(DefaultEmail, DefaultPassword, "Admin", "admin"); err != nil {
		return nil, err
	}
	if cfg.Seed {
		s.seed()
	}

	s.health = health.NewChecker(cfg.Version)
	s.health.Register("users", s.checkUsers)
	s.health.Register("store", s.checkStore)

	s.router = s.routes()
	return s, nil
}

// AddUser регистрирует пользователя панели
func (s *Server) AddUser(email, password, name, role string) (*api.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user := &userRecord{
		User: api.User{
			ID:    fmt.Sprintf("user-%d", len(s.users)+1),
			Email: strings.ToLower(email),
			Name:  name,
			Role:  role,
		},
		PasswordHash: string(hash),
	}
	s.users[user.Email] = user
	u := user.User
	return &u, nil
}

// ServeHTTP реализует интерфейс http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes настраивает маршруты
func (s *Server) routes() *mux.Router {
	root := mux.NewRouter()
	if s.cfg.Metrics != nil {
		root.Handle("/metrics", s.cfg.Metrics.GetHandler()).Methods(http.MethodGet)
	}
	root.HandleFunc("/health", health.Handler(s.health)).Methods(http.MethodGet)
	root.HandleFunc("/ready", health.ReadyHandler(s.health)).Methods(http.MethodGet)
	root.HandleFunc("/live", health.LiveHandler()).Methods(http.MethodGet)

	r := root.PathPrefix(api.BasePath).Subrouter()
	r.Use(s.countRequests, s.injectFailures)

	// Публичные роуты
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", s.handleRefresh).Methods(http.MethodPost)

	// Защищенные роуты
	p := r.NewRoute().Subrouter()
	p.Use(s.requireAuth)
	p.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)
	p.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	p.HandleFunc("/auth/users", s.handleUsers).Methods(http.MethodGet)

	s.customerRoutes(p.PathPrefix("/" + api.ResourceCustomers).Subrouter())
	s.orderRoutes(p.PathPrefix("/" + api.ResourceOrders).Subrouter())
	s.productRoutes(p.PathPrefix("/" + api.ResourceProducts).Subrouter())
	namedRoutes(s, p.PathPrefix("/"+api.ResourceCompanies).Subrouter(), s.companies, "Company",
		func(c *api.Company, name string) { c.Name = name },
		func(name string) api.Company { return api.Company{Name: name} })
	namedRoutes(s, p.PathPrefix("/"+api.ResourceCategories).Subrouter(), s.categories, "Category",
		func(c *api.Category, name string) { c.Name = name },
		func(name string) api.Category { return api.Category{Name: name} })

	root.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errors.New(errors.ErrNotFound, "Route not found"))
	})
	root.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errors.New(errors.ErrValidation, "Method not allowed").WithStatus(http.StatusMethodNotAllowed))
	})

	if s.cfg.Metrics != nil {
		root.Use(s.cfg.Metrics.Middleware)
	}
	return root
}

// checkUsers сервер без пользователей не может выдать токены
func (s *Server) checkUsers(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.users) == 0 {
		return "", fmt.Errorf("no users registered")
	}
	return fmt.Sprintf("%d users, %d sessions", len(s.users), len(s.sessions)), nil
}

func (s *Server) checkStore(ctx context.Context) (string, error) {
	return fmt.Sprintf("%d customers, %d orders, %d products, %d companies, %d categories",
		len(s.customers.active()), len(s.orders.active()), len(s.products.active()),
		len(s.companies.active()), len(s.categories.active())), nil
}

// requestKey ключ счетчика: метод и путь без базового префикса
func requestKey(method, path string) string {
	return method + " " + strings.TrimPrefix(path, api.BasePath)
}

// Requests число запросов к пути, например Requests("GET", "/customers")
func (s *Server) Requests(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[requestKey(method, path)]
}

// TotalRequests общее число запросов к API
func (s *Server) TotalRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.requests {
		total += n
	}
	return total
}

// FailNext планирует ответ с ошибкой для следующего запроса к пути.
// Несколько вызовов образуют очередь
func (s *Server) FailNext(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := requestKey(method, path)
	s.failures[key] = append(s.failures[key], failure{status: status, message: message})
}

// RevokeAllSessions отзывает все выданные refresh токены
func (s *Server) RevokeAllSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.sessions)
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[requestKey(r.Method, r.URL.Path)]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := requestKey(r.Method, r.URL.Path)

		s.mu.Lock()
		queue := s.failures[key]
		var f *failure
		if len(queue) > 0 {
			f = &queue[0]
			s.failures[key] = queue[1:]
		}
		s.mu.Unlock()

		if f != nil {
			s.logger.Debug("внедренная ошибка",
				logger.String("request", key),
				logger.Int("status", f.status))
			writeError(w, errors.New(errors.FromHTTPStatus(f.status), f.message).WithStatus(f.status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type claimsKey struct{}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, errors.New(errors.ErrUnauthorized, "Authorization required"))
			return
		}

		claims, err := s.tokens.ValidateAccessToken(token)
		if err != nil {
			s.logger.Debug("недействительный access токен", logger.Error(err))
			writeError(w, errors.New(errors.ErrUnauthorized, "Invalid or expired token"))
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFrom(r *http.Request) *TokenClaims {
	claims, _ := r.Context().Value(claimsKey{}).(*TokenClaims)
	return claims
}

// writeData отправляет успешный конверт
func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(api.Envelope[any]{Success: true, Data: data})
}

// writeError отправляет конверт ошибки
func writeError(w http.ResponseWriter, err *errors.Error) {
	errors.WriteJSON(w, err)
}

func decodeBody(r *http.Request, v any) *errors.Error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New(errors.ErrValidation, "Invalid request body")
	}
	return nil
}

// validationFailure переводит ошибку валидации в ответ 400
func validationFailure(err error) *errors.Error {
	if appErr, ok := errors.As(err); ok {
		return appErr.WithStatus(http.StatusBadRequest)
	}
	return errors.New(errors.ErrValidation, err.Error())
}
