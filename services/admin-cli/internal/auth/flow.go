package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"AdminPanelPlatform/pkg/errors"
	"AdminPanelPlatform/pkg/logger"
	"AdminPanelPlatform/pkg/validation"
	"AdminPanelPlatform/services/admin-cli/internal/api"
	climetrics "AdminPanelPlatform/services/admin-cli/internal/metrics"
	"AdminPanelPlatform/services/admin-cli/internal/notify"
	"AdminPanelPlatform/services/admin-cli/internal/session"
)

// Phase фаза авторизации
type Phase string

const (
	PhaseAnonymous     Phase = "anonymous"
	PhaseChecking      Phase = "checking"
	PhaseAuthenticated Phase = "authenticated"
)

// Маршруты навигации после входа и выхода
const (
	RouteDashboard = "/dashboard"
	RouteLogin     = "/login"
)

// Сообщения уведомлений
const (
	MessageLoginSuccess   = "Login successful"
	MessageLoggedOut      = "You have been logged out"
	MessageSessionExpired = "Your session has expired, please log in again"
)

// Navigator переключает текущий экран
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc адаптер функции к Navigator
type NavigatorFunc func(route string)

// Navigate вызывает функцию
func (f NavigatorFunc) Navigate(route string) { f(route) }

// AuthAPI эндпоинты авторизации, используемые Flow
type AuthAPI interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*api.RefreshResponse, error)
	Me(ctx context.Context) (*api.User, error)
	Logout(ctx context.Context, refreshToken string) error
}

// LoginInput учетные данные для входа
type LoginInput struct {
	Email    string
	Password string
}

// Flow управляет входом, выходом, восстановлением и обновлением сессии.
// Реализует api.TokenSource
type Flow struct {
	api       AuthAPI
	session   *session.Store
	bus       *notify.Bus
	navigator Navigator
	logger    logger.Logger
	metrics   *climetrics.CLIMetrics
	validator *validation.Validator

	mu    sync.RWMutex
	phase Phase

	checkOnce sync.Once
	checkErr  error

	refreshGroup singleflight.Group
}

// NewFlow создает Flow. navigator и metrics могут быть nil
func NewFlow(authAPI AuthAPI, sess *session.Store, bus *notify.Bus, navigator Navigator, log logger.Logger, m *climetrics.CLIMetrics) *Flow {
	if log == nil {
		log = logger.NewNop()
	}
	if navigator == nil {
		navigator = NavigatorFunc(func(string) {})
	}
	if bus == nil {
		bus = notify.NewBus(log)
	}
	return &Flow{
		api:       authAPI,
		session:   sess,
		bus:       bus,
		navigator: navigator,
		logger:    log,
		metrics:   m,
		validator: validation.NewValidator(),
		phase:     PhaseAnonymous,
	}
}

// Phase возвращает текущую фазу
func (f *Flow) Phase() Phase {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.phase
}

func (f *Flow) setPhase(p Phase) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phase = p
}

// Session возвращает хранилище сессии
func (f *Flow) Session() *session.Store {
	return f.session
}

// AccessToken возвращает текущий access токен
func (f *Flow) AccessToken() string {
	return f.session.AccessToken()
}

// CheckSession восстанавливает сессию из хранилища. Выполняется один раз за время
// жизни Flow; параллельные вызовы ждут первый и получают его результат.
// Ошибка возвращается только при сбое хранилища; неудачное восстановление
// переводит сессию в анонимное состояние без уведомлений
func (f *Flow) CheckSession(ctx context.Context) error {
	f.checkOnce.Do(func() {
		start := time.Now()
		f.checkErr = f.checkSession(ctx)
		f.metrics.AuthEvent(ctx, "check_session", f.Phase() == PhaseAuthenticated, time.Since(start))
	})
	return f.checkErr
}

func (f *Flow) checkSession(ctx context.Context) error {
	f.setPhase(PhaseChecking)
	f.session.SetLoading(true)

	creds, err := f.session.LoadPersisted(ctx)
	if err != nil {
		f.logger.Error("ошибка чтения сохраненной сессии", logger.CtxField(ctx), logger.Error(err))
		f.toAnonymous(ctx)
		return errors.Wrap(err, errors.ErrInternal, "failed to read persisted session")
	}

	if !creds.Complete() {
		if creds.Partial() {
			f.logger.Info("неполная сохраненная сессия, очистка", logger.CtxField(ctx))
		}
		f.toAnonymous(ctx)
		return nil
	}

	resp, err := f.api.Refresh(ctx, creds.RefreshToken)
	if err != nil {
		f.logger.Info("не удалось восстановить сессию",
			logger.CtxField(ctx),
			logger.String("code", string(errors.CodeOf(err))),
			logger.Error(err))
		f.toAnonymous(ctx)
		return nil
	}

	refreshToken := creds.RefreshToken
	if resp.RefreshToken != "" {
		refreshToken = resp.RefreshToken
	}
	f.session.Authenticate(resp.AccessToken, refreshToken, creds.User)

	if creds.User == nil {
		user, err := f.api.Me(ctx)
		if err != nil {
			f.logger.Warn("не удалось получить текущего пользователя", logger.CtxField(ctx), logger.Error(err))
		} else {
			f.session.SetUser(user)
		}
	}

	if err := f.session.Persist(ctx); err != nil {
		f.logger.Warn("ошибка сохранения обновленной сессии", logger.CtxField(ctx), logger.Error(err))
	}

	f.setPhase(PhaseAuthenticated)
	f.logger.Info("сессия восстановлена", logger.CtxField(ctx))
	return nil
}

// toAnonymous очищает сохраненные данные и сбрасывает сессию
func (f *Flow) toAnonymous(ctx context.Context) {
	if err := f.session.ClearPersisted(ctx); err != nil {
		f.logger.Warn("ошибка очистки сохраненной сессии", logger.CtxField(ctx), logger.Error(err))
	}
	f.session.Reset()
	f.setPhase(PhaseAnonymous)
}

// Login выполняет вход. ValidationError возвращается без обращения к серверу
// и без уведомления; ошибка сервера попадает в сессию и в уведомления
func (f *Flow) Login(ctx context.Context, input LoginInput) error {
	if err := f.validator.ValidateRequiredFields(map[string]string{
		"email":    input.Email,
		"password": input.Password,
	}, []string{"email", "password"}); err != nil {
		return err
	}

	// Явный вход считается инициализацией сессии
	f.checkOnce.Do(func() {})

	start := time.Now()
	f.session.SetLoading(true)

	resp, err := f.api.Login(ctx, api.LoginRequest{Email: input.Email, Password: input.Password})
	if err != nil {
		message := errors.UserMessage(err)
		if clearErr := f.session.ClearPersisted(ctx); clearErr != nil {
			f.logger.Warn("ошибка очистки сохраненной сессии", logger.CtxField(ctx), logger.Error(clearErr))
		}
		f.session.Fail(message)
		f.setPhase(PhaseAnonymous)
		f.bus.Error(message)
		f.metrics.AuthEvent(ctx, "login", false, time.Since(start))
		f.logger.Warn("ошибка входа",
			logger.CtxField(ctx),
			logger.String("email", input.Email),
			logger.Error(err))
		return err
	}

	user := resp.User
	f.session.Authenticate(resp.AccessToken, resp.RefreshToken, &user)
	if err := f.session.Persist(ctx); err != nil {
		f.logger.Error("ошибка сохранения сессии", logger.CtxField(ctx), logger.Error(err))
	}

	f.setPhase(PhaseAuthenticated)
	f.metrics.AuthEvent(ctx, "login", true, time.Since(start))
	f.logger.Info("пользователь вошел",
		logger.CtxField(ctx),
		logger.String("user_id", user.ID),
		logger.String("email", user.Email))

	f.bus.Success(MessageLoginSuccess)
	f.navigator.Navigate(RouteDashboard)
	return nil
}

// Logout завершает сессию. Ошибка серверного выхода только логируется
func (f *Flow) Logout(ctx context.Context) error {
	start := time.Now()

	if refreshToken := f.session.RefreshToken(); refreshToken != "" {
		if err := f.api.Logout(ctx, refreshToken); err != nil {
			f.logger.Warn("ошибка выхода на сервере", logger.CtxField(ctx), logger.Error(err))
		}
	}

	f.toAnonymous(ctx)
	f.metrics.AuthEvent(ctx, "logout", true, time.Since(start))
	f.logger.Info("пользователь вышел", logger.CtxField(ctx))

	f.bus.Info(MessageLoggedOut)
	f.navigator.Navigate(RouteLogin)
	return nil
}

// Refresh обменивает refresh токен на новый access токен. Параллельные вызовы
// объединяются в один запрос. Неудача во время активной сессии завершает ее
// с уведомлением; возвращается AuthError
func (f *Flow) Refresh(ctx context.Context) error {
	_, err, _ := f.refreshGroup.Do("refresh", func() (interface{}, error) {
		return nil, f.refresh(ctx)
	})
	return err
}

func (f *Flow) refresh(ctx context.Context) error {
	start := time.Now()
	refreshToken := f.session.RefreshToken()
	if refreshToken == "" {
		return errors.New(errors.ErrAuth, "no refresh token")
	}

	resp, err := f.api.Refresh(ctx, refreshToken)
	if err != nil {
		wasActive := f.Phase() == PhaseAuthenticated
		f.metrics.AuthEvent(ctx, "refresh", false, time.Since(start))
		f.logger.Warn("не удалось обновить токен", logger.CtxField(ctx), logger.Error(err))

		f.toAnonymous(ctx)
		if wasActive {
			f.bus.Error(MessageSessionExpired)
			f.navigator.Navigate(RouteLogin)
		}
		return errors.Wrap(err, errors.ErrAuth, MessageSessionExpired)
	}

	f.session.UpdateTokens(resp.AccessToken, resp.RefreshToken)
	if err := f.session.Persist(ctx); err != nil {
		f.logger.Warn("ошибка сохранения обновленного токена", logger.CtxField(ctx), logger.Error(err))
	}
	f.metrics.AuthEvent(ctx, "refresh", true, time.Since(start))
	f.logger.Debug("токен обновлен", logger.CtxField(ctx))
	return nil
}
