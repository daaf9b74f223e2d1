package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"AdminPanelPlatform/pkg/logger"
	"AdminPanelPlatform/services/admin-cli/internal/api"
	"AdminPanelPlatform/services/admin-cli/internal/store"
)

// State снимок состояния сессии
type State struct {
	AccessToken     string    `json:"-"`
	RefreshToken    string    `json:"-"`
	User            *api.User `json:"user,omitempty"`
	IsAuthenticated bool      `json:"isAuthenticated"`
	IsLoading       bool      `json:"isLoading"`
	Error           string    `json:"error,omitempty"`
	// ExpiresAt срок действия access токена, если его удалось прочитать из JWT
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// Credentials сохраненные данные сессии
type Credentials struct {
	AccessToken  string
	RefreshToken string
	User         *api.User
}

// Complete сообщает, что оба токена присутствуют
func (c Credentials) Complete() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// Partial сообщает, что присутствует только часть данных сессии
func (c Credentials) Partial() bool {
	return !c.Complete() && (c.AccessToken != "" || c.RefreshToken != "" || c.User != nil)
}

// Store хранит состояние сессии в памяти и в долговременном хранилище.
// Инвариант: токены либо оба заданы, либо оба пусты
type Store struct {
	storage store.Storage
	logger  logger.Logger

	mu          sync.RWMutex
	state       State
	subscribers map[int]chan State
	nextID      int
}

// NewStore создает хранилище сессии
func NewStore(storage store.Storage, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{
		storage:     storage,
		logger:      log,
		subscribers: make(map[int]chan State),
	}
}

// Snapshot возвращает копию текущего состояния
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

func (s *Store) copyLocked() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// AccessToken возвращает текущий access токен
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// RefreshToken возвращает текущий refresh токен
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.RefreshToken
}

// update применяет изменение и рассылает снимок подписчикам.
// Отправка неблокирующая, поэтому выполняется под блокировкой
func (s *Store) update(fn func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.state)
	snapshot := s.copyLocked()
	for _, ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
			// медленный подписчик пропускает промежуточные состояния
		}
	}
}

// SetLoading отмечает начало или окончание операции авторизации
func (s *Store) SetLoading(loading bool) {
	s.update(func(st *State) {
		st.IsLoading = loading
		if loading {
			st.Error = ""
		}
	})
}

// Fail сбрасывает сессию и сохраняет сообщение об ошибке
func (s *Store) Fail(message string) {
	s.update(func(st *State) {
		*st = State{Error: message}
	})
}

// Authenticate заполняет сессию после входа или восстановления
func (s *Store) Authenticate(accessToken, refreshToken string, user *api.User) {
	expiresAt := ExpiryOf(accessToken)
	s.update(func(st *State) {
		*st = State{
			AccessToken:     accessToken,
			RefreshToken:    refreshToken,
			User:            user,
			IsAuthenticated: true,
			ExpiresAt:       expiresAt,
		}
	})
}

// UpdateTokens заменяет access токен и, если сервер его ротировал, refresh токен
func (s *Store) UpdateTokens(accessToken, refreshToken string) {
	expiresAt := ExpiryOf(accessToken)
	s.update(func(st *State) {
		st.AccessToken = accessToken
		if refreshToken != "" {
			st.RefreshToken = refreshToken
		}
		st.ExpiresAt = expiresAt
	})
}

// SetUser обновляет пользователя сессии
func (s *Store) SetUser(user *api.User) {
	s.update(func(st *State) {
		st.User = user
	})
}

// Reset возвращает сессию в анонимное состояние
func (s *Store) Reset() {
	s.update(func(st *State) {
		*st = State{}
	})
}

// Subscribe возвращает канал снимков состояния и функцию отписки
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan State, 8)
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
}

// Persist сохраняет токены и пользователя в долговременное хранилище
func (s *Store) Persist(ctx context.Context) error {
	st := s.Snapshot()
	if st.AccessToken == "" || st.RefreshToken == "" {
		return fmt.Errorf("нельзя сохранить неполную сессию")
	}

	if err := s.storage.Set(ctx, store.KeyAccessToken, st.AccessToken); err != nil {
		return err
	}
	if err := s.storage.Set(ctx, store.KeyRefreshToken, st.RefreshToken); err != nil {
		return err
	}
	if st.User == nil {
		// Пользователь прошлой сессии не должен остаться рядом с новыми токенами
		return s.storage.Delete(ctx, store.KeyUser)
	}
	data, err := json.Marshal(st.User)
	if err != nil {
		return fmt.Errorf("ошибка сериализации пользователя: %w", err)
	}
	return s.storage.Set(ctx, store.KeyUser, string(data))
}

// LoadPersisted читает сохраненные данные сессии.
// Поврежденная запись пользователя игнорируется
func (s *Store) LoadPersisted(ctx context.Context) (Credentials, error) {
	var creds Credentials

	access, _, err := s.storage.Get(ctx, store.KeyAccessToken)
	if err != nil {
		return creds, err
	}
	refresh, _, err := s.storage.Get(ctx, store.KeyRefreshToken)
	if err != nil {
		return creds, err
	}
	creds.AccessToken = access
	creds.RefreshToken = refresh

	raw, ok, err := s.storage.Get(ctx, store.KeyUser)
	if err != nil {
		return creds, err
	}
	if ok && raw != "" {
		var user api.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			s.logger.Warn("поврежденная запись пользователя в хранилище", logger.Error(err))
		} else {
			creds.User = &user
		}
	}
	return creds, nil
}

// ClearPersisted удаляет все сохраненные данные сессии
func (s *Store) ClearPersisted(ctx context.Context) error {
	return s.storage.Delete(ctx, store.SessionKeys...)
}

// ExpiryOf читает claim exp из JWT без проверки подписи.
// Для непрозрачных токенов возвращает нулевое время
func ExpiryOf(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
