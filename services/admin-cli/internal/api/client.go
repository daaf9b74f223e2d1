package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"AdminPanelPlatform/pkg/errors"
	"AdminPanelPlatform/pkg/logger"
	"AdminPanelPlatform/pkg/metrics"
)

// BasePath версия REST API
const BasePath = "/api/v1"

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "AdminPanel-CLI/1.0"
	maxErrorBody     = 64 << 10
)

// TokenSource источник bearer токена и обновление сессии.
// Реализуется Auth Flow
type TokenSource interface {
	AccessToken() string
	Refresh(ctx context.Context) error
}

// ClientConfig настройки HTTP клиента
type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// HTTPClient опционально; по умолчанию создается клиент с Timeout
	HTTPClient *http.Client
}

// Client клиент API Gateway
type Client struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	http      *http.Client
	logger    logger.Logger
	metrics   *metrics.Metrics

	mu     sync.RWMutex
	tokens TokenSource
}

// NewClient создает клиент API Gateway
func NewClient(cfg ClientConfig, tokens TokenSource, log logger.Logger, m *metrics.Metrics) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		http:      httpClient,
		logger:    log,
		metrics:   m,
		tokens:    tokens,
	}
}

// SetTokenSource подключает источник токенов после создания клиента.
// Auth Flow создается поверх клиента, поэтому связывание двухшаговое
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = tokens
}

func (c *Client) tokenSource() TokenSource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

// Timeout возвращает таймаут запроса
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// skipsBearer эндпоинты, которым не нужен bearer токен
func skipsBearer(endpoint string) bool {
	return endpoint == "/auth/login" || endpoint == "/auth/refresh"
}

// skipsRefresh эндпоинты авторизации не участвуют в повторе после 401
func skipsRefresh(endpoint string) bool {
	return strings.HasPrefix(endpoint, "/auth/")
}

// Do выполняет запрос к endpoint (без префикса /api/v1) и декодирует поле data в out.
// При 401 на не-auth эндпоинте выполняется одно обновление токена и один повтор
func (c *Client) Do(ctx context.Context, method, endpoint string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, errors.ErrInternal, "failed to encode request body")
		}
	}

	return c.do(ctx, method, endpoint, query, payload, out, false)
}

func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, payload []byte, out any, retry bool) error {
	status, raw, err := c.send(ctx, method, endpoint, query, payload)
	if err != nil {
		return err
	}

	tokens := c.tokenSource()
	if status == http.StatusUnauthorized && !retry && !skipsRefresh(endpoint) && tokens != nil {
		c.logger.Info("получен 401, обновление токена",
			logger.CtxField(ctx),
			logger.String("method", method),
			logger.String("endpoint", endpoint))

		if refreshErr := tokens.Refresh(ctx); refreshErr != nil {
			if errors.IsAuth(refreshErr) {
				return refreshErr
			}
			return errors.Wrap(refreshErr, errors.ErrAuth, "session refresh failed")
		}
		return c.do(ctx, method, endpoint, query, payload, out, true)
	}

	return decodeResponse(status, raw, out)
}

// send выполняет один HTTP запрос и возвращает статус и тело ответа
func (c *Client) send(ctx context.Context, method, endpoint string, query url.Values, payload []byte) (int, []byte, error) {
	target := c.baseURL + BasePath + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	// Истечение таймаута приводит к NetworkError
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := c.startSpan(ctx, method, endpoint)
	defer span.End()
	start := time.Now()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, errors.Wrap(err, errors.ErrInternal, "failed to build request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if tokens := c.tokenSource(); tokens != nil && !skipsBearer(endpoint) {
		if token := tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(span, method, endpoint, 0, "network", time.Since(start))
		c.logger.Warn("запрос к API не получил ответа",
			logger.CtxField(ctx),
			logger.String("method", method),
			logger.String("endpoint", endpoint),
			logger.Error(err))
		return 0, nil, errors.Wrap(err, errors.ErrNetwork, "network request failed").
			WithDetails(fmt.Sprintf("%s %s", method, endpoint))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(span, method, endpoint, resp.StatusCode, "network", time.Since(start))
		return 0, nil, errors.Wrap(err, errors.ErrNetwork, "failed to read response body")
	}

	errorType := ""
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errorType = "api"
	}
	c.observe(span, method, endpoint, resp.StatusCode, errorType, time.Since(start))

	c.logger.Debug("запрос к API выполнен",
		logger.CtxField(ctx),
		logger.String("method", method),
		logger.String("endpoint", endpoint),
		logger.Int("status", resp.StatusCode),
		logger.Duration("duration", time.Since(start)))

	return resp.StatusCode, raw, nil
}

func (c *Client) startSpan(ctx context.Context, method, endpoint string) (context.Context, trace.Span) {
	if c.metrics == nil {
		return ctx, noop.Span{}
	}
	return c.metrics.StartRequest(ctx, method, endpoint)
}

func (c *Client) observe(span trace.Span, method, endpoint string, status int, errorType string, d time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveRequest(span, method, endpoint, status, errorType, d)
}

// decodeResponse разбирает конверт {success, data, message}
func decodeResponse(status int, raw []byte, out any) error {
	var env rawEnvelope
	envErr := json.Unmarshal(raw, &env)

	if status < 200 || status >= 300 {
		message := env.Message
		if envErr != nil || message == "" {
			message = fallbackMessage(status, raw)
		}
		return errors.New(errors.ErrAPI, message).
			WithStatus(status).
			WithPayload(truncate(raw))
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if envErr != nil {
		return errors.Wrap(envErr, errors.ErrAPI, "malformed response envelope").
			WithStatus(status).
			WithPayload(truncate(raw))
	}
	if env.Success == nil || !*env.Success {
		message := env.Message
		if message == "" {
			message = "request was not successful"
		}
		return errors.New(errors.ErrAPI, message).
			WithStatus(status).
			WithPayload(truncate(raw))
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return errors.Wrap(err, errors.ErrAPI, "failed to decode response data").WithStatus(status)
	}
	return nil
}

// fallbackMessage извлекает сообщение из тела, не являющегося конвертом
func fallbackMessage(status int, raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("unexpected status %d", status)
}

func truncate(raw []byte) []byte {
	if len(raw) > maxErrorBody {
		return raw[:maxErrorBody]
	}
	return raw
}
