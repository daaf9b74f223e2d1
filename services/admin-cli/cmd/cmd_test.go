package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "AdminPanelPlatform/pkg/config"
	pkgerrors "AdminPanelPlatform/pkg/errors"
	"AdminPanelPlatform/services/admin-cli/internal/mockapi"
)

// envelope json вывод команды
type envelope struct {
	Success  bool            `json:"success"`
	Data     json.RawMessage `json:"data"`
	Metadata struct {
		Command string `json:"command"`
		Total   int    `json:"total"`
	} `json:"metadata"`
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// authState поля session.State, видимые в json выводе
type authState struct {
	IsAuthenticated bool `json:"isAuthenticated"`
	User            *struct {
		Email string `json:"email"`
	} `json:"user"`
}

func decodeState(t *testing.T, raw string) authState {
	t.Helper()
	var state authState
	require.NoError(t, json.Unmarshal(decode(t, raw).Data, &state))
	return state
}

func decode(t *testing.T, raw string) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env), raw)
	return env
}

func TestParseVariants(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		variants, err := parseVariants([]string{"500ml=40", " 1 l = 75.5 "})
		require.NoError(t, err)
		require.Len(t, variants, 2)
		assert.Equal(t, "500ml", variants[0].Name)
		assert.Equal(t, 40.0, variants[0].MRP)
		assert.Equal(t, "1 l", variants[1].Name)
		assert.Equal(t, 75.5, variants[1].MRP)
	})

	t.Run("missing price", func(t *testing.T) {
		_, err := parseVariants([]string{"500ml"})
		require.Error(t, err)
		appErr, ok := pkgerrors.As(err)
		require.True(t, ok)
		assert.Equal(t, pkgerrors.ErrValidation, appErr.Code)
		assert.Contains(t, appErr.Fields, "variant")
	})

	t.Run("invalid price", func(t *testing.T) {
		_, err := parseVariants([]string{"500ml=forty"})
		assert.Error(t, err)
	})
}

func TestParseItems(t *testing.T) {
	items, err := parseItems([]string{"Masala Chips=3", "Salted Peanuts"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Masala Chips", items[0].Name)
	require.NotNil(t, items[0].Boxes)
	assert.Equal(t, 3, *items[0].Boxes)
	assert.Equal(t, "Salted Peanuts", items[1].Name)
	assert.Nil(t, items[1].Boxes)

	_, err = parseItems([]string{"Masala Chips=-1"})
	assert.Error(t, err)
}

func TestSplitPair(t *testing.T) {
	name, value, ok := splitPair("a=b=3")
	assert.True(t, ok)
	assert.Equal(t, "a=b", name)
	assert.Equal(t, "3", value)

	_, _, ok = splitPair("plain")
	assert.False(t, ok)
}

func TestUserMessage(t *testing.T) {
	validation := pkgerrors.New(pkgerrors.ErrValidation, "Validation failed")
	validation.Details = "email: is required"
	assert.Equal(t, "email: is required", userMessage(validation))

	notFound := pkgerrors.New(pkgerrors.ErrNotFound, "Customer not found")
	assert.Equal(t, notFound.GetUserMessage(), userMessage(notFound))
}

func TestIsSilent(t *testing.T) {
	assert.True(t, IsSilent(&silentError{cause: assert.AnError}))
	assert.False(t, IsSilent(assert.AnError))
	assert.False(t, IsSilent(nil))
}

func TestMaskSecrets(t *testing.T) {
	cfg := pkgconfig.Default()
	cfg.Redis.Password = "secret"
	maskSecrets(cfg)

	assert.Equal(t, secretMask, cfg.Redis.Password)
	assert.Equal(t, secretMask, cfg.MockServer.AccessSecret)
	assert.Equal(t, secretMask, cfg.MockServer.RefreshSecret)

	rendered := configTable(cfg).String()
	assert.Contains(t, rendered, "redis.password")
	assert.Contains(t, rendered, secretMask)
	assert.NotContains(t, rendered, "mock-access-secret")
}

func TestServeMockStopsOnCancel(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serveMock(ctx, addr, http.NotFoundHandler())
	}()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("mock server did not stop")
	}
}

func TestCommandFlow(t *testing.T) {
	server, err := mockapi.NewServer(mockapi.Config{Seed: true}, nil)
	require.NoError(t, err)
	backend := httptest.NewServer(server)
	defer backend.Close()

	t.Setenv("ADMIN_PANEL_HOME", t.TempDir())
	t.Setenv("SESSION_BACKEND", "file")
	t.Setenv("RABBITMQ_ENABLED", "false")

	t.Run("status before login", func(t *testing.T) {
		stdout, _, err := execute(t, "auth", "status", "-s", backend.URL, "-o", "json")
		require.NoError(t, err)
		assert.True(t, decode(t, stdout).Success)
		state := decodeState(t, stdout)
		assert.False(t, state.IsAuthenticated)
		assert.Nil(t, state.User)
	})

	t.Run("list requires session", func(t *testing.T) {
		_, _, err := execute(t, "customers", "list", "-s", backend.URL, "-o", "json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not logged in")
		assert.False(t, IsSilent(err))
	})

	t.Run("login", func(t *testing.T) {
		stdout, stderr, err := execute(t, "auth", "login", "admin@example.com", "--password", "admin123", "-s", backend.URL, "-o", "json")
		require.NoError(t, err)
		assert.Contains(t, stderr, "✓ Login successful")

		state := decodeState(t, stdout)
		assert.True(t, state.IsAuthenticated)
		require.NotNil(t, state.User)
		assert.Equal(t, "admin@example.com", state.User.Email)
	})

	t.Run("session survives between commands", func(t *testing.T) {
		stdout, _, err := execute(t, "customers", "list", "--limit", "1", "-s", backend.URL, "-o", "json")
		require.NoError(t, err)
		env := decode(t, stdout)
		assert.Equal(t, 2, env.Metadata.Total)
		assert.Equal(t, "admin customers list", env.Metadata.Command)

		var customers []map[string]interface{}
		require.NoError(t, json.Unmarshal(env.Data, &customers))
		assert.Len(t, customers, 1)
	})

	t.Run("create publishes success", func(t *testing.T) {
		stdout, stderr, err := execute(t, "companies", "create", "Initech", "-s", backend.URL, "-o", "json")
		require.NoError(t, err)
		assert.Contains(t, stderr, "created successfully")

		var company struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		require.NoError(t, json.Unmarshal(decode(t, stdout).Data, &company))
		assert.NotEmpty(t, company.ID)
		assert.Equal(t, "Initech", company.Name)
	})

	t.Run("failed mutation is reported once", func(t *testing.T) {
		_, stderr, err := execute(t, "companies", "delete", "missing", "-s", backend.URL, "-o", "json")
		require.Error(t, err)
		assert.True(t, IsSilent(err))
		assert.Contains(t, stderr, "✗")
	})

	t.Run("logout", func(t *testing.T) {
		_, stderr, err := execute(t, "auth", "logout", "-s", backend.URL, "-o", "table")
		require.NoError(t, err)
		assert.Contains(t, stderr, "You have been logged out")

		stdout, _, err := execute(t, "auth", "status", "-s", backend.URL, "-o", "json")
		require.NoError(t, err)
		assert.False(t, decodeState(t, stdout).IsAuthenticated)
	})
}
