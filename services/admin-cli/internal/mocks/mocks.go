// Package mocks содержит testify моки внешних зависимостей клиента
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"AdminPanelPlatform/pkg/rabbitmq"
)

// MockStorage имитирует store.Storage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockStorage) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockStorage) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

// MockPublisher имитирует rabbitmq.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, body []byte, options ...rabbitmq.PublishOption) error {
	args := m.Called(ctx, body, options)
	return args.Error(0)
}

// MockNavigator имитирует auth.Navigator
type MockNavigator struct {
	mock.Mock
}

func (m *MockNavigator) Navigate(route string) {
	m.Called(route)
}
