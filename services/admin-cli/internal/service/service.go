package service

import (
	"context"
	"fmt"

	"AdminPanelPlatform/pkg/errors"
	"AdminPanelPlatform/pkg/logger"
	"AdminPanelPlatform/pkg/validation"
	"AdminPanelPlatform/services/admin-cli/internal/api"
	"AdminPanelPlatform/services/admin-cli/internal/notify"
	"AdminPanelPlatform/services/admin-cli/internal/query"
)

// Deps зависимости сервисов ресурсов
type Deps struct {
	API       *api.Client
	Cache     *query.Cache
	Bus       *notify.Bus
	Log       logger.Logger
	Validator *validation.Validator
	// Options окна кеша для чтений; нулевые значения берутся из кеша
	Options query.Options
}

// Services сервисы всех ресурсов панели
type Services struct {
	Customers  *CustomerService
	Orders     *OrderService
	Products   *ProductService
	Companies  *CompanyService
	Categories *CategoryService
	Users      *UserService
}

// New создает сервисы ресурсов
func New(d Deps) *Services {
	if d.Log == nil {
		d.Log = logger.NewNop()
	}
	if d.Validator == nil {
		d.Validator = validation.NewValidator()
	}
	if d.Bus == nil {
		d.Bus = notify.NewBus(d.Log)
	}
	deps := &d

	return &Services{
		Customers:  &CustomerService{deps: deps},
		Orders:     &OrderService{deps: deps},
		Products:   &ProductService{deps: deps},
		Companies:  &CompanyService{deps: deps},
		Categories: &CategoryService{deps: deps},
		Users:      &UserService{deps: deps},
	}
}

// action вид мутации для сообщений
type action string

const (
	actionCreate  action = "created"
	actionUpdate  action = "updated"
	actionStatus  action = "status updated"
	actionDelete  action = "deleted"
	actionRestore action = "restored"
)

func (a action) verb() string {
	switch a {
	case actionCreate:
		return "create"
	case actionUpdate:
		return "update"
	case actionStatus:
		return "update status of"
	case actionDelete:
		return "delete"
	case actionRestore:
		return "restore"
	default:
		return string(a)
	}
}

// failureMessage сообщение сервера для ApiError, иначе общее сообщение
func failureMessage(err error, noun string, a action) string {
	if appErr, ok := errors.As(err); ok && appErr.Code == errors.ErrAPI && appErr.Message != "" {
		return appErr.Message
	}
	return fmt.Sprintf("Failed to %s %s", a.verb(), noun)
}

// mutate выполняет мутацию ресурса: при успехе инвалидирует списки ресурса,
// записывает сущность в кеш и публикует уведомление; ApiError и NetworkError
// публикуются как уведомления об ошибке и возвращаются вызывающему.
// AuthError обрабатывает Auth Flow, поэтому отдельного уведомления нет
func mutate[T any](ctx context.Context, d *Deps, resource query.Resource, noun string, a action, id string,
	call func(ctx context.Context) (*T, error), idOf func(*T) string) (*T, error) {

	result, err := call(ctx)
	if err != nil {
		d.Log.Warn("ошибка мутации",
			logger.CtxField(ctx),
			logger.String("resource", string(resource)),
			logger.String("action", string(a)),
			logger.String("id", id),
			logger.String("code", string(errors.CodeOf(err))),
			logger.Error(err))
		if !errors.IsAuth(err) {
			d.Bus.Error(failureMessage(err, noun, a))
		}
		return nil, err
	}

	if d.Cache != nil {
		d.Cache.Invalidate(resource)
		switch {
		case result != nil:
			entity := *result
			d.Cache.SetEntity(resource, idOf(&entity), &entity)
		case id != "":
			d.Cache.Remove(query.DetailKey(resource, id))
		}
	}

	d.Log.Info("мутация выполнена",
		logger.CtxField(ctx),
		logger.String("resource", string(resource)),
		logger.String("action", string(a)),
		logger.String("id", id))
	d.Bus.Success(fmt.Sprintf("%s %s successfully", capitalize(noun), a))
	return result, nil
}

// remove мягкое удаление без тела ответа
func remove(ctx context.Context, d *Deps, resource query.Resource, noun, id string, call func(ctx context.Context, id string) error) error {
	_, err := mutate(ctx, d, resource, noun, actionDelete, id, func(ctx context.Context) (*struct{}, error) {
		return nil, call(ctx, id)
	}, func(*struct{}) string { return id })
	return err
}

// read выполняет чтение через кеш; без кеша запрос идет напрямую
func read[T any](ctx context.Context, d *Deps, key query.Key, enabled bool, fetcher func(ctx context.Context) (T, error)) query.Result[T] {
	opts := d.Options
	if !enabled {
		opts.Enabled = query.Enabled(false)
	}
	if d.Cache == nil {
		if !enabled {
			return query.Result[T]{Status: query.StatusIdle}
		}
		data, err := fetcher(ctx)
		if err != nil {
			return query.Result[T]{Err: err, Status: query.StatusError}
		}
		return query.Result[T]{Data: data, HasData: true, Status: query.StatusSuccess}
	}
	return query.Fetch(ctx, d.Cache, key, opts, fetcher)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
