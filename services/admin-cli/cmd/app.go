package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	pkgconfig "AdminPanelPlatform/pkg/config"
	pkgerrors "AdminPanelPlatform/pkg/errors"
	"AdminPanelPlatform/pkg/logger"
	"AdminPanelPlatform/pkg/rabbitmq"
	pkgredis "AdminPanelPlatform/pkg/redis"
	"AdminPanelPlatform/pkg/validation"
	"AdminPanelPlatform/services/admin-cli/internal/api"
	"AdminPanelPlatform/services/admin-cli/internal/auth"
	"AdminPanelPlatform/services/admin-cli/internal/locations"
	climetrics "AdminPanelPlatform/services/admin-cli/internal/metrics"
	"AdminPanelPlatform/services/admin-cli/internal/notify"
	"AdminPanelPlatform/services/admin-cli/internal/output"
	"AdminPanelPlatform/services/admin-cli/internal/query"
	"AdminPanelPlatform/services/admin-cli/internal/service"
	"AdminPanelPlatform/services/admin-cli/internal/session"
	"AdminPanelPlatform/services/admin-cli/internal/store"
)

// notificationSource поле source событий уведомлений в брокере
const notificationSource = "admin-cli"

// app компоненты клиента, собранные для одной команды
type app struct {
	cfg       *pkgconfig.Config
	log       logger.Logger
	metrics   *climetrics.CLIMetrics
	session   *session.Store
	client    *api.Client
	bus       *notify.Bus
	flow      *auth.Flow
	cache     *query.Cache
	services  *service.Services
	locations *locations.Cache
	printer   *output.Printer

	// route последний экран, на который перевел Auth Flow
	route   string
	closers []func()
}

// newApp собирает клиент: хранилище, сессия, API клиент, шина уведомлений,
// Auth Flow, кеш запросов и сервисы ресурсов
func newApp(ctx context.Context, out, notes io.Writer) (*app, error) {
	if appCfg == nil {
		if err := initConfig(); err != nil {
			return nil, err
		}
	}
	cfg := appCfg
	a := &app{
		cfg:       cfg,
		log:       appLogger,
		metrics:   climetrics.NewCLIMetrics(appLogger),
		locations: locations.NewCache(),
		printer:   output.NewPrinter(outFormat, out, notes),
	}

	storage, err := a.openStorage(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	a.session = session.NewStore(storage, a.log)

	a.client = api.NewClient(api.ClientConfig{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.APITimeout(),
		UserAgent: "admin-cli/" + Version,
	}, nil, a.log, a.metrics.Metrics)

	busOpts := []notify.Option{notify.WithDefaultDuration(cfg.NotificationDuration())}
	if viper.GetBool("debug") {
		busOpts = append(busOpts, notify.WithSink(notify.NewLogSink(a.log)))
	}
	if sink := a.openAMQPSink(ctx); sink != nil {
		busOpts = append(busOpts, notify.WithSink(sink))
	}
	a.bus = notify.NewBus(a.log, busOpts...)
	a.closers = append(a.closers, a.bus.Close)

	a.flow = auth.NewFlow(a.client, a.session, a.bus, auth.NavigatorFunc(a.navigate), a.log, a.metrics)
	a.client.SetTokenSource(a.flow)

	a.cache = query.NewCache(query.Config{
		StaleTime:     cfg.CacheStaleTime(),
		GCTime:        cfg.CacheGCTime(),
		SweepInterval: cfg.CacheSweepInterval(),
		FetchTimeout:  cfg.APITimeout(),
		Logger:        a.log,
		Metrics:       a.metrics.Metrics,
	})
	cacheCtx, stopCache := context.WithCancel(ctx)
	a.cache.Start(cacheCtx)
	a.closers = append(a.closers, func() {
		stopCache()
		a.cache.Wait()
	})

	a.services = service.New(service.Deps{
		API:       a.client,
		Cache:     a.cache,
		Bus:       a.bus,
		Log:       a.log,
		Validator: validation.NewValidator(),
	})

	return a, nil
}

// openStorage открывает хранилище токенов согласно session.backend
func (a *app) openStorage(ctx context.Context) (store.Storage, error) {
	switch a.cfg.Session.Backend {
	case "memory":
		return store.NewMemoryStorage(), nil
	case "redis":
		rc := pkgredis.NewConfig()
		rc.Addr = a.cfg.Redis.Addr
		rc.Password = a.cfg.Redis.Password
		rc.DB = a.cfg.Redis.DB
		rc.PoolSize = a.cfg.Redis.PoolSize
		rc.MinIdleConn = a.cfg.Redis.MinIdleConn
		rc.MaxRetries = a.cfg.Redis.MaxRetries
		rc.RetryInterval = a.cfg.RedisRetryInterval()

		client, err := pkgredis.Connect(ctx, rc)
		if err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal, "failed to connect to session storage")
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		return store.NewRedisStorage(client.Client, a.cfg.Session.KeyPrefix), nil
	default:
		dir := a.cfg.Session.Path
		if dir == "" {
			defaultDir, err := pkgconfig.DefaultDir()
			if err != nil {
				return nil, err
			}
			dir = defaultDir
		}
		return store.NewFileStorage(dir)
	}
}

// openAMQPSink подключает пересылку уведомлений в RabbitMQ. Недоступный брокер
// не мешает работе CLI
func (a *app) openAMQPSink(ctx context.Context) notify.Sink {
	if !a.cfg.RabbitMQ.Enabled {
		return nil
	}
	rc := rabbitmq.NewConfig()
	rc.URL = a.cfg.RabbitMQ.URL
	rc.Exchange = a.cfg.RabbitMQ.Exchange
	rc.RoutingKey = a.cfg.RabbitMQ.RoutingKey

	conn, err := rabbitmq.Connect(ctx, rc)
	if err != nil {
		a.log.Warn("RabbitMQ недоступен, уведомления не пересылаются", logger.Error(err))
		return nil
	}
	a.closers = append(a.closers, func() { _ = conn.Close() })
	return notify.NewAMQPSink(rabbitmq.NewProducer(conn, rc), notificationSource)
}

func (a *app) navigate(route string) {
	a.route = route
	a.log.Debug("Навигация", logger.String("route", route))
}

// close освобождает ресурсы в обратном порядке
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	_ = a.log.Sync()
}

// requireSession возвращает ошибку, если пользователь не вошел
func (a *app) requireSession() error {
	if a.flow.Phase() != auth.PhaseAuthenticated {
		return pkgerrors.New(pkgerrors.ErrUnauthorized, "not logged in, run `admin auth login` first")
	}
	return nil
}

// actionFunc тело команды
type actionFunc func(ctx context.Context, a *app) error

type runOptions struct {
	// anonymous команда не требует входа
	anonymous bool
}

// run выполняет команду: собирает клиент, восстанавливает сессию, выполняет
// действие, выводит уведомления и регистрирует метрики
func run(cmd *cobra.Command, fn actionFunc) error {
	return runWith(cmd, runOptions{}, fn)
}

func runWith(cmd *cobra.Command, opts runOptions, fn actionFunc) error {
	start := time.Now()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = rootCtx
	}

	a, err := newApp(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return handleError(err, cmd)
	}
	defer a.close()

	err = a.flow.CheckSession(ctx)
	if err == nil && !opts.anonymous {
		err = a.requireSession()
	}
	if err == nil {
		err = fn(ctx, a)
	}

	a.metrics.CommandExecuted(ctx, cmd.CommandPath(), err == nil, time.Since(start))
	notifications := a.bus.List()
	if printErr := a.printer.PrintNotifications(notifications); printErr != nil {
		a.log.Warn("Не удалось вывести уведомления", logger.Error(printErr))
	}
	if err == nil {
		return nil
	}
	if a.route == auth.RouteLogin {
		fmt.Fprintln(cmd.ErrOrStderr(), "Run `admin auth login` to sign in again")
	}

	err = handleError(err, cmd)
	if hasError(notifications) {
		return &silentError{cause: err}
	}
	return err
}

func hasError(items []notify.Notification) bool {
	for _, n := range items {
		if n.Kind == notify.KindError {
			return true
		}
	}
	return false
}

// print выводит результат команды и регистрирует метрику вывода
func (a *app) print(ctx context.Context, cmd *cobra.Command, data interface{}, records int, meta *output.Metadata) error {
	start := time.Now()
	err := a.printer.Print(cmd.CommandPath(), data, meta)
	a.metrics.OutputGenerated(ctx, string(a.printer.Format()), records, time.Since(start))
	return err
}

// view выбирает представление: таблицу для table и сами данные для json и yaml
func (a *app) view(table *output.TableData, data interface{}) interface{} {
	if a.printer.Format() == output.FormatTable {
		return table
	}
	return data
}
