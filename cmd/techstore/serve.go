package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	middleware "github.com/oapi-codegen/gin-middleware"
	"github.com/spf13/cobra"
	"github.com/swaggest/swgui/v5emb"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jrmnl/yandex-techstore/api"
	"github.com/jrmnl/yandex-techstore/catalog"
	"github.com/jrmnl/yandex-techstore/codecs"
	"github.com/jrmnl/yandex-techstore/config"
	"github.com/jrmnl/yandex-techstore/events"
	"github.com/jrmnl/yandex-techstore/logging"
	"github.com/jrmnl/yandex-techstore/session"
	"github.com/jrmnl/yandex-techstore/streaming"
)

const shutdownTimeout = 5 * time.Second

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP API витрины",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.GetAppSettings()
			if err != nil {
				return WrapExitError(ExitCommandError, "Некорректная конфигурация", err)
			}
			settings.CatalogPath = rootOpts.CatalogPath
			settings.PromoPath = rootOpts.PromoPath
			if cmd.Flags().Changed("port") {
				settings.Port = port
			}
			return runServe(cmd.Context(), settings)
		},
	}
	cmd.Flags().StringVar(&port, "port", "8097", "порт HTTP API")
	return cmd
}

// NewRouter builds the gin engine: docs routes first, then the validated API.
func NewRouter(handler api.ServerInterface) (*gin.Engine, error) {
	swagger, err := api.GetSwagger()
	if err != nil {
		return nil, err
	}
	swagger.Servers = nil

	swUi := v5emb.New(
		"TechStore",
		"/openapi.yaml",
		"/api/docs/",
	)

	r := gin.New()
	r.Use(gin.Recovery())

	apiGroup := r.Group("/api/docs/")
	{
		apiGroup.Any("/*any", gin.WrapH(swUi))
	}
	r.GET("/openapi.yaml", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/yaml", api.Document())
	})

	r.Use(requestLogger())
	r.Use(middleware.OapiRequestValidator(swagger))

	api.RegisterHandlers(r, handler)
	return r, nil
}

func NewGinServer(handler api.ServerInterface, port string) (*http.Server, error) {
	r, err := NewRouter(handler)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Handler:           r,
		Addr:              net.JoinHostPort("0.0.0.0", port),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		zap.L().Debug("Запрос обработан",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func runServe(ctx context.Context, settings config.AppSettings) error {
	flush, err := logging.Init(logging.Options{Mode: settings.LogMode, File: settings.LogFile})
	if err != nil {
		return WrapExitError(ExitCommandError, "Ошибка настройки логирования", err)
	}
	defer flush()
	if settings.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	zap.L().Info("Запущено")

	// A failed load leaves the catalog empty; the API still serves.
	store := catalog.NewStore()
	_ = store.Load(ctx, catalog.FileFetcher(settings.CatalogPath))

	promos, err := loadPromos(settings.PromoPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	var publisher session.Publisher
	if settings.KafkaEnabled() {
		channel, err := startProducer(gctx, g, settings)
		if err != nil {
			return err
		}
		publisher = channel
	}

	registry := session.NewRegistry(store, promos, publisher, settings.SessionTTL)
	g.Go(func() error {
		return registry.Run(gctx)
	})

	server, err := NewGinServer(NewApiHandler(store, registry), settings.Port)
	if err != nil {
		return WrapExitError(ExitCommandError, "Ошибка получения сваггера", err)
	}

	// запускаем вебсервер
	g.Go(func() error {
		zap.L().Info("HTTP API слушает", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if err != nil {
		zap.L().Error("Остановлено с ошибкой", zap.Error(err))
	}
	zap.L().Info("Завершено")
	return err
}

// startProducer waits for the topic and the registry, then runs the
// user-action producer inside g.
func startProducer(ctx context.Context, g *errgroup.Group, settings config.AppSettings) (*streaming.ChannelPublisher, error) {
	zap.L().Info("Ожидаем создание топиков")
	producerCfg := config.GetProducerConfig(settings)
	if err := streaming.WaitTopic(ctx, producerCfg, settings.ActionsTopic); err != nil {
		return nil, WrapExitError(ExitFailure, "Топик недоступен", err)
	}
	zap.L().Info("Ожидание топиков завершено")

	zap.L().Info("Ожидаем доступность реджистри")
	registryConfig := config.GetRegistryConfig(settings)
	if err := streaming.WaitRegistry(ctx, registryConfig); err != nil {
		return nil, WrapExitError(ExitFailure, "Schema Registry недоступно", err)
	}
	zap.L().Info("реджистри доступно")

	codec, err := codecs.NewAvro[events.UserAction](registryConfig, settings.ActionsTopic)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "Ошибка создания сериализатора", err)
	}

	channel := streaming.NewChannelPublisher(settings.ActionBuffer)
	// запускаем продьюсер
	g.Go(func() error {
		return streaming.ProduceMessages(ctx, producerCfg, settings.ActionsTopic, channel.Actions(), codec)
	})
	return channel, nil
}
