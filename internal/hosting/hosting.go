// Package hosting 提供游戏服务器开通服务的主入口和初始化逻辑
package hosting

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jimmicro/grace"
	"github.com/jimyag/hosting/internal/hosting/api"
	"github.com/jimyag/hosting/internal/hosting/config"
	"github.com/jimyag/hosting/internal/hosting/metrics"
	"github.com/jimyag/hosting/internal/hosting/repository"
	"github.com/jimyag/hosting/internal/hosting/service"
	"github.com/jimyag/hosting/pkg/pterodactyl"
	"github.com/rs/zerolog"
)

type Server struct {
	cfg  *config.Config
	api  *api.API
	repo *repository.Repository
}

func New(cfg *config.Config) (*Server, error) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Log.Level, err)
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger

	for _, warning := range cfg.Warnings {
		logger.Warn().Msg(warning)
	}

	// 1. 本地存储
	repo, err := repository.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("create repository: %w", err)
	}
	logger.Info().Str("path", cfg.Database.Path).Msg("Database initialized")

	userRepo := repository.NewUserRepository(repo)
	instanceRepo := repository.NewInstanceRepository(repo)

	// 2. 认证
	tokens, err := service.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	authService := service.NewAuthService(userRepo, tokens)

	// 3. 面板客户端
	panel, err := pterodactyl.New(pterodactyl.Config{
		BaseURL:  cfg.Pterodactyl.BaseURL,
		APIKey:   cfg.Pterodactyl.APIKey,
		Timeout:  cfg.Pterodactyl.Timeout,
		Defaults: cfg.Pterodactyl.Defaults,
	})
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("create pterodactyl client: %w", err)
	}

	// 4. 下单编排
	m := metrics.New()
	provisioningService := service.NewProvisioningService(authService, userRepo, instanceRepo, panel, m)

	// 5. HTTP 服务
	apiInstance, err := api.New(api.Options{
		Address: cfg.Address,
		Env:     cfg.Env,
	}, authService, provisioningService, m)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}

	return &Server{
		cfg:  cfg,
		api:  apiInstance,
		repo: repo,
	}, nil
}

func (s *Server) Run(ctx context.Context) error {
	// 使用 grace.Shepherd 管理服务生命周期
	services := []grace.Grace{
		s.api,
	}

	shepherd := grace.NewShepherd(
		services,
		grace.WithTimeout(30*time.Second),
		grace.WithLogger(&zerologLogger{}),
	)

	shepherd.Start(ctx)
	return s.repo.Close()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return errors.Join(s.api.Shutdown(ctx), s.repo.Close())
}

// Name 实现 grace.Grace 接口
func (s *Server) Name() string {
	return "Hosting Server"
}

// zerologLogger 实现 grace.Logger 接口
type zerologLogger struct{}

func (l *zerologLogger) Info(msg string, args ...interface{}) {
	event := zerolog.DefaultContextLogger.Info()
	if len(args) > 0 {
		event.Msgf(msg, args...)
		return
	}
	event.Msg(msg)
}

func (l *zerologLogger) Error(msg string, args ...interface{}) {
	event := zerolog.DefaultContextLogger.Error()
	if len(args) > 0 {
		event.Msgf(msg, args...)
		return
	}
	event.Msg(msg)
}
