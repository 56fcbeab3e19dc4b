package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/hosting/internal/hosting/entity"
	"github.com/jimyag/hosting/pkg/ginx"
	"github.com/rs/zerolog"
)

// AuthServiceInterface 定义认证服务的接口
type AuthServiceInterface interface {
	Register(ctx context.Context, req *entity.RegisterRequest) (*entity.AuthResponse, error)
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.AuthResponse, error)
	Authenticate(ctx context.Context, token string) (*entity.Caller, error)
	GetUser(ctx context.Context, caller *entity.Caller) (*entity.User, error)
}

type Auth struct {
	authService AuthServiceInterface
}

func NewAuth(authService AuthServiceInterface) *Auth {
	return &Auth{
		authService: authService,
	}
}

func (a *Auth) RegisterRoutes(router *gin.RouterGroup) {
	authRouter := router.Group("/auth")
	authRouter.POST("/register", ginx.Adapt5(a.Register))
	authRouter.POST("/login", ginx.Adapt5(a.Login))
	authRouter.GET("/me", authenticate(a.authService, true), ginx.Adapt3(a.Me))
}

func (a *Auth) Register(ctx *gin.Context, req *entity.RegisterRequest) (*entity.RegisterResponse, error) {
	resp, err := a.authService.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("user_id", resp.User.ID).
		Msg("User registered successfully")

	return &entity.RegisterResponse{AuthResponse: *resp}, nil
}

func (a *Auth) Login(ctx *gin.Context, req *entity.LoginRequest) (*entity.AuthResponse, error) {
	return a.authService.Login(ctx, req)
}

func (a *Auth) Me(ctx *gin.Context) (*entity.User, error) {
	return a.authService.GetUser(ctx, getCaller(ctx))
}
