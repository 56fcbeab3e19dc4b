package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/hosting/internal/hosting/entity"
	"github.com/jimyag/hosting/internal/hosting/metrics"
	"github.com/jimyag/hosting/pkg/ginx"
	"github.com/rs/zerolog"
)

// ProvisioningServiceInterface 定义下单服务的接口
type ProvisioningServiceInterface interface {
	OrderServer(ctx context.Context, req *entity.OrderServerRequest, caller *entity.Caller) (*entity.OrderServerResponse, error)
	ListServersForUser(ctx context.Context, caller *entity.Caller) (*entity.ListInstancesResponse, error)
	UpdateInstanceStatus(ctx context.Context, caller *entity.Caller, req *entity.UpdateInstanceStatusRequest) (*entity.UpdateInstanceStatusResponse, error)
}

type Servers struct {
	provisioningService ProvisioningServiceInterface
	authService         AuthServiceInterface
	metrics             *metrics.Metrics
}

func NewServers(provisioningService ProvisioningServiceInterface, authService AuthServiceInterface, m *metrics.Metrics) *Servers {
	return &Servers{
		provisioningService: provisioningService,
		authService:         authService,
		metrics:             m,
	}
}

func (s *Servers) RegisterRoutes(router *gin.RouterGroup) {
	// 下单允许匿名，携带 token 时按已认证用户处理
	// 匿名下单必须携带 credential，已认证时可以省略
	router.POST("/servers/order", authenticate(s.authService, false), ginx.Adapt3(s.OrderServer))

	instanceRouter := router.Group("/instances", authenticate(s.authService, true))
	instanceRouter.GET("", ginx.Adapt3(s.ListInstances))
	instanceRouter.POST("/update-status", ginx.Adapt5(s.UpdateInstanceStatus))
}

func (s *Servers) OrderServer(ctx *gin.Context) (*entity.OrderServerResponse, error) {
	start := time.Now()
	logger := zerolog.Ctx(ctx)

	// 绑定失败的请求不会进入下单流程，在这里计入下单指标
	req := new(entity.OrderServerRequest)
	if err := ginx.Bind(ctx, req); err != nil {
		s.metrics.RecordOrder(metrics.OutcomeValidationError, time.Since(start))
		return nil, err
	}

	logger.Info().
		Str("name", req.Name).
		Str("kind", req.Kind).
		Int("memory_mb", req.ResourceSpec.MemoryMB).
		Int("disk_mb", req.ResourceSpec.DiskMB).
		Int("cpu_percent", req.ResourceSpec.CPUPercent).
		Msg("OrderServer called")

	resp, err := s.provisioningService.OrderServer(ctx, req, getCaller(ctx))
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("instance_id", resp.Instance.ID).
		Msg("Server ordered successfully")

	return resp, nil
}

func (s *Servers) ListInstances(ctx *gin.Context) (*entity.ListInstancesResponse, error) {
	return s.provisioningService.ListServersForUser(ctx, getCaller(ctx))
}

func (s *Servers) UpdateInstanceStatus(ctx *gin.Context, req *entity.UpdateInstanceStatusRequest) (*entity.UpdateInstanceStatusResponse, error) {
	return s.provisioningService.UpdateInstanceStatus(ctx, getCaller(ctx), req)
}
