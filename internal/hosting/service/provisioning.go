package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jimyag/hosting/internal/hosting/entity"
	"github.com/jimyag/hosting/internal/hosting/metrics"
	"github.com/jimyag/hosting/internal/hosting/repository"
	"github.com/jimyag/hosting/internal/hosting/repository/model"
	"github.com/jimyag/hosting/pkg/apierror"
	"github.com/jimyag/hosting/pkg/ginx"
	"github.com/jimyag/hosting/pkg/idgen"
	"github.com/jimyag/hosting/pkg/pterodactyl"
	"github.com/rs/zerolog"
)

// 本地记录写入的超时，不受请求取消影响
const persistTimeout = 10 * time.Second

// RemoteProvisioner 下单需要的面板能力
type RemoteProvisioner interface {
	EnsureUserForExternalID(ctx context.Context, externalID, email string) (*pterodactyl.User, error)
	CreateServer(ctx context.Context, req *pterodactyl.CreateServerRequest) (*pterodactyl.Server, error)
}

// ProvisioningService 编排用户、面板和本地实例记录，完成游戏服下单
type ProvisioningService struct {
	auth         *AuthService
	userRepo     repository.UserRepository
	instanceRepo repository.InstanceRepository
	remote       RemoteProvisioner
	locks        *KeyedMutex
	idGen        *idgen.Generator
	metrics      *metrics.Metrics
}

// NewProvisioningService 创建下单服务
func NewProvisioningService(
	auth *AuthService,
	userRepo repository.UserRepository,
	instanceRepo repository.InstanceRepository,
	remote RemoteProvisioner,
	m *metrics.Metrics,
) *ProvisioningService {
	if m == nil {
		m = metrics.New()
	}
	return &ProvisioningService{
		auth:         auth,
		userRepo:     userRepo,
		instanceRepo: instanceRepo,
		remote:       remote,
		locks:        NewKeyedMutex(),
		idGen:        idgen.New(),
		metrics:      m,
	}
}

// OrderServer 下单创建游戏服
//
// 步骤严格按顺序执行，前一步成功才会进入下一步：
//  1. 解析用户：已认证时使用调用方，否则按邮箱查找，不存在则注册
//  2. 保证面板中存在该用户（同一用户串行执行）
//  3. 在面板中创建服务器，失败时不会写本地记录
//  4. 写入本地实例记录，状态为 PROVISIONING
//
// 第 4 步失败时面板中的服务器不会被删除，只记录日志和指标
func (s *ProvisioningService) OrderServer(ctx context.Context, req *entity.OrderServerRequest, caller *entity.Caller) (resp *entity.OrderServerResponse, err error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordOrder(orderOutcome(err), time.Since(start))
	}()

	if err := validateOrder(req, caller); err != nil {
		return nil, err
	}
	email := entity.NormalizeEmail(req.Email)

	// 1. 解析用户
	user, err := s.resolveIdentity(ctx, email, req.Credential, caller)
	if err != nil {
		return nil, err
	}
	logger := zerolog.Ctx(ctx).With().Str("user_id", user.ID).Logger()
	ctx = logger.WithContext(ctx)

	// 2. 保证面板用户存在
	remoteUser, err := s.ensureRemoteAccount(ctx, user)
	if err != nil {
		return nil, err
	}
	logger = logger.With().Int64("remote_user_id", remoteUser.ID).Logger()
	ctx = logger.WithContext(ctx)

	instanceID, err := s.idGen.GenerateInstanceID()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to generate instance ID")
		return nil, apierror.WrapError(apierror.ErrInternalError, apierror.ErrInternalError.Message, err)
	}

	// 3. 创建面板服务器
	callStart := time.Now()
	server, err := s.remote.CreateServer(ctx, &pterodactyl.CreateServerRequest{
		Name:        req.Name,
		Description: fmt.Sprintf("%s server for %s", req.Kind, email),
		UserID:      remoteUser.ID,
		ExternalID:  instanceID,
		Limits: pterodactyl.Limits{
			MemoryMB:   req.ResourceSpec.MemoryMB,
			DiskMB:     req.ResourceSpec.DiskMB,
			CPUPercent: req.ResourceSpec.CPUPercent,
		},
	})
	s.metrics.RecordRemoteCall("create_server", remoteResult(err), time.Since(callStart))
	if err != nil {
		logger.Error().Err(err).Str("instance_id", instanceID).Msg("Failed to create remote server")
		return nil, apierror.WrapError(apierror.ErrProvisioningFailed, apierror.ErrProvisioningFailed.Message, remoteError(err))
	}
	logger = logger.With().
		Int64("remote_server_id", server.ID).
		Str("remote_identifier", server.Identifier).
		Logger()

	// 4. 写入本地记录
	instance, err := s.persistInstance(ctx, &entity.Instance{
		ID:               instanceID,
		OwnerID:          user.ID,
		RemoteAccountID:  remoteUser.ID,
		RemoteInstanceID: server.ID,
		RemoteIdentifier: server.Identifier,
		Name:             req.Name,
		Kind:             req.Kind,
		ResourceSpec:     req.ResourceSpec,
		Status:           entity.InstanceStatusProvisioning,
	})
	if err != nil {
		s.metrics.RecordOrphanedRemoteInstance()
		logger.Error().
			Err(err).
			Str("instance_id", instanceID).
			Msg("Remote server created but local record was not saved")
		return nil, apierror.WrapError(apierror.ErrStorageUnavailable, apierror.ErrProvisioningFailed.Message, err)
	}

	logger.Info().
		Str("instance_id", instance.ID).
		Str("name", instance.Name).
		Str("kind", instance.Kind).
		Msg("Server provisioned")

	// 5. 返回结果
	return &entity.OrderServerResponse{
		User:     userSummary(user),
		Instance: instance,
		RemoteInstanceRef: &entity.RemoteInstanceRef{
			ID:         server.ID,
			Identifier: server.Identifier,
		},
	}, nil
}

// ListServersForUser 列出调用方的实例，按创建时间倒序
func (s *ProvisioningService) ListServersForUser(ctx context.Context, caller *entity.Caller) (*entity.ListInstancesResponse, error) {
	if caller == nil {
		return nil, apierror.ErrUnauthorized
	}

	models, err := s.instanceRepo.ListByOwner(ctx, caller.UserID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("user_id", caller.UserID).Msg("Failed to list instances")
		return nil, apierror.WrapError(apierror.ErrStorageUnavailable, apierror.ErrStorageUnavailable.Message, err)
	}

	instances, err := instanceModelsToEntities(models)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, apierror.ErrInternalError.Message, err)
	}
	return &entity.ListInstancesResponse{Instances: instances}, nil
}

// UpdateInstanceStatus 更新调用方名下实例的状态
func (s *ProvisioningService) UpdateInstanceStatus(ctx context.Context, caller *entity.Caller, req *entity.UpdateInstanceStatusRequest) (*entity.UpdateInstanceStatusResponse, error) {
	if caller == nil {
		return nil, apierror.ErrUnauthorized
	}
	if err := ginx.Validate(req); err != nil {
		return nil, err
	}
	logger := zerolog.Ctx(ctx)

	current, err := s.instanceRepo.GetByID(ctx, req.InstanceID)
	if err != nil {
		return nil, storeError(err, "Instance not found")
	}
	if current.OwnerID != caller.UserID {
		return nil, apierror.ErrForbidden
	}

	updated, err := s.instanceRepo.UpdateStatus(ctx, req.InstanceID, string(req.Status))
	if err != nil {
		return nil, storeError(err, "Instance not found")
	}

	logger.Info().
		Str("instance_id", updated.ID).
		Str("from", current.Status).
		Str("to", updated.Status).
		Msg("Instance status updated")

	instance, err := instanceModelToEntity(updated)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, apierror.ErrInternalError.Message, err)
	}
	return &entity.UpdateInstanceStatusResponse{Instance: instance}, nil
}

// validateOrder 校验下单请求，匿名下单时 credential 必填
func validateOrder(req *entity.OrderServerRequest, caller *entity.Caller) error {
	err := ginx.Validate(req)
	if req == nil || caller != nil || req.Credential != "" {
		return err
	}

	missing := apierror.FieldError{Field: "credential", Message: "is required"}
	if err == nil {
		return apierror.NewValidationError(missing)
	}
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	fields := make([]apierror.FieldError, 0, len(apiErr.Fields)+1)
	fields = append(fields, missing)
	fields = append(fields, apiErr.Fields...)
	return apierror.NewValidationError(fields...)
}

// resolveIdentity 解析下单用户
// 已认证时订单邮箱必须与调用方一致；匿名下单时已注册的邮箱需要校验密码
func (s *ProvisioningService) resolveIdentity(ctx context.Context, email, credential string, caller *entity.Caller) (*model.User, error) {
	if caller != nil {
		user, err := s.userRepo.GetByID(ctx, caller.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apierror.WrapError(apierror.ErrUnauthorized, apierror.ErrUnauthorized.Message, err)
			}
			return nil, apierror.WrapError(apierror.ErrStorageUnavailable, apierror.ErrStorageUnavailable.Message, err)
		}
		if user.Email != email {
			return nil, apierror.NewValidationError(apierror.FieldError{
				Field:   "email",
				Message: "must match the authenticated user",
			})
		}
		return user, nil
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.auth.checkPassword(user, credential); err != nil {
			return nil, err
		}
		return user, nil
	case errors.Is(err, repository.ErrNotFound):
		// 并发注册落败时返回 IdentityConflict，不自动重试
		return s.auth.createIdentity(ctx, email, credential)
	default:
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to load user by email")
		return nil, apierror.WrapError(apierror.ErrStorageUnavailable, apierror.ErrStorageUnavailable.Message, err)
	}
}

// ensureRemoteAccount 保证面板中存在用户
// 面板的查找再创建不是原子的，同一用户的调用需要串行
func (s *ProvisioningService) ensureRemoteAccount(ctx context.Context, user *model.User) (*pterodactyl.User, error) {
	unlock, err := s.locks.Lock(ctx, user.ID)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrRemoteUnavailable, apierror.ErrRemoteUnavailable.Message, err)
	}
	defer unlock()

	start := time.Now()
	remoteUser, err := s.remote.EnsureUserForExternalID(ctx, user.ID, user.Email)
	s.metrics.RecordRemoteCall("ensure_user", remoteResult(err), time.Since(start))
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to ensure remote account")
		return nil, remoteError(err)
	}
	return remoteUser, nil
}

// persistInstance 写入本地实例记录
// 此时面板服务器已经创建，请求被取消也要尽量把记录写进去
func (s *ProvisioningService) persistInstance(ctx context.Context, instance *entity.Instance) (*entity.Instance, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	m, err := instanceEntityToModel(instance)
	if err != nil {
		return nil, err
	}
	if err := s.instanceRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	return instanceModelToEntity(m)
}

// remoteError 将面板错误转换为 RemoteUnavailable 或 RemoteRejected
// 超时、网络错误和无法解析的响应都视为不可达
func remoteError(err error) *apierror.Error {
	if pterodactyl.IsRejected(err) {
		return apierror.WrapError(apierror.ErrRemoteRejected, apierror.ErrRemoteRejected.Message, err)
	}
	return apierror.WrapError(apierror.ErrRemoteUnavailable, apierror.ErrRemoteUnavailable.Message, err)
}

// storeError 将仓库错误转换为 NotFound 或 StorageUnavailable
func storeError(err error, notFoundMsg string) *apierror.Error {
	if errors.Is(err, repository.ErrNotFound) {
		return apierror.WrapError(apierror.ErrNotFound, notFoundMsg, err)
	}
	return apierror.WrapError(apierror.ErrStorageUnavailable, apierror.ErrStorageUnavailable.Message, err)
}

func remoteResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case pterodactyl.IsRejected(err):
		return "rejected"
	default:
		return "unavailable"
	}
}

// orderOutcome 下单结果，用于指标
func orderOutcome(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	switch {
	case errors.Is(err, apierror.ErrProvisioningFailed):
		return metrics.OutcomeProvisioningFailed
	case errors.Is(err, apierror.ErrValidation):
		return metrics.OutcomeValidationError
	case errors.Is(err, apierror.ErrIdentityConflict):
		return metrics.OutcomeIdentityConflict
	case errors.Is(err, apierror.ErrInvalidCredentials):
		return metrics.OutcomeInvalidCredentials
	case errors.Is(err, apierror.ErrRemoteUnavailable):
		return metrics.OutcomeRemoteUnavailable
	case errors.Is(err, apierror.ErrRemoteRejected):
		return metrics.OutcomeRemoteRejected
	case errors.Is(err, apierror.ErrStorageUnavailable):
		return metrics.OutcomeStorageUnavailable
	default:
		return metrics.OutcomeInternalError
	}
}
