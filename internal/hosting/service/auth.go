package service

import (
	"context"
	"errors"

	"github.com/jimyag/hosting/internal/hosting/entity"
	"github.com/jimyag/hosting/internal/hosting/repository"
	"github.com/jimyag/hosting/internal/hosting/repository/model"
	"github.com/jimyag/hosting/pkg/apierror"
	"github.com/jimyag/hosting/pkg/ginx"
	"github.com/jimyag/hosting/pkg/idgen"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 用户注册、登录和 bearer token 校验
type AuthService struct {
	userRepo   repository.UserRepository
	tokens     *TokenIssuer
	idGen      *idgen.Generator
	bcryptCost int
	// 用户不存在时也做一次哈希比较，避免通过耗时判断邮箱是否注册
	dummyHash []byte
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo repository.UserRepository, tokens *TokenIssuer) *AuthService {
	return newAuthService(userRepo, tokens, bcrypt.DefaultCost)
}

func newAuthService(userRepo repository.UserRepository, tokens *TokenIssuer, cost int) *AuthService {
	dummyHash, _ := bcrypt.GenerateFromPassword([]byte("dummy-password"), cost)
	return &AuthService{
		userRepo:   userRepo,
		tokens:     tokens,
		idGen:      idgen.New(),
		bcryptCost: cost,
		dummyHash:  dummyHash,
	}
}

// Register 注册新用户并签发 token
func (s *AuthService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.AuthResponse, error) {
	if err := ginx.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.createIdentity(ctx, entity.NormalizeEmail(req.Email), req.Password)
	if err != nil {
		return nil, err
	}
	return s.authResponse(ctx, user)
}

// Login 校验邮箱和密码并签发 token
func (s *AuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.AuthResponse, error) {
	if err := ginx.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.verifyCredentials(ctx, entity.NormalizeEmail(req.Email), req.Password)
	if err != nil {
		return nil, err
	}
	return s.authResponse(ctx, user)
}

// Authenticate 校验 bearer token 并解析出调用方
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entity.Caller, error) {
	logger := zerolog.Ctx(ctx)

	claims, err := s.tokens.Parse(token)
	if err != nil {
		logger.Debug().Err(err).Msg("Rejected bearer token")
		return nil, apierror.WrapError(apierror.ErrUnauthorized, apierror.ErrUnauthorized.Message, err)
	}

	// 用户可能已经被删除
	user, err := s.userRepo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.WrapError(apierror.ErrUnauthorized, apierror.ErrUnauthorized.Message, err)
		}
		logger.Error().Err(err).Str("user_id", claims.Subject).Msg("Failed to load user for token")
		return nil, apierror.WrapError(apierror.ErrStorageUnavailable, apierror.ErrStorageUnavailable.Message, err)
	}

	return &entity.Caller{
		UserID: user.ID,
		Email:  user.Email,
	}, nil
}

// GetUser 获取用户信息
func (s *AuthService) GetUser(ctx context.Context, caller *entity.Caller) (*entity.User, error) {
	if caller == nil {
		return nil, apierror.ErrUnauthorized
	}
	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.WrapError(apierror.ErrNotFound, "User not found", err)
		}
		return nil, apierror.WrapError(apierror.ErrStorageUnavailable, apierror.ErrStorageUnavailable.Message, err)
	}
	return userModelToEntity(user)
}

// createIdentity 哈希密码并创建用户，email 必须已经规范化
// 邮箱已存在时返回 ErrIdentityConflict，包括并发注册中落败的一方
func (s *AuthService) createIdentity(ctx context.Context, email, password string) (*model.User, error) {
	logger := zerolog.Ctx(ctx)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to hash password")
		return nil, apierror.WrapError(apierror.ErrInternalError, apierror.ErrInternalError.Message, err)
	}

	userID, err := s.idGen.GenerateUserID()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to generate user ID")
		return nil, apierror.WrapError(apierror.ErrInternalError, apierror.ErrInternalError.Message, err)
	}

	user := &model.User{
		ID:           userID,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, apierror.WrapError(apierror.ErrIdentityConflict, apierror.ErrIdentityConflict.Message, err)
		}
		logger.Error().Err(err).Msg("Failed to create user")
		return nil, apierror.WrapError(apierror.ErrStorageUnavailable, apierror.ErrStorageUnavailable.Message, err)
	}

	logger.Info().
		Str("user_id", user.ID).
		Msg("User registered")

	return user, nil
}

// verifyCredentials 校验邮箱和密码，email 必须已经规范化
func (s *AuthService) verifyCredentials(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, apierror.ErrInvalidCredentials
		}
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to load user by email")
		return nil, apierror.WrapError(apierror.ErrStorageUnavailable, apierror.ErrStorageUnavailable.Message, err)
	}
	if err := s.checkPassword(user, password); err != nil {
		return nil, err
	}
	return user, nil
}

// checkPassword 比较密码和用户的哈希
func (s *AuthService) checkPassword(user *model.User, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return apierror.WrapError(apierror.ErrInvalidCredentials, apierror.ErrInvalidCredentials.Message, err)
	}
	return nil
}

func (s *AuthService) authResponse(ctx context.Context, user *model.User) (*entity.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue token")
		return nil, apierror.WrapError(apierror.ErrInternalError, apierror.ErrInternalError.Message, err)
	}
	return &entity.AuthResponse{
		User:  userSummary(user),
		Token: token,
	}, nil
}
