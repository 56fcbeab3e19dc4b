package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jimyag/hosting/internal/hosting/entity"
	"github.com/jimyag/hosting/internal/hosting/metrics"
	"github.com/jimyag/hosting/internal/hosting/repository"
	"github.com/jimyag/hosting/internal/hosting/repository/model"
	"github.com/jimyag/hosting/pkg/pterodactyl"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

// TestServices 包含测试所需的所有服务和依赖
type TestServices struct {
	Repo                *repository.Repository
	UserRepo            repository.UserRepository
	InstanceRepo        repository.InstanceRepository
	MockRemote          *pterodactyl.MockClient
	Metrics             *metrics.Metrics
	Tokens              *TokenIssuer
	AuthService         *AuthService
	ProvisioningService *ProvisioningService
}

// setupTestServices 为每个测试用例创建独立的测试环境
// 每个测试用例都会获得自己的数据库、mock client 和 service 实例
func setupTestServices(t *testing.T) *TestServices {
	t.Helper()

	repo, err := repository.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = repo.Close()
	})

	tokens, err := NewTokenIssuer(testSecret, 0)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(repo)
	instanceRepo := repository.NewInstanceRepository(repo)
	mockRemote := pterodactyl.NewMockClient()
	m := metrics.New()

	// 测试中使用最低的 bcrypt cost
	authService := newAuthService(userRepo, tokens, bcrypt.MinCost)
	provisioningService := NewProvisioningService(authService, userRepo, instanceRepo, mockRemote, m)

	return &TestServices{
		Repo:                repo,
		UserRepo:            userRepo,
		InstanceRepo:        instanceRepo,
		MockRemote:          mockRemote,
		Metrics:             m,
		Tokens:              tokens,
		AuthService:         authService,
		ProvisioningService: provisioningService,
	}
}

// registerTestUser 注册用户并返回调用方
func registerTestUser(t *testing.T, ts *TestServices, email, password string) *entity.Caller {
	t.Helper()
	resp, err := ts.AuthService.Register(context.Background(), &entity.RegisterRequest{
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return &entity.Caller{UserID: resp.User.ID, Email: resp.User.Email}
}

func countUsers(t *testing.T, ts *TestServices) int64 {
	t.Helper()
	var count int64
	require.NoError(t, ts.Repo.DB().Model(&model.User{}).Count(&count).Error)
	return count
}

func countInstances(t *testing.T, ts *TestServices) int64 {
	t.Helper()
	var count int64
	require.NoError(t, ts.Repo.DB().Model(&model.Instance{}).Count(&count).Error)
	return count
}

func testOrder() *entity.OrderServerRequest {
	return &entity.OrderServerRequest{
		Email:      "a@x.com",
		Credential: "secret1",
		Name:       "svr1",
		Kind:       "Minecraft",
		ResourceSpec: entity.ResourceSpec{
			MemoryMB:   2048,
			DiskMB:     10240,
			CPUPercent: 100,
		},
	}
}

// assertMetric 比较指标的当前值
func assertMetric(t *testing.T, ts *TestServices, name, expected string) {
	t.Helper()
	require.NoError(t, testutil.GatherAndCompare(ts.Metrics.Registry(), strings.NewReader(expected), name))
}
