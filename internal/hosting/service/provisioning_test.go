package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jimyag/hosting/internal/hosting/entity"
	"github.com/jimyag/hosting/pkg/apierror"
	"github.com/jimyag/hosting/pkg/pterodactyl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOrderServer_EndToEnd(t *testing.T) {
	t.Parallel()

	ts := setupTestServices(t)
	ctx := context.Background()

	remoteUser := &pterodactyl.User{ID: 9, Username: "a", Email: "a@x.com"}
	ts.MockRemote.On("EnsureUserForExternalID", mock.Anything, mock.AnythingOfType("string"), "a@x.com").
		Return(remoteUser, nil)
	ts.MockRemote.On("CreateServer", mock.Anything, mock.MatchedBy(func(req *pterodactyl.CreateServerRequest) bool {
		return req.UserID == 9 &&
			req.Name == "svr1" &&
			req.Description == "Minecraft server for a@x.com" &&
			req.Limits == pterodactyl.Limits{MemoryMB: 2048, DiskMB: 10240, CPUPercent: 100} &&
			strings.HasPrefix(req.ExternalID, "srv-")
	})).Return(&pterodactyl.Server{ID: 77, Identifier: "abcd1234"}, nil).Once()
	ts.MockRemote.On("CreateServer", mock.Anything, mock.Anything).
		Return(&pterodactyl.Server{ID: 78, Identifier: "efgh5678"}, nil).Once()

	// 第一次下单：注册用户、创建面板用户和服务器
	first, err := ts.ProvisioningService.OrderServer(ctx, testOrder(), nil)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", first.User.Email)
	assert.True(t, strings.HasPrefix(first.User.ID, "u-"))
	assert.Equal(t, entity.InstanceStatusProvisioning, first.Instance.Status)
	assert.Equal(t, first.User.ID, first.Instance.OwnerID)
	assert.Equal(t, int64(9), first.Instance.RemoteAccountID)
	assert.Equal(t, int64(77), first.Instance.RemoteInstanceID)
	assert.Equal(t, &entity.RemoteInstanceRef{ID: 77, Identifier: "abcd1234"}, first.RemoteInstanceRef)
	assert.Equal(t, entity.ResourceSpec{MemoryMB: 2048, DiskMB: 10240, CPUPercent: 100}, first.Instance.ResourceSpec)

	// 第二次下单：复用用户和面板用户，创建新的实例
	second, err := ts.ProvisioningService.OrderServer(ctx, testOrder(), nil)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, int64(9), second.Instance.RemoteAccountID)
	assert.Equal(t, int64(78), second.Instance.RemoteInstanceID)
	assert.NotEqual(t, first.Instance.ID, second.Instance.ID)

	// 面板用户的 external_id 是本地用户 ID
	ts.MockRemote.AssertCalled(t, "EnsureUserForExternalID", mock.Anything, first.User.ID, "a@x.com")
	ts.MockRemote.AssertNumberOfCalls(t, "CreateServer", 2)
	assert.Equal(t, int64(1), countUsers(t, ts))

	list, err := ts.ProvisioningService.ListServersForUser(ctx, &entity.Caller{UserID: first.User.ID})
	require.NoError(t, err)
	require.Len(t, list.Instances, 2)
	assert.Equal(t, second.Instance.ID, list.Instances[0].ID)
	assert.Equal(t, first.Instance.ID, list.Instances[1].ID)

	assertMetric(t, ts, "hosting_orders_total", `
# HELP hosting_orders_total Total number of server orders by outcome
# TYPE hosting_orders_total counter
hosting_orders_total{outcome="success"} 2
`)
}

func TestOrderServer_Validation(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name      string
		memoryMB  int
		expectErr bool
	}{
		{name: "memory below minimum", memoryMB: 511, expectErr: true},
		{name: "memory at minimum", memoryMB: 512},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ts := setupTestServices(t)
			if !tc.expectErr {
				ts.MockRemote.On("EnsureUserForExternalID", mock.Anything, mock.Anything, mock.Anything).
					Return(&pterodactyl.User{ID: 1}, nil)
				ts.MockRemote.On("CreateServer", mock.Anything, mock.Anything).
					Return(&pterodactyl.Server{ID: 2, Identifier: "x"}, nil)
			}

			req := testOrder()
			req.ResourceSpec.MemoryMB = tc.memoryMB
			_, err := ts.ProvisioningService.OrderServer(context.Background(), req, nil)

			if !tc.expectErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, apierror.ErrValidation)
			// 校验失败时不会有任何副作用
			ts.MockRemote.AssertNotCalled(t, "EnsureUserForExternalID", mock.Anything, mock.Anything, mock.Anything)
			ts.MockRemote.AssertNotCalled(t, "CreateServer", mock.Anything, mock.Anything)
			assert.Equal(t, int64(0), countUsers(t, ts))
			assertMetric(t, ts, "hosting_orders_total", `
# HELP hosting_orders_total Total number of server orders by outcome
# TYPE hosting_orders_total counter
hosting_orders_total{outcome="validation_error"} 1
`)
		})
	}
}

func TestOrderServer_Credential(t *testing.T) {
	t.Parallel()

	t.Run("anonymous order requires credential", func(t *testing.T) {
		t.Parallel()
		ts := setupTestServices(t)

		req := testOrder()
		req.Credential = ""
		req.ResourceSpec.MemoryMB = 100
		_, err := ts.ProvisioningService.OrderServer(context.Background(), req, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, apierror.ErrValidation)

		fields := apierror.From(err).Fields
		require.Len(t, fields, 2)
		assert.Equal(t, "credential", fields[0].Field)
		assert.Equal(t, "is required", fields[0].Message)
		assert.Equal(t, "resourceSpec.memoryMb", fields[1].Field)
		assert.Equal(t, int64(0), countUsers(t, ts))
	})

	t.Run("authenticated order without credential", func(t *testing.T) {
		t.Parallel()
		ts := setupTestServices(t)
		caller := registerTestUser(t, ts, "a@x.com", "secret1")
		ts.MockRemote.On("EnsureUserForExternalID", mock.Anything, caller.UserID, "a@x.com").
			Return(&pterodactyl.User{ID: 9}, nil)
		ts.MockRemote.On("CreateServer", mock.Anything, mock.Anything).
			Return(&pterodactyl.Server{ID: 77, Identifier: "abcd1234"}, nil)

		req := testOrder()
		req.Credential = ""
		resp, err := ts.ProvisioningService.OrderServer(context.Background(), req, caller)
		require.NoError(t, err)
		assert.Equal(t, caller.UserID, resp.User.ID)
	})

	t.Run("nil request", func(t *testing.T) {
		t.Parallel()
		ts := setupTestServices(t)

		_, err := ts.ProvisioningService.OrderServer(context.Background(), nil, nil)
		assert.ErrorIs(t, err, apierror.ErrValidation)
	})
}

func TestOrderServer_RemoteFailures(t *testing.T) {
	t.Parallel()

	rejected := &pterodactyl.APIError{StatusCode: 422, Method: "POST", Path: "/servers",
		Errors: []pterodactyl.ErrorDetail{{Code: "ValidationException", Detail: "quota exceeded"}}}
	unavailable := &pterodactyl.APIError{StatusCode: 503, Method: "GET", Path: "/users"}

	testcases := []struct {
		name         string
		ensureErr    error
		createErr    error
		expectErr    *apierror.Error
		expectKind   *apierror.Error
		expectCreate bool
	}{
		{
			name:       "ensure account unavailable",
			ensureErr:  unavailable,
			expectErr:  apierror.ErrRemoteUnavailable,
			expectKind: apierror.ErrRemoteUnavailable,
		},
		{
			name:       "ensure account rejected",
			ensureErr:  &pterodactyl.APIError{StatusCode: 422},
			expectErr:  apierror.ErrRemoteRejected,
			expectKind: apierror.ErrRemoteRejected,
		},
		{
			name:         "create server rejected",
			createErr:    rejected,
			expectErr:    apierror.ErrProvisioningFailed,
			expectKind:   apierror.ErrRemoteRejected,
			expectCreate: true,
		},
		{
			name:         "create server timeout",
			createErr:    errors.Join(pterodactyl.ErrUnavailable, context.DeadlineExceeded),
			expectErr:    apierror.ErrProvisioningFailed,
			expectKind:   apierror.ErrRemoteUnavailable,
			expectCreate: true,
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ts := setupTestServices(t)
			ctx := context.Background()

			if tc.ensureErr != nil {
				ts.MockRemote.On("EnsureUserForExternalID", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, tc.ensureErr)
			} else {
				ts.MockRemote.On("EnsureUserForExternalID", mock.Anything, mock.Anything, mock.Anything).
					Return(&pterodactyl.User{ID: 9}, nil)
			}
			ts.MockRemote.On("CreateServer", mock.Anything, mock.Anything).Return(nil, tc.createErr)

			_, err := ts.ProvisioningService.OrderServer(ctx, testOrder(), nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.expectErr)
			assert.ErrorIs(t, err, tc.expectKind)
			assert.Equal(t, "Failed to provision server", apierror.From(err).Message)

			if tc.expectCreate {
				ts.MockRemote.AssertNumberOfCalls(t, "CreateServer", 1)
			} else {
				ts.MockRemote.AssertNotCalled(t, "CreateServer", mock.Anything, mock.Anything)
			}

			// 面板失败时不会留下本地实例记录
			assert.Equal(t, int64(0), countInstances(t, ts))
			user, err := ts.UserRepo.GetByEmail(ctx, "a@x.com")
			require.NoError(t, err)
			list, err := ts.ProvisioningService.ListServersForUser(ctx, &entity.Caller{UserID: user.ID})
			require.NoError(t, err)
			assert.Empty(t, list.Instances)
		})
	}
}

func TestOrderServer_StorageFailureAfterRemoteCreate(t *testing.T) {
	t.Parallel()

	ts := setupTestServices(t)
	ts.MockRemote.On("EnsureUserForExternalID", mock.Anything, mock.Anything, mock.Anything).
		Return(&pterodactyl.User{ID: 9}, nil)
	ts.MockRemote.On("CreateServer", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			// 面板创建成功后本地存储不可用
			require.NoError(t, ts.Repo.Close())
		}).
		Return(&pterodactyl.Server{ID: 77, Identifier: "abcd1234"}, nil)

	_, err := ts.ProvisioningService.OrderServer(context.Background(), testOrder(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierror.ErrStorageUnavailable)
	assert.Equal(t, "Failed to provision server", apierror.From(err).Message)
	assertMetric(t, ts, "hosting_orders_orphaned_remote_instances_total", `
# HELP hosting_orders_orphaned_remote_instances_total Remote servers created without a local instance record
# TYPE hosting_orders_orphaned_remote_instances_total counter
hosting_orders_orphaned_remote_instances_total 1
`)
}

func TestOrderServer_Identity(t *testing.T) {
	t.Parallel()

	t.Run("existing email with wrong credential", func(t *testing.T) {
		t.Parallel()
		ts := setupTestServices(t)
		registerTestUser(t, ts, "a@x.com", "secret1")

		req := testOrder()
		req.Credential = "not-the-password"
		_, err := ts.ProvisioningService.OrderServer(context.Background(), req, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, apierror.ErrInvalidCredentials)
		ts.MockRemote.AssertNotCalled(t, "EnsureUserForExternalID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("authenticated caller with other email", func(t *testing.T) {
		t.Parallel()
		ts := setupTestServices(t)
		caller := registerTestUser(t, ts, "b@x.com", "secret1")

		_, err := ts.ProvisioningService.OrderServer(context.Background(), testOrder(), caller)
		require.Error(t, err)
		assert.ErrorIs(t, err, apierror.ErrValidation)
		require.Len(t, apierror.From(err).Fields, 1)
		assert.Equal(t, "email", apierror.From(err).Fields[0].Field)
	})

	t.Run("authenticated caller skips credential check", func(t *testing.T) {
		t.Parallel()
		ts := setupTestServices(t)
		caller := registerTestUser(t, ts, "a@x.com", "secret1")
		ts.MockRemote.On("EnsureUserForExternalID", mock.Anything, caller.UserID, "a@x.com").
			Return(&pterodactyl.User{ID: 9}, nil)
		ts.MockRemote.On("CreateServer", mock.Anything, mock.Anything).
			Return(&pterodactyl.Server{ID: 77, Identifier: "abcd1234"}, nil)

		req := testOrder()
		req.Email = "A@X.com"
		req.Credential = "ignored-for-callers"
		resp, err := ts.ProvisioningService.OrderServer(context.Background(), req, caller)
		require.NoError(t, err)
		assert.Equal(t, caller.UserID, resp.User.ID)
	})
}

func TestOrderServer_SerializesRemoteAccountPerIdentity(t *testing.T) {
	t.Parallel()

	ts := setupTestServices(t)
	caller := registerTestUser(t, ts, "a@x.com", "secret1")

	var (
		inFlight    atomic.Int32
		maxInFlight atomic.Int32
	)
	ts.MockRemote.On("EnsureUserForExternalID", mock.Anything, caller.UserID, "a@x.com").
		Run(func(args mock.Arguments) {
			n := inFlight.Add(1)
			for {
				cur := maxInFlight.Load()
				if n <= cur || maxInFlight.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
		}).
		Return(&pterodactyl.User{ID: 9}, nil)

	ts.MockRemote.On("CreateServer", mock.Anything, mock.Anything).
		Return(&pterodactyl.Server{ID: 100, Identifier: "abcd1234"}, nil)

	const orders = 5
	var wg sync.WaitGroup
	errs := make(chan error, orders)
	for i := 0; i < orders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ts.ProvisioningService.OrderServer(context.Background(), testOrder(), caller)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), maxInFlight.Load())
	assert.Equal(t, int64(orders), countInstances(t, ts))
	assert.Equal(t, 0, ts.ProvisioningService.locks.size())
}

func TestListServersForUser(t *testing.T) {
	t.Parallel()

	ts := setupTestServices(t)
	caller := registerTestUser(t, ts, "a@x.com", "secret1")

	list, err := ts.ProvisioningService.ListServersForUser(context.Background(), caller)
	require.NoError(t, err)
	assert.NotNil(t, list.Instances)
	assert.Empty(t, list.Instances)

	_, err = ts.ProvisioningService.ListServersForUser(context.Background(), nil)
	assert.ErrorIs(t, err, apierror.ErrUnauthorized)
}

func TestUpdateInstanceStatus(t *testing.T) {
	t.Parallel()

	ts := setupTestServices(t)
	ctx := context.Background()
	owner := registerTestUser(t, ts, "a@x.com", "secret1")
	other := registerTestUser(t, ts, "b@x.com", "secret1")

	ts.MockRemote.On("EnsureUserForExternalID", mock.Anything, mock.Anything, mock.Anything).
		Return(&pterodactyl.User{ID: 9}, nil)
	ts.MockRemote.On("CreateServer", mock.Anything, mock.Anything).
		Return(&pterodactyl.Server{ID: 77, Identifier: "abcd1234"}, nil)
	order, err := ts.ProvisioningService.OrderServer(ctx, testOrder(), owner)
	require.NoError(t, err)

	testcases := []struct {
		name      string
		caller    *entity.Caller
		req       *entity.UpdateInstanceStatusRequest
		expectErr *apierror.Error
	}{
		{
			name:   "owner",
			caller: owner,
			req:    &entity.UpdateInstanceStatusRequest{InstanceID: order.Instance.ID, Status: entity.InstanceStatusActive},
		},
		{
			name:      "other user",
			caller:    other,
			req:       &entity.UpdateInstanceStatusRequest{InstanceID: order.Instance.ID, Status: entity.InstanceStatusError},
			expectErr: apierror.ErrForbidden,
		},
		{
			name:      "missing instance",
			caller:    owner,
			req:       &entity.UpdateInstanceStatusRequest{InstanceID: "srv-missing", Status: entity.InstanceStatusActive},
			expectErr: apierror.ErrNotFound,
		},
		{
			name:      "invalid status",
			caller:    owner,
			req:       &entity.UpdateInstanceStatusRequest{InstanceID: order.Instance.ID, Status: "RUNNING"},
			expectErr: apierror.ErrValidation,
		},
		{
			name:      "anonymous",
			req:       &entity.UpdateInstanceStatusRequest{InstanceID: order.Instance.ID, Status: entity.InstanceStatusActive},
			expectErr: apierror.ErrUnauthorized,
		},
	}

	// 子测试共享同一个实例，按顺序执行
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := ts.ProvisioningService.UpdateInstanceStatus(ctx, tc.caller, tc.req)
			if tc.expectErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.req.Status, resp.Instance.Status)
		})
	}

	got, err := ts.InstanceRepo.GetByID(ctx, order.Instance.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.InstanceStatusActive), got.Status)
}
