package entity_test

import (
	"errors"
	"testing"

	"github.com/jimyag/hosting/internal/hosting/entity"
	"github.com/jimyag/hosting/pkg/apierror"
	"github.com/jimyag/hosting/pkg/ginx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOrder() entity.OrderServerRequest {
	return entity.OrderServerRequest{
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

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var apiErr *apierror.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apierror.ErrValidation.Code, apiErr.Code)
	names := make([]string, 0, len(apiErr.Fields))
	for _, f := range apiErr.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestOrderServerRequest_Validate(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name         string
		mutate       func(r *entity.OrderServerRequest)
		expectFields []string
	}{
		{
			name:   "valid",
			mutate: func(r *entity.OrderServerRequest) {},
		},
		{
			name:   "memory at lower bound",
			mutate: func(r *entity.OrderServerRequest) { r.ResourceSpec.MemoryMB = 512 },
		},
		{
			name:         "memory below lower bound",
			mutate:       func(r *entity.OrderServerRequest) { r.ResourceSpec.MemoryMB = 511 },
			expectFields: []string{"resourceSpec.memoryMb"},
		},
		{
			name:         "disk below lower bound",
			mutate:       func(r *entity.OrderServerRequest) { r.ResourceSpec.DiskMB = 1023 },
			expectFields: []string{"resourceSpec.diskMb"},
		},
		{
			name:         "cpu below lower bound",
			mutate:       func(r *entity.OrderServerRequest) { r.ResourceSpec.CPUPercent = 9 },
			expectFields: []string{"resourceSpec.cpuPercent"},
		},
		{
			name:         "invalid email",
			mutate:       func(r *entity.OrderServerRequest) { r.Email = "not-an-email" },
			expectFields: []string{"email"},
		},
		{
			name:   "credential omitted",
			mutate: func(r *entity.OrderServerRequest) { r.Credential = "" },
		},
		{
			name:         "short credential",
			mutate:       func(r *entity.OrderServerRequest) { r.Credential = "12345" },
			expectFields: []string{"credential"},
		},
		{
			name: "short name and kind",
			mutate: func(r *entity.OrderServerRequest) {
				r.Name = "ab"
				r.Kind = "a"
			},
			expectFields: []string{"name", "kind"},
		},
		{
			name:   "empty body",
			mutate: func(r *entity.OrderServerRequest) { *r = entity.OrderServerRequest{} },
			expectFields: []string{
				"email", "name", "kind",
				"resourceSpec.memoryMb", "resourceSpec.diskMb", "resourceSpec.cpuPercent",
			},
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := validOrder()
			tc.mutate(&req)

			err := ginx.Validate(&req)
			if len(tc.expectFields) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.expectFields, fieldNames(t, err))
		})
	}
}

func TestRegisterRequest_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ginx.Validate(&entity.RegisterRequest{Email: "a@x.com", Password: "secret1"}))

	err := ginx.Validate(&entity.RegisterRequest{Email: "a@x.com", Password: "short"})
	require.Error(t, err)
	assert.Equal(t, []string{"password"}, fieldNames(t, err))

	err = ginx.Validate(&entity.RegisterRequest{Email: "", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, []string{"email"}, fieldNames(t, err))
}

func TestLoginRequest_Validate(t *testing.T) {
	t.Parallel()

	// 登录不校验密码长度
	assert.NoError(t, ginx.Validate(&entity.LoginRequest{Email: "a@x.com", Password: "abc"}))

	err := ginx.Validate(&entity.LoginRequest{Email: "a@x.com"})
	require.Error(t, err)
	assert.Equal(t, []string{"password"}, fieldNames(t, err))
}

func TestUpdateInstanceStatusRequest_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ginx.Validate(&entity.UpdateInstanceStatusRequest{InstanceID: "srv-1", Status: entity.InstanceStatusActive}))

	err := ginx.Validate(&entity.UpdateInstanceStatusRequest{InstanceID: "srv-1", Status: "RUNNING"})
	require.Error(t, err)
	assert.Equal(t, []string{"status"}, fieldNames(t, err))

	var apiErr *apierror.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "must be one of PROVISIONING, ACTIVE, ERROR", apiErr.Fields[0].Message)

	err = ginx.Validate(&entity.UpdateInstanceStatusRequest{})
	require.Error(t, err)
	assert.Equal(t, []string{"instanceID", "status"}, fieldNames(t, err))
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "a@x.com", entity.NormalizeEmail("  A@X.com "))
}
