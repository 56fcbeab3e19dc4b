package pterodactyl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout 单次 API 调用的默认超时
	DefaultTimeout = 15 * time.Second

	applicationPrefix = "/api/application"

	// 错误响应体最多读取 1MB
	maxErrorBody = 1 << 20
)

// Config Pterodactyl 客户端配置
type Config struct {
	BaseURL    string         // 面板地址，例如 https://panel.example.com
	APIKey     string         // Application API key
	Timeout    time.Duration  // 单次调用超时，为 0 时使用 DefaultTimeout
	Defaults   ServerDefaults // 创建服务器时使用的 egg/nest/location/allocation
	HTTPClient *http.Client   // 为空时使用 http.DefaultClient
}

// Client Pterodactyl Application API 客户端
type Client struct {
	baseURL    *url.URL
	apiKey     string
	timeout    time.Duration
	defaults   ServerDefaults
	httpClient *http.Client
}

// New 创建新的 Pterodactyl 客户端
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("pterodactyl: base url is required")
	}
	baseURL, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("pterodactyl: parse base url: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("pterodactyl: invalid base url %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		timeout:    timeout,
		defaults:   cfg.Defaults,
		httpClient: httpClient,
	}, nil
}

// FindUserByExternalID 按 external_id 查找面板用户
// 面板的 filter 是模糊匹配，只接受 external_id 完全相等的结果；不存在时返回 nil, nil
func (c *Client) FindUserByExternalID(ctx context.Context, externalID string) (*User, error) {
	query := url.Values{}
	query.Set("filter[external_id]", externalID)

	var resp list[User]
	if err := c.do(ctx, http.MethodGet, "/users", query, nil, &resp); err != nil {
		return nil, err
	}
	for _, item := range resp.Data {
		if item.Attributes.ExternalID == externalID {
			user := item.Attributes
			return &user, nil
		}
	}
	return nil, nil
}

// CreateUser 创建面板用户
// FirstName/LastName 为空时使用 "Hosting" / "User"
func (c *Client) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	body := createUserBody{
		Email:      req.Email,
		Username:   req.Username,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		ExternalID: req.ExternalID,
	}
	if body.FirstName == "" {
		body.FirstName = "Hosting"
	}
	if body.LastName == "" {
		body.LastName = "User"
	}

	var resp object[User]
	if err := c.do(ctx, http.MethodPost, "/users", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp.Attributes, nil
}

// EnsureUserForExternalID 保证面板中存在 external_id 对应的用户
// 已存在时直接返回，不存在时用邮箱 @ 之前的部分作为用户名创建
func (c *Client) EnsureUserForExternalID(ctx context.Context, externalID, email string) (*User, error) {
	user, err := c.FindUserByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	zerolog.Ctx(ctx).Info().
		Str("external_id", externalID).
		Msg("Creating panel user")

	return c.CreateUser(ctx, &CreateUserRequest{
		Email:      email,
		Username:   UsernameFromEmail(email),
		ExternalID: externalID,
	})
}

// CreateServer 创建服务器
// 每次调用都会在面板中创建一台新的服务器
func (c *Client) CreateServer(ctx context.Context, req *CreateServerRequest) (*Server, error) {
	body := createServerBody{
		ExternalID:  req.ExternalID,
		Name:        req.Name,
		Description: req.Description,
		User:        req.UserID,
		Egg:         c.defaults.EggID,
		Nest:        c.defaults.NestID,
		DockerImage: c.defaults.DockerImage,
		Startup:     c.defaults.Startup,
		Environment: c.defaults.Environment,
		Limits: limitsBody{
			Memory: req.Limits.MemoryMB,
			Swap:   0,
			Disk:   req.Limits.DiskMB,
			IO:     500,
			CPU:    req.Limits.CPUPercent,
		},
		FeatureLimits: featureLimitsBody{
			Databases:   0,
			Allocations: 1,
			Backups:     3,
		},
		Allocation: allocationBody{Default: c.defaults.AllocationID},
		Deploy: deployBody{
			Locations:   []int{c.defaults.LocationID},
			DedicatedIP: false,
			PortRange:   []string{},
		},
		StartOnCompletion: true,
		SkipScripts:       false,
	}

	var resp object[Server]
	if err := c.do(ctx, http.MethodPost, "/servers", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp.Attributes, nil
}

// do 发送请求并解析响应
// 网络错误和超时包装为 ErrUnavailable，非 2xx 响应返回 *APIError
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL.JoinPath(applicationPrefix, path)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("pterodactyl: marshal %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("pterodactyl: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pterodactyl: %s %s: %w: %w", method, path, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	zerolog.Ctx(ctx).Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Pterodactyl API call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
		}
		var payload struct {
			Errors []ErrorDetail `json:"errors"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Errors = payload.Errors
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("pterodactyl: read %s %s: %w: %w", method, path, ErrUnavailable, ctx.Err())
		}
		return fmt.Errorf("pterodactyl: decode %s %s: %w", method, path, err)
	}
	return nil
}

// UsernameFromEmail 取邮箱 @ 之前的部分作为面板用户名
func UsernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
