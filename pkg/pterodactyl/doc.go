// Package pterodactyl 封装 Pterodactyl 面板的 Application API
//
// 只暴露游戏服开通需要的能力：
//   - 按 external_id 查找面板用户
//   - 创建面板用户
//   - EnsureUserForExternalID：查找不到时再创建，重复调用收敛到同一个面板用户
//   - 创建服务器（每次调用都会创建新的服务器，不是幂等的）
//
// 每次 API 调用都有独立的超时。错误分为两类，可以用 errors.Is 判断：
//   - ErrUnavailable: 网络错误、超时、429 或 5xx
//   - ErrRejected: 面板返回的 4xx（参数校验失败、配额不足等），细节在 *APIError 中
//
// 使用示例：
//
//	client, err := pterodactyl.New(pterodactyl.Config{
//	    BaseURL: "https://panel.example.com",
//	    APIKey:  "ptla_xxx",
//	    Timeout: 15 * time.Second,
//	})
//	user, err := client.EnsureUserForExternalID(ctx, "u-123", "alice@example.com")
//	server, err := client.CreateServer(ctx, &pterodactyl.CreateServerRequest{...})
package pterodactyl
