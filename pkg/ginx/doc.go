// Package ginx 提供 gin 框架的 handler 适配器，支持自动参数绑定和响应处理
//
// 支持的 handler 函数签名：
//
//	// 有参数，有返回值，有 error
//	func(c *gin.Context, args *Args) (resp, error)
//
//	// 无参数，有返回值，有 error
//	func(c *gin.Context) (resp, error)
//
//	// 无参数，只有返回值
//	func(c *gin.Context) resp
//
// 参数绑定：POST/PUT/PATCH 按 JSON body 解析，其他请求从 URI 和 Query 参数绑定。
// 绑定时按 binding 标签校验（go-playground/validator），字段名取 json 标签，
// 例如 `binding:"gte=512"` 失败时报告 resourceSpec.memoryMb。
// 参数类型实现了 IsValid() error 时，绑定后还会调用它，失败直接返回错误响应。
// HTTP 之外的调用方用 Validate 做同样的校验。
//
// 响应：默认 200，响应实现了 StatusCoder 时使用其状态码；nil 响应返回 204。
// 错误按 apierror 的 HTTPStatus 渲染，非 apierror 的错误一律按 500 处理。
//
// 使用示例：
//
//	router := gin.New()
//	router.Use(ginx.RequestID())
//
//	router.POST("/servers/order", ginx.Adapt5(func(c *gin.Context, args *OrderArgs) (*OrderResult, error) {
//	    return &OrderResult{...}, nil
//	}))
//
//	router.GET("/health", ginx.Adapt2(func(c *gin.Context) gin.H {
//	    return gin.H{"status": "ok"}
//	}))
package ginx
