// Package entity 定义业务实体以及请求/响应结构
//
// 请求参数通过 binding 标签校验（go-playground/validator），字段名取 json 标签
package entity

import "strings"

// NormalizeEmail 去掉首尾空白并转为小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
