// Package idgen 提供递增 ID 生成器
//
// 使用 Sonyflake 算法生成全局唯一且时间有序的 64 位 ID，
// 在此基础上加上资源前缀：
//   - 用户 ID: u-{递增数字}
//   - 实例 ID: srv-{递增数字}
//
// 使用方式：
//
//	// 包级别的便捷函数，使用默认生成器
//	userID, err := idgen.GenerateUserID()
//
//	// 或者持有自己的生成器
//	gen := idgen.New()
//	instanceID, err := gen.GenerateInstanceID()
package idgen
