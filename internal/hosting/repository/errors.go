package repository

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	moderncsqlite "modernc.org/sqlite" // 同时注册 "sqlite" 驱动
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = fmt.Errorf("repository: record not found: %w", gorm.ErrRecordNotFound)
	// ErrAlreadyExists 违反唯一约束
	ErrAlreadyExists = errors.New("repository: record already exists")
)

// translateError 把驱动错误转换为仓库层错误
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
	}
	return err
}

// isUniqueViolation 判断是否违反唯一约束或主键约束
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var sqliteErr *moderncsqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	// 没有开启扩展错误码时只能拿到 SQLITE_CONSTRAINT
	return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT &&
		strings.Contains(sqliteErr.Error(), "UNIQUE")
}
