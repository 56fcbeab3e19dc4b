package model

import "time"

// User 用户表
type User struct {
	ID           string    `gorm:"primaryKey;type:text;column:id" json:"id"`                                  // u-{id}
	Email        string    `gorm:"type:text;not null;uniqueIndex:idx_users_email;column:email" json:"email"` // 规范化后的邮箱，唯一
	PasswordHash string    `gorm:"type:text;not null;column:password_hash" json:"-"`                         // bcrypt 哈希
	CreatedAt    time.Time `gorm:"type:datetime;not null;column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"type:datetime;not null;column:updated_at" json:"updated_at"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
