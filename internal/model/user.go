package model

import (
	"time"

	"github.com/google/uuid"
)

// User 使用者模型
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	City         string    `json:"city" db:"city"`
	Bio          string    `json:"bio" db:"bio"`
	Hobbies      []string  `json:"hobbies" db:"hobbies"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UserSummary 對外顯示用的使用者資訊，不含密碼等敏感欄位
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	City  string    `json:"city"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, City: u.City}
}

type UpdateUserParams struct {
	Name    *string
	City    *string
	Bio     *string
	Hobbies *[]string
}

func (p UpdateUserParams) IsEmpty() bool {
	return p.Name == nil && p.City == nil && p.Bio == nil && p.Hobbies == nil
}

// AuthResponse 註冊 / 登入回應
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
