package models

import "time"

// RoleAdmin — единственная роль, которую знает сервис.
const RoleAdmin = "admin"

// Session описывает единственную активную сессию администратора.
// ID попадает в JWT как jti, что позволяет отозвать токен выходом из системы.
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Active сообщает, действует ли сессия на момент now.
func (s Session) Active(now time.Time) bool {
	return s.ID != "" && now.Before(s.ExpiresAt)
}

// Admin — учётная запись администратора в хранилище.
type Admin struct {
	Email        string // Электронная почта
	PasswordHash string // bcrypt-хэш пароля
	CreatedAt    time.Time
}
