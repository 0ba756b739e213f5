package models

import (
	"time"

	"github.com/google/uuid"
)

// User описывает учётную запись пользователя площадки.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// BusinessProfile хранит данные компании-заказчика.
type BusinessProfile struct {
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	CompanyName string    `db:"company_name" json:"company_name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Website     *string   `db:"website" json:"website,omitempty"`
	Location    *string   `db:"location" json:"location,omitempty"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// FreelancerProfile хранит данные исполнителя.
type FreelancerProfile struct {
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Headline    *string   `db:"headline" json:"headline,omitempty"`
	Bio         *string   `db:"bio" json:"bio,omitempty"`
	HourlyRate  *float64  `db:"hourly_rate" json:"hourly_rate,omitempty"`
	Location    *string   `db:"location" json:"location,omitempty"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Actor описывает аутентифицированного пользователя, действующего в запросе.
// Передаётся в сервисы явно, чтобы бизнес-логика не зависела от HTTP контекста.
type Actor struct {
	UserID  uuid.UUID
	Role    string
	IsAdmin bool
}
