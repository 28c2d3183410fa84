package account

import "time"

const (
	EventAccountRegistered   = "AccountRegistered"
	EventPasswordChanged     = "PasswordChanged"
	EventAccountDeactivated  = "AccountDeactivated"
)

type AccountRegistered struct {
	AccountID    string    `json:"account_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	RegisteredAt time.Time `json:"registered_at"`
}

type PasswordChanged struct {
	AccountID    string    `json:"account_id"`
	PasswordHash string    `json:"password_hash"`
	ChangedAt    time.Time `json:"changed_at"`
}

type AccountDeactivated struct {
	AccountID     string    `json:"account_id"`
	DeactivatedAt time.Time `json:"deactivated_at"`
}
