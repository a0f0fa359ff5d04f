package dto

import "time"

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	GroupID  *string `json:"group_id"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NotificationResponse mirrors a notification record.
type NotificationResponse struct {
	ID                string    `json:"id"`
	Message           string    `json:"message"`
	Type              string    `json:"type"`
	RelatedEntityType *string   `json:"related_entity_type"`
	RelatedEntityID   *string   `json:"related_entity_id"`
	Read              bool      `json:"read"`
	SentAt            time.Time `json:"sent_at"`
}
