package dto

import "time"

// AccountAddedEvent is published after an email account is stored for a
// user. Credentials never travel on the bus.
type AccountAddedEvent struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

// FaceRegisteredEvent is published after a face encoding is enrolled.
type FaceRegisteredEvent struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Overwrite bool      `json:"overwrite"`
	CreatedAt time.Time `json:"createdAt"`
}

// EmailSentEvent is published after an outbound message is accepted by the
// SMTP server.
type EmailSentEvent struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	FromAddress string    `json:"fromAddress"`
	ToAddress   string    `json:"toAddress"`
	Subject     string    `json:"subject"`
	CreatedAt   time.Time `json:"createdAt"`
}
