package models

import (
	"time"
)

const (
	RoomStatusOpen   = "open"
	RoomStatusClosed = "closed"
)

const (
	PaymentTypeBankTransfer = "bank_transfer"
	PaymentTypeEWallet      = "e_wallet"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"unique;not null"          json:"email"`
	FullName     string    `gorm:"not null"                 json:"full_name"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}

type Room struct {
	ID         string     `gorm:"primaryKey;size:36"    json:"id"`
	Title      string     `gorm:"not null"              json:"title"`
	Restaurant string     `gorm:"not null"              json:"restaurant"`
	Platform   string     `gorm:"not null"              json:"platform"`
	OrderTime  *time.Time `json:"order_time"`
	FinalTotal *float64   `json:"final_total"`
	Status     string     `gorm:"not null;default:open" json:"status"`
	RunnerID   uint       `gorm:"index;not null"        json:"runner_id"`
	CreatedAt  time.Time  `gorm:"index"                 json:"created_at"`
}

type RoomParticipant struct {
	ID       string     `gorm:"primaryKey;size:36"                          json:"id"`
	RoomID   string     `gorm:"size:36;not null;uniqueIndex:uniq_room_user" json:"room_id"`
	UserID   uint       `gorm:"not null;uniqueIndex:uniq_room_user"         json:"user_id"`
	PaidAt   *time.Time `json:"paid_at"`
	PaidVia  *string    `gorm:"size:36" json:"paid_via"`
	JoinedAt time.Time  `json:"joined_at"`
}

type OrderItem struct {
	ID            string    `gorm:"primaryKey;size:36"         json:"id"`
	ParticipantID string    `gorm:"size:36;index;not null"     json:"participant_id"`
	Name          string    `gorm:"not null"                   json:"name"`
	Quantity      uint      `gorm:"default:1;check:quantity>0" json:"quantity"`
	UnitPrice     float64   `gorm:"not null"                   json:"unit_price"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}

type PaymentMethod struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	UserID       uint      `gorm:"index;not null"     json:"user_id"`
	Type         string    `gorm:"not null"           json:"type"`
	Label        string    `gorm:"not null"           json:"label"`
	AccountEnc   []byte    `gorm:"not null"           json:"-"`
	AccountLast4 string    `gorm:"size:4"             json:"account_last4"`
	CreatedAt    time.Time `json:"created_at"`
}

type Notification struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Type      string    `gorm:"not null"                 json:"type"`
	Title     string    `gorm:"not null"                 json:"title"`
	Message   string    `gorm:"not null"                 json:"message"`
	CreatedAt time.Time `gorm:"index"                    json:"created_at"`
}
