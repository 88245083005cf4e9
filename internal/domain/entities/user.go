package entities

import "time"

// User represents user information
type User struct {
	ID       int       `gorm:"primaryKey;autoIncrement;column:id"`
	Username string    `gorm:"size:50;not null;column:username"`
	Email    string    `gorm:"size:255;not null;uniqueIndex:users_email_idx;column:email"`
	// ProcessingID is the owner identifier the blockchain-processing
	// provider knows this user by.
	ProcessingID string    `gorm:"size:100;uniqueIndex:users_processing_id_idx;column:processing_id"`
	CreateAt     time.Time `gorm:"column:create_at;default:CURRENT_TIMESTAMP;not null"`
	Block        bool      `gorm:"column:block"`
}

func (User) TableName() string {
	return "users"
}
