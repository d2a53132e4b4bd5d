package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID                 string `gorm:"primaryKey;size:50" json:"id"`
	Name               string `gorm:"size:100;not null" json:"name"`
	Username           string `gorm:"size:50;unique;not null" json:"username"`
	Email              string `gorm:"size:120;unique;not null" json:"email"`
	Password           string `gorm:"size:255;not null" json:"-"`
	Phone              string `gorm:"size:20" json:"phone"`
	Location           string `gorm:"size:100" json:"location"`
	Bio                string `json:"bio"`
	AvatarURL          string `gorm:"size:500" json:"avatarUrl"`
	UserType           string `gorm:"size:20;default:explorer" json:"userType"` // "explorer" or "organizer"
	SubscriptionStatus string `gorm:"size:20;default:none" json:"subscriptionStatus"`
	BirthDate          string `gorm:"size:10" json:"birthDate"`

	Interests   []Interest `gorm:"many2many:user_interests" json:"-"`
	SavedEvents []Event    `gorm:"many2many:favorites" json:"-"`
	Tickets     []Ticket   `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID("user")
	}
	return nil
}

// Interest is a shared profile tag; users reference it through the
// user_interests join table.
type Interest struct {
	Name string `gorm:"primaryKey;size:100" json:"name"`
}

func (Interest) TableName() string { return "interests_list" }

type RegisterRequest struct {
	Name      string `json:"name"`
	Username  string `json:"username"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	UserType  string `json:"userType"`
	BirthDate string `json:"birthDate"`
	Location  string `json:"location"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
