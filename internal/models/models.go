package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Identity is the credential record shared by users and admins.
type Identity struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	FirstName    string    `gorm:"not null"                 json:"firstName"`
	LastName     string    `gorm:"not null"                 json:"lastName"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	RefreshToken *string   `gorm:"type:text"                json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (i *Identity) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type User struct {
	Identity
	IsBlocked bool `gorm:"not null;default:false" json:"isBlocked"`
}

func (User) TableName() string {
	return "users"
}

type Admin struct {
	Identity
}

func (Admin) TableName() string {
	return "admins"
}

type Location struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type Transaction struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"                      json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;index;not null"                  json:"userId"`
	User             *User     `gorm:"foreignKey:UserID"                          json:"user,omitempty"`
	TransactionID    string    `gorm:"uniqueIndex;not null"                      json:"transactionId"`
	TransactionTime  time.Time `gorm:"not null"                                  json:"transactionTime"`
	CCNum            string    `gorm:"not null"                                  json:"ccNum"`
	TransactionType  string    `gorm:"not null"                                  json:"transactionType"`
	Amount           float64   `gorm:"not null"                                  json:"amount"`
	City             string    `gorm:"index;not null"                            json:"city"`
	UserLocation     Location  `gorm:"embedded;embeddedPrefix:user_"             json:"userLocation"`
	MerchantLocation Location  `gorm:"embedded;embeddedPrefix:merchant_"         json:"merchantLocation"`
	IsFraud          bool      `gorm:"index;not null;default:false"              json:"isFraud"`
	FraudReason      []string  `gorm:"serializer:json;type:text"                 json:"fraudReason"`
	FraudConfidence  *float64  `json:"fraudConfidence"`
	CreatedAt        time.Time `gorm:"index"                                     json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (Transaction) TableName() string {
	return "transactions"
}

// All lists every table the service owns, in migration order.
func All() []any {
	return []any{&User{}, &Admin{}, &Transaction{}}
}
