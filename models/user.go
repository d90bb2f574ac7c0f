package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role selects which collection and schema an account belongs to
type Role string

const (
	RoleUser      Role = "user"
	RoleDeliverer Role = "deliverer"
)

// Valid reports whether r is one of the two account roles
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleDeliverer
}

// Opposite returns the role on the other side of the marketplace
func (r Role) Opposite() Role {
	if r == RoleUser {
		return RoleDeliverer
	}
	return RoleUser
}

// Account is the capability shared by users and deliverers.
type Account interface {
	AccountID() string
	AccountName() string
	AccountRole() Role
	PasswordDigest() string
}

// NewAccount returns an empty account of the concrete type for role
func NewAccount(role Role) Account {
	if role == RoleDeliverer {
		return &Deliverer{}
	}
	return &User{}
}

// User is a customer account
type User struct {
	ID            string          `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name          string          `json:"name" gorm:"uniqueIndex;not null"`
	PasswordHash  string          `json:"-" gorm:"not null"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	Address       string          `json:"address"`
	City          string          `json:"city"`
	CreditCardNum string          `json:"creditCardNum"`
	Feedback      []FeedbackEntry `json:"feedback" gorm:"polymorphic:Owner;polymorphicValue:user"`
	SavedFood     []string        `json:"savedFood" gorm:"serializer:json"`
	OrderHistory  []Order         `json:"orderHistory" gorm:"foreignKey:UserID"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) AccountID() string      { return u.ID }
func (u *User) AccountName() string    { return u.Name }
func (u *User) AccountRole() Role      { return RoleUser }
func (u *User) PasswordDigest() string { return u.PasswordHash }

// Deliverer is an account that accepts and delivers orders
type Deliverer struct {
	ID             string          `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name           string          `json:"name" gorm:"uniqueIndex;not null"`
	PasswordHash   string          `json:"-" gorm:"not null"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
	City           string          `json:"city"`
	Transportation string          `json:"transportation"`
	CreditCardNum  string          `json:"creditCardNum"`
	Feedback       []FeedbackEntry `json:"feedback" gorm:"polymorphic:Owner;polymorphicValue:deliverer"`
	AcceptedOrders []Order         `json:"acceptedOrders" gorm:"foreignKey:DelivererID"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (d *Deliverer) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

func (d *Deliverer) AccountID() string      { return d.ID }
func (d *Deliverer) AccountName() string    { return d.Name }
func (d *Deliverer) AccountRole() Role      { return RoleDeliverer }
func (d *Deliverer) PasswordDigest() string { return d.PasswordHash }

// FeedbackEntry is an immutable rating left on an account. MadeBy is the
// rater's display name captured at write time.
type FeedbackEntry struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	OwnerID   string    `json:"-" gorm:"type:varchar(36);index;not null"`
	OwnerType string    `json:"-" gorm:"index;not null"`
	Rating    float64   `json:"rating"`
	MadeBy    string    `json:"madeBy"`
	Msg       string    `json:"msg"`
	CreatedAt time.Time `json:"-"`
}

// Identity is who a request acts as. The zero value is anonymous.
type Identity struct {
	Role      Role
	AccountID string
}

func (i Identity) IsAnonymous() bool {
	return i.AccountID == ""
}
