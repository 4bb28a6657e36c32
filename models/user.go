package models

import "github.com/google/uuid"

// Role names carried in JWT role claims.
const (
	RoleAdmin     = "Admin"
	RoleLibrarian = "Librarian"
	RoleReader    = "Reader"
)

var ValidRoles = []string{RoleAdmin, RoleLibrarian, RoleReader}

type Role struct {
	ID   uint   `gorm:"primaryKey" json:"-"`
	Name string `gorm:"size:32;not null;uniqueIndex" json:"name"`
}

type User struct {
	Base
	Email        string            `gorm:"size:256;not null;uniqueIndex" json:"email"`
	PasswordHash string            `gorm:"size:255;not null" json:"-"` // bcrypt hash
	FirstName    string            `gorm:"size:65;not null" json:"firstName"`
	LastName     string            `gorm:"size:65;not null" json:"lastName"`
	PhoneNumber  string            `gorm:"size:65" json:"phoneNumber"`
	AddressID    *uuid.UUID        `gorm:"type:uuid" json:"-"`
	Address      *Address          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"address,omitempty"`
	Roles        []Role            `gorm:"many2many:user_roles;" json:"roles"`
	Reservations []BookReservation `json:"-"`
	Comments     []Comment         `json:"-"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

type Address struct {
	Base
	Country        string `gorm:"size:56;not null" json:"country"`
	City           string `gorm:"size:128;not null" json:"city"`
	Street         string `gorm:"size:128;not null" json:"street"`
	StreetNumber   string `gorm:"size:65;not null" json:"streetNumber"`
	Building       string `gorm:"size:65" json:"building,omitempty"`
	Apartment      string `gorm:"size:65" json:"apartment,omitempty"`
	AdditionalInfo string `gorm:"size:1028" json:"additionalInfo,omitempty"`
}
