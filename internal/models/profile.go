package models

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile holds the contact fields released to the counter-party when a
// deal is created. Consumed read-only by the negotiation engine.
type UserProfile struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	AddressLine1 string    `json:"address_line1"`
	AddressLine2 string    `json:"address_line2"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Country      string    `json:"country"`
	PinCode      string    `json:"pin_code"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ContactPayload is the disclosure returned to both parties on accept. When
// no profile exists it degrades to display name + account email only.
type ContactPayload struct {
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
	PinCode      string `json:"pin_code"`
}

func (p *UserProfile) Contact() ContactPayload {
	return ContactPayload{
		FullName:     p.FullName,
		Email:        p.Email,
		Phone:        p.Phone,
		AddressLine1: p.AddressLine1,
		AddressLine2: p.AddressLine2,
		City:         p.City,
		State:        p.State,
		Country:      p.Country,
		PinCode:      p.PinCode,
	}
}
