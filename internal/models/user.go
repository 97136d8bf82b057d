package models

import "github.com/shopspring/decimal"

// User represents a badge holder record in DB.
type User struct {
	ID        int64           `json:"id"`
	FullName  string          `json:"full_name"`
	RFIDUID   string          `json:"rfid_uid"`
	IsPresent bool            `json:"is_present"`
	PINCode   string          `json:"-"`
	Balance   decimal.Decimal `json:"balance"`
}

// UserDTO is the minimal user shape returned to the scanning device.
type UserDTO struct {
	ID        int64  `json:"id"`
	FullName  string `json:"full_name"`
	IsPresent bool   `json:"is_present"`
}

// DTO strips the user down to what the attendance reply carries.
func (u User) DTO() UserDTO {
	return UserDTO{ID: u.ID, FullName: u.FullName, IsPresent: u.IsPresent}
}
