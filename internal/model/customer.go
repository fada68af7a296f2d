package model

import "time"

// StateCode is a two-letter US state abbreviation as found in the source files.
type StateCode string

// Customer is a registered shopper. BirthDate may be missing in the source.
type Customer struct {
	ID               int64      `json:"customer_id"`
	FirstName        string     `json:"first_name,omitempty"`
	LastName         string     `json:"last_name,omitempty"`
	Email            string     `json:"email,omitempty"`
	City             string     `json:"city,omitempty"`
	State            StateCode  `json:"state"`
	RegistrationDate time.Time  `json:"registration_date"`
	BirthDate        *time.Time `json:"birth_date,omitempty"`
}

func (Customer) TableName() string { return "customers" }
