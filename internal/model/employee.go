package model

// Employee is loaded for completeness; no view reads it.
type Employee struct {
	ID         int64  `json:"employee_id"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`
}

func (Employee) TableName() string { return "employees" }
