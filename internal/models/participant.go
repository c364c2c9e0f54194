package models

// Participant represents a person sharing the bill.
type Participant struct {
	// ID is unique within the bill's participant collection.
	ID int

	// Name is the display name. Never empty.
	Name string
}
