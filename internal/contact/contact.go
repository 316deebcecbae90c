// Package contact defines the contact record, its ordering key, and the
// field validation rules enforced before any write.
package contact

import (
	"errors"
	"fmt"
)

// Field limits enforced by [Contact.Validate].
const (
	MaxIDLen      = 10
	MaxNameLen    = 10
	PhoneLen      = 10
	MaxAddressLen = 30
)

var (
	// ErrNotFound is returned when an operation targets an id that is not
	// in the directory.
	ErrNotFound = errors.New("contact not found")
	// ErrExists is returned when adding a contact whose id is already in
	// the directory.
	ErrExists = errors.New("contact already exists")
)

// Contact is a single directory entry. The ID is assigned by the caller and
// is immutable once stored.
type Contact struct {
	ID        string `json:"id" yaml:"id" jsonschema:"description=Unique identifier; at most 10 characters"`
	FirstName string `json:"first_name" yaml:"first_name" jsonschema:"description=Given name; at most 10 characters"`
	LastName  string `json:"last_name" yaml:"last_name" jsonschema:"description=Family name; at most 10 characters"`
	Phone     string `json:"phone" yaml:"phone" jsonschema:"description=Exactly 10 digits"`
	Address   string `json:"address" yaml:"address" jsonschema:"description=Postal address; at most 30 characters"`
}

// Clone returns an independent copy.
func (c *Contact) Clone() *Contact {
	cp := *c
	return &cp
}

// Key returns the primary identifier.
func (c *Contact) Key() string {
	return c.ID
}

// SortKey orders contacts by last name, then first name.
func (c *Contact) SortKey() string {
	return c.LastName + ", " + c.FirstName
}

// Validate checks every field against the directory's rules.
func (c *Contact) Validate() error {
	if c.ID == "" {
		return errors.New("id is required")
	}
	if len(c.ID) > MaxIDLen {
		return fmt.Errorf("id exceeds %d characters", MaxIDLen)
	}
	if c.FirstName == "" {
		return errors.New("first name is required")
	}
	if len(c.FirstName) > MaxNameLen {
		return fmt.Errorf("first name exceeds %d characters", MaxNameLen)
	}
	if c.LastName == "" {
		return errors.New("last name is required")
	}
	if len(c.LastName) > MaxNameLen {
		return fmt.Errorf("last name exceeds %d characters", MaxNameLen)
	}
	if len(c.Phone) != PhoneLen {
		return fmt.Errorf("phone must be exactly %d digits", PhoneLen)
	}
	for _, r := range c.Phone {
		if r < '0' || r > '9' {
			return errors.New("phone must contain only digits")
		}
	}
	if c.Address == "" {
		return errors.New("address is required")
	}
	if len(c.Address) > MaxAddressLen {
		return fmt.Errorf("address exceeds %d characters", MaxAddressLen)
	}
	return nil
}
