// Package directory implements the contact directory service: validation,
// duplicate policy, and structured logging on top of the memdb store.
//
// The service owns policy the store deliberately does not: Add rejects ids
// already present, Update rejects ids not yet present, and every record is
// validated before it reaches the store.
package directory

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"rolodex/internal/contact"
	"rolodex/internal/memdb"
)

// Service coordinates validation and storage for contacts.
type Service struct {
	store *memdb.Store[*contact.Contact]
	log   *slog.Logger
}

// New creates a service backed by store. A nil logger falls back to
// [slog.Default].
func New(store *memdb.Store[*contact.Contact], logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, log: logger}
}

// Add validates c and stores it. Adding an id already in the directory
// fails with [contact.ErrExists].
func (s *Service) Add(c *contact.Contact) error {
	if c == nil {
		return errors.New("contact is required")
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid contact: %w", err)
	}
	if s.store.Exists(c.ID) {
		return fmt.Errorf("add %s: %w", c.ID, contact.ErrExists)
	}
	if err := s.store.Put(c); err != nil {
		return err
	}
	s.log.Info("contact added", "id", c.ID)
	return nil
}

// Update validates c and replaces the stored record with the same id.
// Updating an id not in the directory fails with [contact.ErrNotFound].
func (s *Service) Update(c *contact.Contact) error {
	if c == nil {
		return errors.New("contact is required")
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid contact: %w", err)
	}
	if !s.store.Exists(c.ID) {
		return fmt.Errorf("update %s: %w", c.ID, contact.ErrNotFound)
	}
	if err := s.store.Put(c); err != nil {
		return err
	}
	s.log.Info("contact updated", "id", c.ID)
	return nil
}

// Get returns the contact stored under id, or [contact.ErrNotFound].
func (s *Service) Get(id string) (*contact.Contact, error) {
	if id == "" {
		return nil, errors.New("id is required")
	}
	c, ok := s.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("get %s: %w", id, contact.ErrNotFound)
	}
	return c, nil
}

// Remove deletes the contact stored under id, reporting whether anything
// was deleted. Removing an absent id is not an error.
func (s *Service) Remove(id string) (bool, error) {
	if id == "" {
		return false, errors.New("id is required")
	}
	deleted := s.store.Delete(id)
	if deleted {
		s.log.Info("contact removed", "id", id)
	} else {
		s.log.Debug("contact not found for removal", "id", id)
	}
	return deleted, nil
}

// List returns all contacts in no particular order.
func (s *Service) List() []*contact.Contact {
	return slices.Collect(s.store.All())
}

// ListSorted returns all contacts ordered by last name, then first name.
func (s *Service) ListSorted() []*contact.Contact {
	return slices.Collect(s.store.AllSorted())
}

// ListRange returns the contacts whose name key falls between start and
// end, both inclusive. A bare last name as the upper bound includes every
// first name under it.
func (s *Service) ListRange(start, end string) ([]*contact.Contact, error) {
	if start == "" || end == "" {
		return nil, errors.New("both range bounds are required")
	}
	return slices.Collect(s.store.Range(start, end)), nil
}

// Exists reports whether id is in the directory.
func (s *Service) Exists(id string) bool {
	return s.store.Exists(id)
}

// Count returns the number of contacts in the directory.
func (s *Service) Count() int {
	return s.store.Len()
}

// Clear removes every contact. Intended for test isolation.
func (s *Service) Clear() {
	s.store.Clear()
	s.log.Info("directory cleared")
}

// CacheStats reports recency cache occupancy as "entries/capacity".
func (s *Service) CacheStats() string {
	return s.store.CacheStats()
}
