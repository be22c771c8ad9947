package storage

import (
	"errors"

	"github.com/fuzeworks/fuzeworks/pkg/types"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("not found")

// Store defines the interface for FuzeWorks state storage
type Store interface {
	// Modules
	SaveModule(record *types.ModuleRecord) error
	GetModule(name string) (*types.ModuleRecord, error)
	ListModules() ([]*types.ModuleRecord, error)
	DeleteModule(name string) error

	// Event register (event name -> module names)
	SaveRegister(register map[string][]string) error
	LoadRegister() (map[string][]string, error)

	// Utility
	Close() error
}
