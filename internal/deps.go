package internal

import (
	"webbot/file-api/internal/service"
	"webbot/file-api/internal/store"
)

// Deps carries the explicitly constructed dependencies handlers work
// against. Tests build their own instance around fakes.
type Deps struct {
	Store     *store.FileStore
	Lifecycle *service.Lifecycle
}
