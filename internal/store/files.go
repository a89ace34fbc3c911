// Package store owns durable CRUD over file records
package store

import (
	"errors"
	"fmt"
	"time"

	"webbot/file-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned for lookups of unknown record IDs.
	// The HTTP layer maps it to a 404
	ErrNotFound = errors.New("file not found")

	ErrEmptyID = errors.New("update called with empty ID field")
)

// FileStore wraps a gorm handle. It's constructed explicitly and passed to
// the orchestrator and router so tests can run against their own instance.
type FileStore struct {
	db *gorm.DB
}

func NewFileStore(db *gorm.DB) *FileStore {
	return &FileStore{db: db}
}

// Create assigns a fresh ID and stamps both timestamps. Defaults that gorm
// can't express for zero values (active, status, source) are applied here so
// records created outside the HTTP path still end up valid.
func (s *FileStore) Create(f *model.File) error {
	if f.Name == "" {
		return fmt.Errorf("%w: missing name", model.ErrValidation)
	}

	if f.Status == "" {
		f.Status = model.StatusCreated
	}
	if !f.Status.Valid() {
		return fmt.Errorf("%w: invalid status %q", model.ErrValidation, f.Status)
	}

	if f.Source == "" {
		f.Source = model.SourceKnowledge
	}
	if !f.Source.Valid() {
		return fmt.Errorf("%w: invalid source %q", model.ErrValidation, f.Source)
	}

	// ID must be zero to generate the next primary key
	f.ID = 0
	now := time.Now().UTC()
	f.CreatedDate = now
	f.ModifiedDate = now

	if err := s.db.Create(f).Error; err != nil {
		return fmt.Errorf("failed to create file record, %w", err)
	}

	zap.L().Debug("Created file record", zap.Uint("id", f.ID), zap.String("name", f.Name))
	return nil
}

// Update persists every current field value and refreshes the modified
// timestamp. The record must have been created before.
func (s *FileStore) Update(f *model.File) error {
	if f.ID == 0 {
		return fmt.Errorf("%w, %w", model.ErrValidation, ErrEmptyID)
	}

	if !f.Status.Valid() {
		return fmt.Errorf("%w: invalid status %q", model.ErrValidation, f.Status)
	}

	f.ModifiedDate = time.Now().UTC()

	// Save writes all fields including zero values, which an update must do
	// (clearing a flag is a legal edit)
	if err := s.db.Save(f).Error; err != nil {
		return fmt.Errorf("failed to update file record %d, %w", f.ID, err)
	}

	return nil
}

// SoftDelete flips the active flag instead of removing the row. Calling it
// again on an already inactive record is a no-op that still succeeds.
func (s *FileStore) SoftDelete(f *model.File) error {
	f.Active = false
	return s.Update(f)
}

func (s *FileStore) FindByID(id uint) (*model.File, error) {
	var f model.File

	err := s.db.First(&f, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}

		return nil, fmt.Errorf("failed to fetch file record %d, %w", id, err)
	}

	return &f, nil
}

// All returns every active record in stable ID order.
func (s *FileStore) All() ([]model.File, error) {
	var files []model.File

	err := s.db.
		Where("active = ?", true).
		Order("id").
		Find(&files).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list file records, %w", err)
	}

	return files, nil
}

func (s *FileStore) FindByWebbotID(webbotID int) ([]model.File, error) {
	return s.Filter(Criteria{WebbotID: &webbotID})
}

func (s *FileStore) FindByName(name string) ([]model.File, error) {
	return s.Filter(Criteria{Name: &name})
}

func (s *FileStore) FindByStatus(status model.FileStatus) ([]model.File, error) {
	return s.Filter(Criteria{Status: &status})
}

// Criteria is an equality filter over the queryable record fields. Nil
// fields are ignored. Active defaults to true unless set explicitly, so
// soft-deleted records only show up when a caller asks for them.
type Criteria struct {
	WebbotID *int
	Name     *string
	Status   *model.FileStatus
	Source   *model.FileSource
	Public   *bool
	Active   *bool
}

func (s *FileStore) Filter(c Criteria) ([]model.File, error) {
	q := s.db.Order("id")

	if c.WebbotID != nil {
		q = q.Where("webbot_id = ?", *c.WebbotID)
	}
	if c.Name != nil {
		q = q.Where("name = ?", *c.Name)
	}
	if c.Status != nil {
		q = q.Where("status = ?", *c.Status)
	}
	if c.Source != nil {
		q = q.Where("source = ?", *c.Source)
	}
	if c.Public != nil {
		q = q.Where("public = ?", *c.Public)
	}

	if c.Active != nil {
		q = q.Where("active = ?", *c.Active)
	} else {
		q = q.Where("active = ?", true)
	}

	var files []model.File
	if err := q.Find(&files).Error; err != nil {
		return nil, fmt.Errorf("failed to filter file records, %w", err)
	}

	return files, nil
}
