package store

import (
	"path/filepath"
	"testing"

	"webbot/file-api/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "files.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.File{}))

	return NewFileStore(db)
}

func seed(t *testing.T, s *FileStore, webbotID int, name string) *model.File {
	t.Helper()

	f := &model.File{
		Name:           name,
		WebbotID:       webbotID,
		Active:         true,
		AllowQuestions: true,
	}
	require.NoError(t, s.Create(f))

	return f
}

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	s := newTestStore(t)

	f := seed(t, s, 5, "a.txt")
	require.NotZero(t, f.ID)
	require.False(t, f.CreatedDate.IsZero())
	require.Equal(t, f.CreatedDate, f.ModifiedDate)
	require.Equal(t, model.StatusCreated, f.Status)
	require.Equal(t, model.SourceKnowledge, f.Source)

	// client-supplied IDs are never trusted
	g := &model.File{ID: 999, Name: "b.txt", WebbotID: 5, Active: true}
	require.NoError(t, s.Create(g))
	require.NotEqual(t, uint(999), g.ID)
}

func TestCreateValidates(t *testing.T) {
	s := newTestStore(t)

	err := s.Create(&model.File{WebbotID: 1})
	require.ErrorIs(t, err, model.ErrValidation)

	err = s.Create(&model.File{Name: "a.txt", WebbotID: 1, Status: "BOGUS"})
	require.ErrorIs(t, err, model.ErrValidation)

	err = s.Create(&model.File{Name: "a.txt", WebbotID: 1, Source: "BOGUS"})
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestUpdate(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s, 5, "a.txt")

	f.Name = "renamed.txt"
	f.Public = true
	require.NoError(t, s.Update(f))

	got, err := s.FindByID(f.ID)
	require.NoError(t, err)
	require.Equal(t, "renamed.txt", got.Name)
	require.True(t, got.Public)
	require.False(t, got.ModifiedDate.Before(got.CreatedDate))
}

func TestUpdateRejectsEmptyID(t *testing.T) {
	s := newTestStore(t)

	err := s.Update(&model.File{Name: "a.txt", Status: model.StatusCreated})
	require.ErrorIs(t, err, model.ErrValidation)
	require.ErrorIs(t, err, ErrEmptyID)
}

func TestSoftDeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s, 5, "a.txt")

	require.NoError(t, s.SoftDelete(f))
	require.NoError(t, s.SoftDelete(f))

	// still reachable by ID, just flagged inactive
	got, err := s.FindByID(f.ID)
	require.NoError(t, err)
	require.False(t, got.Active)

	files, err := s.All()
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestFindByIDUnknown(t *testing.T) {
	s := newTestStore(t)

	_, err := s.FindByID(12345)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFindersSkipInactiveByDefault(t *testing.T) {
	s := newTestStore(t)
	a := seed(t, s, 5, "a.txt")
	seed(t, s, 5, "b.txt")
	seed(t, s, 6, "c.txt")
	require.NoError(t, s.SoftDelete(a))

	files, err := s.FindByWebbotID(5)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "b.txt", files[0].Name)

	files, err = s.FindByName("a.txt")
	require.NoError(t, err)
	require.Empty(t, files)

	files, err = s.FindByStatus(model.StatusCreated)
	require.NoError(t, err)
	require.Len(t, files, 2)

	files, err = s.All()
	require.NoError(t, err)
	require.Len(t, files, 2)
}

func TestFilterActiveOverride(t *testing.T) {
	s := newTestStore(t)
	a := seed(t, s, 5, "a.txt")
	seed(t, s, 5, "b.txt")
	require.NoError(t, s.SoftDelete(a))

	inactive := false
	files, err := s.Filter(Criteria{Active: &inactive})
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, a.ID, files[0].ID)
}

func TestFilterCombinesCriteria(t *testing.T) {
	s := newTestStore(t)

	a := seed(t, s, 5, "a.txt")
	a.Public = true
	require.NoError(t, s.Update(a))

	b := seed(t, s, 5, "b.txt")
	require.NoError(t, b.TransitionTo(model.StatusUploading))
	require.NoError(t, s.Update(b))

	seed(t, s, 6, "c.txt")

	webbotID := 5
	public := true
	files, err := s.Filter(Criteria{WebbotID: &webbotID, Public: &public})
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, a.ID, files[0].ID)

	status := model.StatusUploading
	files, err = s.Filter(Criteria{Status: &status})
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, b.ID, files[0].ID)

	files, err = s.Filter(Criteria{WebbotID: &webbotID})
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.Equal(t, []uint{a.ID, b.ID}, []uint{files[0].ID, files[1].ID})
}

func TestJSONColumnsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	f := &model.File{
		Name:     "a.txt",
		WebbotID: 5,
		Active:   true,
		Labels:   model.JSONMap{"team": "sales"},
		ExtraInfo: model.JSONMap{
			"pages": float64(3),
		},
	}
	require.NoError(t, s.Create(f))

	got, err := s.FindByID(f.ID)
	require.NoError(t, err)
	require.Equal(t, "sales", got.Labels["team"])
	require.Equal(t, float64(3), got.ExtraInfo["pages"])
}
