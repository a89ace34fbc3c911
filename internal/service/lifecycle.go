// Package service contains the file lifecycle orchestration
package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"webbot/file-api/internal/model"
	"webbot/file-api/internal/store"

	"github.com/gabriel-vasile/mimetype"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

// ObjectStore is the remote blob storage contract. Implementations swallow
// transport errors into the boolean and log the cause themselves.
type ObjectStore interface {
	// Put pushes a local file under prefix + its base name
	Put(ctx context.Context, localPath, prefix string) bool
	// Get fetches a remote key into localPath, creating parent directories
	Get(ctx context.Context, key, localPath string) bool
	// List returns the keys under a prefix, used diagnostically
	List(ctx context.Context, prefix string) []string
}

// Lifecycle drives file records through their status state machine as they
// are staged locally, pushed to the object store and optionally analyzed.
// A nil Analyzer disables the processing stage.
type Lifecycle struct {
	Store    *store.FileStore
	Objects  ObjectStore
	Analyzer DocumentAnalyzer

	StagingPath   string
	DownloadsPath string
	KeyPrefix     string
}

// UploadResult is the per-file projection returned from an upload batch.
type UploadResult struct {
	FileID     uint             `json:"file_id"`
	Filename   string           `json:"filename"`
	Status     model.FileStatus `json:"status"`
	Tables     []uint           `json:"tables"`
	TextFileID *uint            `json:"text_file_id"`
	TableCount int              `json:"table_count"`
}

type BatchResult struct {
	FileCount int            `json:"file_count"`
	Results   []UploadResult `json:"results"`
	Message   string         `json:"message"`
}

// UploadBatch uploads each file independently. One file failing never
// aborts the rest of the batch, the failure just shows in its result.
func (l *Lifecycle) UploadBatch(ctx context.Context, webbotID int, files []*multipart.FileHeader) *BatchResult {
	res := &BatchResult{
		FileCount: len(files),
		Results:   make([]UploadResult, 0, len(files)),
		Message:   "Upload Success",
	}

	for _, fh := range files {
		res.Results = append(res.Results, l.uploadOne(ctx, webbotID, fh))
	}

	return res
}

func (l *Lifecycle) uploadOne(ctx context.Context, webbotID int, fh *multipart.FileHeader) (result UploadResult) {
	rec := &model.File{
		WebbotID:       webbotID,
		Name:           fh.Filename,
		Status:         model.StatusCreated,
		Source:         model.SourceKnowledge,
		Active:         true,
		AllowQuestions: true,
		Labels:         model.JSONMap{},
		ExtraInfo:      model.JSONMap{},
	}

	var tableIDs []uint
	var textID *uint

	// Nothing past this function may see an error or a panic from a single
	// file. Whatever happened, the batch gets a result for it.
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("Recovered panic during file upload",
				zap.String("name", fh.Filename),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			l.markFailed(rec)
		}

		if tableIDs == nil {
			tableIDs = []uint{}
		}

		result = UploadResult{
			FileID:     rec.ID,
			Filename:   rec.Name,
			Status:     rec.Status,
			Tables:     tableIDs,
			TextFileID: textID,
			TableCount: len(tableIDs),
		}
	}()

	if err := l.Store.Create(rec); err != nil {
		zap.L().Error("Failed to create file record", zap.String("name", fh.Filename), zap.Error(err))
		return
	}

	// Second observable write, callers polling the record may see either
	rec.TransitionTo(model.StatusUploading)
	if err := l.Store.Update(rec); err != nil {
		zap.L().Error("Failed to persist UPLOADING status", zap.Uint("id", rec.ID), zap.Error(err))
		l.markFailed(rec)
		return
	}

	stagingDir, staged, err := l.stage(webbotID, fh)
	if err != nil {
		zap.L().Error("Failed to stage file", zap.Uint("id", rec.ID), zap.Error(err))
		l.markFailed(rec)
		return
	}

	if mt, err := mimetype.DetectFile(staged); err == nil {
		rec.FileType = mt.String()
	}

	prefix := l.keyPrefix(webbotID)

	if !l.Objects.Put(ctx, staged, prefix) {
		zap.L().Error("Failed to push file to object store",
			zap.Uint("id", rec.ID),
			zap.String("prefix", prefix),
		)
		l.markFailed(rec)
		return
	}

	rec.S3Path = prefix + filepath.Base(staged)
	rec.TransitionTo(model.StatusUploadSuccess)
	if err := l.Store.Update(rec); err != nil {
		zap.L().Error("Failed to persist UPLOAD_SUCCESS status", zap.Uint("id", rec.ID), zap.Error(err))
		return
	}

	zap.L().Info("File uploaded", zap.Uint("id", rec.ID), zap.String("s3_path", rec.S3Path))

	if l.Analyzer != nil {
		tableIDs, textID = l.process(ctx, rec, staged, stagingDir, prefix)
	}

	return
}

// process runs the pluggable analysis stage. Derived artifacts are each
// independent, pushing one failing never rolls back the parent.
func (l *Lifecycle) process(ctx context.Context, rec *model.File, staged, stagingDir, prefix string) (tableIDs []uint, textID *uint) {
	if err := rec.TransitionTo(model.StatusProcessing); err != nil {
		zap.L().Error("Cannot enter processing stage", zap.Uint("id", rec.ID), zap.Error(err))
		return
	}
	if err := l.Store.Update(rec); err != nil {
		zap.L().Error("Failed to persist PROCESSING status", zap.Uint("id", rec.ID), zap.Error(err))
		return
	}

	text, tables, err := l.Analyzer.Analyze(ctx, staged)
	if err != nil {
		zap.L().Error("Document analysis failed", zap.Uint("id", rec.ID), zap.Error(err))

		rec.TransitionTo(model.StatusProcessingFailed)
		if err := l.Store.Update(rec); err != nil {
			zap.L().Error("Failed to persist PROCESSING_FAILED status", zap.Uint("id", rec.ID), zap.Error(err))
		}
		return
	}

	for i, table := range tables {
		name := fmt.Sprintf("file_%d_table_%d.csv", rec.ID, i+1)
		local := filepath.Join(stagingDir, name)

		if err := writeTable(local, table); err != nil {
			zap.L().Error("Failed to write derived table", zap.String("name", name), zap.Error(err))
			continue
		}

		if id, ok := l.pushDerived(ctx, rec.WebbotID, local, prefix, "text/csv"); ok {
			tableIDs = append(tableIDs, id)
		}
	}

	if text != "" {
		name := fmt.Sprintf("file_%d_text.txt", rec.ID)
		local := filepath.Join(stagingDir, name)

		if err := os.WriteFile(local, []byte(text), 0o644); err != nil {
			zap.L().Error("Failed to write derived text", zap.String("name", name), zap.Error(err))
		} else if id, ok := l.pushDerived(ctx, rec.WebbotID, local, prefix, "text/plain"); ok {
			textID = &id
		}
	}

	rec.TransitionTo(model.StatusSuccess)
	if err := l.Store.Update(rec); err != nil {
		zap.L().Error("Failed to persist SUCCESS status", zap.Uint("id", rec.ID), zap.Error(err))
	}

	return
}

// pushDerived uploads one derived artifact and records it as its own file.
func (l *Lifecycle) pushDerived(ctx context.Context, webbotID int, local, prefix, fileType string) (uint, bool) {
	if !l.Objects.Put(ctx, local, prefix) {
		zap.L().Error("Failed to push derived artifact", zap.String("path", local))
		return 0, false
	}

	name := filepath.Base(local)
	derived := &model.File{
		WebbotID:       webbotID,
		Name:           name,
		S3Path:         prefix + name,
		FileType:       fileType,
		Status:         model.StatusUploadSuccess,
		Source:         model.SourceKnowledge,
		Active:         true,
		AllowQuestions: true,
		Labels:         model.JSONMap{},
		ExtraInfo:      model.JSONMap{},
	}

	if err := l.Store.Create(derived); err != nil {
		zap.L().Error("Failed to create derived file record", zap.String("name", name), zap.Error(err))
		return 0, false
	}

	return derived.ID, true
}

// stage copies the incoming stream into a unique per-attempt directory so
// concurrent uploads of identically named files can't overwrite each other.
func (l *Lifecycle) stage(webbotID int, fh *multipart.FileHeader) (dir, staged string, err error) {
	attempt, err := gonanoid.New(10)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate attempt ID, %w", err)
	}

	dir = filepath.Join(l.StagingPath, strconv.Itoa(webbotID), attempt)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create staging directory, %w", err)
	}

	// Keep only the final path segment of whatever name the client sent
	staged = filepath.Join(dir, path.Base(filepath.ToSlash(fh.Filename)))

	src, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open multipart file, %w", err)
	}
	defer src.Close()

	dst, err := os.Create(staged)
	if err != nil {
		return "", "", fmt.Errorf("failed to create staged file, %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", "", fmt.Errorf("failed to write staged file, %w", err)
	}

	return dir, staged, nil
}

// markFailed parks the record in the failure status reachable from wherever
// it currently is. Records that never got persisted are left alone.
func (l *Lifecycle) markFailed(rec *model.File) {
	if rec.ID == 0 {
		return
	}

	switch {
	case rec.Status.CanTransition(model.StatusUploadFailed):
		rec.Status = model.StatusUploadFailed
	case rec.Status.CanTransition(model.StatusProcessingFailed):
		rec.Status = model.StatusProcessingFailed
	default:
		return
	}

	if err := l.Store.Update(rec); err != nil {
		zap.L().Error("Failed to persist failure status", zap.Uint("id", rec.ID), zap.Error(err))
	}
}

func (l *Lifecycle) keyPrefix(webbotID int) string {
	return fmt.Sprintf("%s/%d/", strings.TrimSuffix(l.KeyPrefix, "/"), webbotID)
}

func writeTable(local string, table Table) error {
	f, err := os.Create(local)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.WriteAll(table); err != nil {
		return err
	}

	return w.Error()
}
