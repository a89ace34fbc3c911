// Package model defines database models
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrValidation marks malformed or missing input on create/update/deserialize.
// Handlers map it to a 400 response.
var ErrValidation = errors.New("invalid file")

type File struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	WebbotID int    `gorm:"not null;index"`
	Name     string `gorm:"not null"`

	// Key of the object in the bucket, empty until the upload finished
	S3Path   string
	FileType string

	Source    FileSource
	SourceURL *string

	CreatedDate  time.Time
	ModifiedDate time.Time

	// Soft delete flag. Inactive rows stay in the table and are still
	// reachable by ID, they just drop out of default listings
	Active bool

	Status         FileStatus
	AllowQuestions bool
	Public         bool

	Labels    JSONMap `gorm:"type:jsonb"`
	ExtraInfo JSONMap `gorm:"type:jsonb"`
}

// TransitionTo moves the record along the lifecycle state machine. Illegal
// edges (including anything out of a terminal status) are rejected so a
// failed or finished record can't silently flip back.
func (f *File) TransitionTo(next FileStatus) error {
	if !f.Status.CanTransition(next) {
		return fmt.Errorf("illegal status transition %s -> %s", f.Status, next)
	}

	f.Status = next
	return nil
}

// MarshalJSON writes the wire shape of a record. file_id duplicates id for
// client convenience and timestamps go out as ISO-8601
func (f File) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"id":              f.ID,
		"name":            f.Name,
		"labels":          orEmpty(f.Labels),
		"webbot_id":       f.WebbotID,
		"s3_path":         f.S3Path,
		"file_type":       f.FileType,
		"created_date":    f.CreatedDate.UTC().Format(time.RFC3339Nano),
		"modified_date":   f.ModifiedDate.UTC().Format(time.RFC3339Nano),
		"active":          f.Active,
		"status":          f.Status,
		"allow_questions": f.AllowQuestions,
		"extra_info":      orEmpty(f.ExtraInfo),
		"source":          f.Source,
		"source_url":      f.SourceURL,
		"public":          f.Public,
		"file_id":         f.ID,
	})
}

// Deserialize fills the record from an untrusted request body. Required
// fields must be present, enum fields are validated against their closed
// sets and every optional field falls back to its default.
func (f *File) Deserialize(data map[string]any) error {
	if data == nil {
		return fmt.Errorf("%w: body of request contained bad or no data", ErrValidation)
	}

	name, ok := data["name"].(string)
	if !ok || name == "" {
		return fmt.Errorf("%w: missing name", ErrValidation)
	}
	f.Name = name

	rawID, ok := data["webbot_id"]
	if !ok {
		return fmt.Errorf("%w: missing webbot_id", ErrValidation)
	}

	webbotID, err := coerceInt(rawID)
	if err != nil {
		return fmt.Errorf("%w: webbot_id %v is not a number", ErrValidation, rawID)
	}
	f.WebbotID = webbotID

	if f.S3Path, err = optString(data, "s3_path", ""); err != nil {
		return err
	}

	if f.FileType, err = optString(data, "file_type", ""); err != nil {
		return err
	}

	src, err := optString(data, "source", string(SourceKnowledge))
	if err != nil {
		return err
	}
	if f.Source, err = ParseFileSource(src); err != nil {
		return err
	}

	st, err := optString(data, "status", string(StatusCreated))
	if err != nil {
		return err
	}
	if f.Status, err = ParseFileStatus(st); err != nil {
		return err
	}

	if f.Active, err = optBool(data, "active", true); err != nil {
		return err
	}

	if f.AllowQuestions, err = optBool(data, "allow_questions", true); err != nil {
		return err
	}

	if f.Public, err = optBool(data, "public", false); err != nil {
		return err
	}

	if f.Labels, err = optMap(data, "labels"); err != nil {
		return err
	}

	if f.ExtraInfo, err = optMap(data, "extra_info"); err != nil {
		return err
	}

	f.SourceURL = nil
	if raw, ok := data["source_url"]; ok && raw != nil {
		u, ok := raw.(string)
		if !ok {
			return fmt.Errorf("%w: source_url must be a string", ErrValidation)
		}

		f.SourceURL = &u
	}

	return nil
}

func orEmpty(m JSONMap) JSONMap {
	if m == nil {
		return JSONMap{}
	}

	return m
}

// coerceInt accepts the shapes an owner ID arrives in. JSON numbers decode
// as float64 and some clients send them as strings
func coerceInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	case string:
		return strconv.Atoi(n)
	}

	return 0, fmt.Errorf("cannot coerce %T to int", v)
}

func optString(data map[string]any, key, def string) (string, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return def, nil
	}

	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrValidation, key)
	}

	return s, nil
}

func optBool(data map[string]any, key string, def bool) (bool, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return def, nil
	}

	b, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s must be a boolean", ErrValidation, key)
	}

	return b, nil
}

func optMap(data map[string]any, key string) (JSONMap, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return JSONMap{}, nil
	}

	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be an object", ErrValidation, key)
	}

	return JSONMap(m), nil
}
