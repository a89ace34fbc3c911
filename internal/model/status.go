package model

import "fmt"

// FileStatus tracks where a file is in its upload lifecycle. Records move
// along fixed paths and never leave a terminal status automatically.
type FileStatus string

const (
	StatusCreated          FileStatus = "CREATED"
	StatusUploading        FileStatus = "UPLOADING"
	StatusUploadSuccess    FileStatus = "UPLOAD_SUCCESS"
	StatusUploadFailed     FileStatus = "UPLOAD_FAILED"
	StatusProcessing       FileStatus = "PROCESSING"
	StatusProcessingFailed FileStatus = "PROCESSING_FAILED"
	StatusSuccess          FileStatus = "SUCCESS"
)

// statusTransitions holds every legal edge of the lifecycle state machine.
// UPLOAD_SUCCESS only moves forward when the analysis stage is enabled.
var statusTransitions = map[FileStatus][]FileStatus{
	StatusCreated:       {StatusUploading},
	StatusUploading:     {StatusUploadSuccess, StatusUploadFailed},
	StatusUploadSuccess: {StatusProcessing},
	StatusProcessing:    {StatusSuccess, StatusProcessingFailed},
}

func ParseFileStatus(s string) (FileStatus, error) {
	st := FileStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: invalid status %q", ErrValidation, s)
	}

	return st, nil
}

func (s FileStatus) Valid() bool {
	switch s {
	case StatusCreated, StatusUploading, StatusUploadSuccess, StatusUploadFailed,
		StatusProcessing, StatusProcessingFailed, StatusSuccess:
		return true
	}

	return false
}

// Terminal reports whether no further automatic transition exists for s.
func (s FileStatus) Terminal() bool {
	return len(statusTransitions[s]) == 0
}

func (s FileStatus) CanTransition(to FileStatus) bool {
	for _, next := range statusTransitions[s] {
		if next == to {
			return true
		}
	}

	return false
}

// FileSource classifies where a file came from
type FileSource string

const (
	SourceWeb       FileSource = "WEB"
	SourceEmail     FileSource = "EMAIL"
	SourceChat      FileSource = "CHAT"
	SourceKnowledge FileSource = "KNOWLEDGE"
	SourceOther     FileSource = "OTHER"
)

func ParseFileSource(s string) (FileSource, error) {
	src := FileSource(s)
	if !src.Valid() {
		return "", fmt.Errorf("%w: invalid source %q", ErrValidation, s)
	}

	return src, nil
}

func (s FileSource) Valid() bool {
	switch s {
	case SourceWeb, SourceEmail, SourceChat, SourceKnowledge, SourceOther:
		return true
	}

	return false
}
