package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDeserializeDefaults(t *testing.T) {
	f := new(File)
	err := f.Deserialize(map[string]any{
		"name":      "notes.txt",
		"webbot_id": float64(7),
	})
	require.NoError(t, err)

	require.Equal(t, "notes.txt", f.Name)
	require.Equal(t, 7, f.WebbotID)
	require.Equal(t, StatusCreated, f.Status)
	require.Equal(t, SourceKnowledge, f.Source)
	require.True(t, f.Active)
	require.True(t, f.AllowQuestions)
	require.False(t, f.Public)
	require.Nil(t, f.SourceURL)
	require.NotNil(t, f.Labels)
	require.Empty(t, f.Labels)
	require.NotNil(t, f.ExtraInfo)
	require.Empty(t, f.ExtraInfo)
}

func TestDeserializeFullBody(t *testing.T) {
	f := new(File)
	err := f.Deserialize(map[string]any{
		"name":            "report.pdf",
		"webbot_id":       "42",
		"source":          "WEB",
		"source_url":      "https://example.com/report.pdf",
		"status":          "UPLOAD_SUCCESS",
		"active":          false,
		"allow_questions": false,
		"public":          true,
		"labels":          map[string]any{"team": "sales"},
		"extra_info":      map[string]any{"pages": float64(12)},
	})
	require.NoError(t, err)

	require.Equal(t, 42, f.WebbotID)
	require.Equal(t, SourceWeb, f.Source)
	require.NotNil(t, f.SourceURL)
	require.Equal(t, "https://example.com/report.pdf", *f.SourceURL)
	require.Equal(t, StatusUploadSuccess, f.Status)
	require.False(t, f.Active)
	require.False(t, f.AllowQuestions)
	require.True(t, f.Public)
	require.Equal(t, "sales", f.Labels["team"])
}

func TestDeserializeRejectsBadInput(t *testing.T) {
	cases := map[string]map[string]any{
		"nil body":        nil,
		"missing name":    {"webbot_id": float64(1)},
		"empty name":      {"name": "", "webbot_id": float64(1)},
		"missing owner":   {"name": "a.txt"},
		"bad owner":       {"name": "a.txt", "webbot_id": "not-a-number"},
		"bad status":      {"name": "a.txt", "webbot_id": float64(1), "status": "EXPLODED"},
		"bad source":      {"name": "a.txt", "webbot_id": float64(1), "source": "CARRIER_PIGEON"},
		"bool as string":  {"name": "a.txt", "webbot_id": float64(1), "public": "yes"},
		"labels not map":  {"name": "a.txt", "webbot_id": float64(1), "labels": "x=y"},
		"source_url int":  {"name": "a.txt", "webbot_id": float64(1), "source_url": float64(3)},
		"name not string": {"name": float64(3), "webbot_id": float64(1)},
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			err := new(File).Deserialize(body)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	url := "https://example.com/a"
	src := File{
		ID:             9,
		WebbotID:       3,
		Name:           "a.csv",
		S3Path:         "webbot/3/a.csv",
		FileType:       "text/csv",
		Source:         SourceEmail,
		SourceURL:      &url,
		CreatedDate:    time.Now().UTC(),
		ModifiedDate:   time.Now().UTC(),
		Active:         true,
		Status:         StatusUploadSuccess,
		AllowQuestions: true,
		Labels:         JSONMap{"k": "v"},
	}

	raw, err := json.Marshal(src)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))

	require.Equal(t, float64(9), wire["id"])
	require.Equal(t, float64(9), wire["file_id"])
	require.Equal(t, "webbot/3/a.csv", wire["s3_path"])
	require.NotNil(t, wire["extra_info"])

	_, err = time.Parse(time.RFC3339Nano, wire["created_date"].(string))
	require.NoError(t, err)

	var dst File
	require.NoError(t, dst.Deserialize(wire))
	require.Equal(t, src.Name, dst.Name)
	require.Equal(t, src.WebbotID, dst.WebbotID)
	require.Equal(t, src.Source, dst.Source)
	require.Equal(t, src.Status, dst.Status)
	require.Equal(t, *src.SourceURL, *dst.SourceURL)
	require.Equal(t, "v", dst.Labels["k"])
}

func TestTransitionHappyPath(t *testing.T) {
	f := &File{Status: StatusCreated}

	for _, next := range []FileStatus{
		StatusUploading, StatusUploadSuccess, StatusProcessing, StatusSuccess,
	} {
		require.NoError(t, f.TransitionTo(next))
		require.Equal(t, next, f.Status)
	}

	require.True(t, f.Status.Terminal())
}

func TestTransitionRejectsIllegalEdges(t *testing.T) {
	cases := []struct{ from, to FileStatus }{
		{StatusCreated, StatusUploadSuccess},
		{StatusCreated, StatusSuccess},
		{StatusUploading, StatusProcessing},
		{StatusUploadFailed, StatusUploadSuccess},
		{StatusProcessingFailed, StatusProcessing},
		{StatusSuccess, StatusCreated},
	}

	for _, c := range cases {
		f := &File{Status: c.from}
		err := f.TransitionTo(c.to)
		require.Error(t, err)
		require.Equal(t, c.from, f.Status)
	}
}

func TestTerminalStatuses(t *testing.T) {
	for status, terminal := range map[FileStatus]bool{
		StatusCreated:          false,
		StatusUploading:        false,
		StatusUploadSuccess:    false,
		StatusUploadFailed:     true,
		StatusProcessing:       false,
		StatusProcessingFailed: true,
		StatusSuccess:          true,
	} {
		require.Equal(t, terminal, status.Terminal(), "status %s", status)
	}
}

func TestParseEnums(t *testing.T) {
	st, err := ParseFileStatus("PROCESSING")
	require.NoError(t, err)
	require.Equal(t, StatusProcessing, st)

	_, err = ParseFileStatus("processing")
	require.ErrorIs(t, err, ErrValidation)

	src, err := ParseFileSource("OTHER")
	require.NoError(t, err)
	require.Equal(t, SourceOther, src)

	_, err = ParseFileSource("")
	require.ErrorIs(t, err, ErrValidation)
}
