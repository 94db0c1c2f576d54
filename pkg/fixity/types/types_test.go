package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRecord_JSONShape(t *testing.T) {
	rec := FileRecord{
		Digest:       "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		LastModified: 1700000000.25,
		RecordedAt:   time.Date(2024, 6, 15, 10, 30, 0, 123456000, time.Local),
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.Len(t, parsed, 3)
	assert.Equal(t, rec.Digest, parsed["hash"])
	assert.Equal(t, 1700000000.25, parsed["last_modified"])
	assert.Equal(t, "2024-06-15T10:30:00.123456", parsed["timestamp"])
}

func TestFileRecord_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "naive microsecond timestamp",
			input: `{"hash":"ab","last_modified":1.5,"timestamp":"2024-01-02T03:04:05.000006"}`,
			want:  time.Date(2024, 1, 2, 3, 4, 5, 6000, time.Local),
		},
		{
			name:  "rfc3339 timestamp",
			input: `{"hash":"ab","last_modified":1.5,"timestamp":"2024-01-02T03:04:05Z"}`,
			want:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		{
			name:  "second precision",
			input: `{"hash":"ab","last_modified":1.5,"timestamp":"2024-01-02T03:04:05"}`,
			want:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local),
		},
		{
			name:    "missing hash",
			input:   `{"last_modified":1.5,"timestamp":"2024-01-02T03:04:05"}`,
			wantErr: true,
		},
		{
			name:    "garbage timestamp",
			input:   `{"hash":"ab","last_modified":1.5,"timestamp":"yesterday"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec FileRecord
			err := json.Unmarshal([]byte(tt.input), &rec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ab", rec.Digest)
			assert.Equal(t, 1.5, rec.LastModified)
			assert.True(t, tt.want.Equal(rec.RecordedAt), "RecordedAt = %v, want %v", rec.RecordedAt, tt.want)
		})
	}
}

func TestModTimeSeconds(t *testing.T) {
	ts := time.Unix(1700000000, 500000000)
	secs := ModTimeSeconds(ts)
	assert.Equal(t, 1700000000.5, secs)
}

func TestSnapshot_PathsAndClone(t *testing.T) {
	s := Snapshot{
		"b.txt": {Digest: "2"},
		"a.txt": {Digest: "1"},
	}

	assert.Equal(t, []string{"a.txt", "b.txt"}, s.Paths())

	c := s.Clone()
	c["c.txt"] = FileRecord{Digest: "3"}
	assert.Len(t, s, 2)
	assert.Len(t, c, 3)
}

func TestChangeReport_Finalize(t *testing.T) {
	t.Run("empty report matches", func(t *testing.T) {
		r := &ChangeReport{}
		r.Finalize()
		assert.True(t, r.Matches)
		assert.Equal(t, 0, r.Changes())
	})

	t.Run("sorts and flags changes", func(t *testing.T) {
		r := &ChangeReport{
			Added:    []string{"z", "a"},
			Deleted:  []string{"y", "b"},
			Modified: []Modification{{Path: "m2"}, {Path: "m1"}},
			Skipped:  []SkippedFile{{Path: "s"}},
		}
		r.Finalize()
		assert.False(t, r.Matches)
		assert.Equal(t, []string{"a", "z"}, r.Added)
		assert.Equal(t, []string{"b", "y"}, r.Deleted)
		assert.Equal(t, "m1", r.Modified[0].Path)
		assert.Equal(t, 6, r.Changes())
	})

	t.Run("skipped files alone still match", func(t *testing.T) {
		r := &ChangeReport{Skipped: []SkippedFile{{Path: "locked", Error: "permission denied"}}}
		r.Finalize()
		assert.True(t, r.Matches)
	})
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatSize(0))
	assert.Equal(t, "1.0 KiB", FormatSize(1024))
	assert.Equal(t, "0 B", FormatSize(-5))
}
