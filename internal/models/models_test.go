package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDModelBeforeCreate(t *testing.T) {
	t.Run("assigns an id", func(t *testing.T) {
		m := &UUIDModel{}
		require.NoError(t, m.BeforeCreate(nil))
		_, err := uuid.Parse(m.ID)
		assert.NoError(t, err)
	})

	t.Run("keeps a caller supplied id", func(t *testing.T) {
		m := &UUIDModel{ID: "fixed"}
		require.NoError(t, m.BeforeCreate(nil))
		assert.Equal(t, "fixed", m.ID)
	})
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "user_recordings", UserRecording{}.TableName())
	assert.Equal(t, "audio_files", AudioFile{}.TableName())
}

func TestAllListsParentsFirst(t *testing.T) {
	all := All()
	require.Len(t, all, 5)

	index := func(target any) int {
		for i, m := range all {
			if assert.ObjectsAreEqual(m, target) {
				return i
			}
		}
		return -1
	}
	assert.Less(t, index(&Lesson{}), index(&Sentence{}))
	assert.Less(t, index(&Sentence{}), index(&UserRecording{}))
	assert.NotEqual(t, -1, index(&Job{}))
	assert.NotEqual(t, -1, index(&AudioFile{}))
}

func TestModelJSON(t *testing.T) {
	start, end := 0, 1200
	sentence := Sentence{
		UUIDModel:   UUIDModel{ID: "s1"},
		LessonID:    "l1",
		ForeignText: "Hello.",
		StartMs:     &start,
		EndMs:       &end,
		Recordings:  []UserRecording{{AudioPath: "/data/r.webm"}},
	}

	encoded, err := json.Marshal(sentence)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(encoded, &fields))
	assert.Equal(t, "s1", fields["id"])
	assert.Equal(t, "l1", fields["lessonId"])
	assert.EqualValues(t, 1200, fields["endMs"])
	assert.Nil(t, fields["clipPath"])
	assert.NotContains(t, fields, "recordings")

	encoded, err = json.Marshal(Lesson{Title: "No sentences"})
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), `"sentences"`)
}
