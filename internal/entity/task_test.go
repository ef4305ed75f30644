package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"Pending", StatusPending, true},
		{"pending", StatusPending, true},
		{"INPROGRESS", StatusInProgress, true},
		{"InProgress", StatusInProgress, true},
		{" completed ", StatusCompleted, true},
		{"", 0, false},
		{"in_progress", 0, false},
		{"Done", 0, false},
		{"0", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseStatus(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "Pending", StatusPending.String())
	assert.Equal(t, "InProgress", StatusInProgress.String())
	assert.Equal(t, "Completed", StatusCompleted.String())
	assert.Equal(t, "Status(7)", Status(7).String())
	assert.False(t, Status(-1).Valid())
}

func TestStatusJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		S Status `json:"s"`
	}{StatusInProgress})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"InProgress"}`, string(data))

	var decoded struct {
		S Status `json:"s"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"s":"completed"}`), &decoded))
	assert.Equal(t, StatusCompleted, decoded.S)

	assert.Error(t, json.Unmarshal([]byte(`{"s":"bogus"}`), &decoded))

	_, err = json.Marshal(Status(9))
	assert.Error(t, err)
}

func TestTaskView(t *testing.T) {
	desc := "details"
	due := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	task := Task{
		ID:          uuid.New(),
		Title:       "t",
		Description: &desc,
		DueDate:     &due,
		Status:      StatusCompleted,
	}

	view := task.View()
	assert.Equal(t, task.ID, view.ID)
	assert.Equal(t, "t", view.Title)
	assert.Equal(t, &desc, view.Description)
	assert.Equal(t, &due, view.DueDate)
	assert.Equal(t, "Completed", view.Status)
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	in := time.Date(2026, 5, 1, 1, 30, 0, 0, loc)

	assert.Equal(t, time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC), DateOf(in))
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), DateOf(time.Date(2026, 5, 1, 23, 59, 59, 0, time.UTC)))
}
