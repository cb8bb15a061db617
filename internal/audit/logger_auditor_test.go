package audit

import (
	"context"
	"errors"
	"testing"

	"scmdash/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	entries []models.Activity
	err     error
}

func (f *fakeRecorder) RecordActivity(_ context.Context, a models.Activity) error {
	f.entries = append(f.entries, a)
	return f.err
}

func TestLoggerAuditor_RecordsActivity(t *testing.T) {
	rec := &fakeRecorder{}
	a := NewLoggerAuditor("error", true, rec)

	a.Log(context.Background(), "repository.create", "admin", "project-alpha", map[string]interface{}{"members": 2})

	require.Len(t, rec.entries, 1)
	e := rec.entries[0]
	assert.Equal(t, "admin", e.User)
	assert.Equal(t, "created repository", e.Action)
	assert.Equal(t, "project-alpha", e.Resource)
	assert.Len(t, e.ID, 26)
	assert.False(t, e.Time.IsZero())
}

func TestLoggerAuditor_SkipsUnmappedActions(t *testing.T) {
	rec := &fakeRecorder{}
	a := NewLoggerAuditor("error", false, rec)

	a.Log(context.Background(), "account.create", "admin", "operator", nil)
	assert.Empty(t, rec.entries)
}

func TestLoggerAuditor_RecorderErrorIsSwallowed(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	a := NewLoggerAuditor("error", true, rec)

	assert.NotPanics(t, func() {
		a.Log(context.Background(), "backup.create", "admin", "BKP-2043", nil)
	})
	assert.Len(t, rec.entries, 1)
}

func TestLoggerAuditor_NilRecorder(t *testing.T) {
	a := NewLoggerAuditor("error", true, nil)
	assert.NotPanics(t, func() {
		a.Log(context.Background(), "user.delete", "admin", "jdoe", nil)
	})
}
