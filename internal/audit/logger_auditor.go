// filepath: internal/audit/logger_auditor.go
package audit

import (
	"context"
	"crypto/rand"
	"time"

	"scmdash/internal/logging"
	"scmdash/internal/models"
	"scmdash/internal/services"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// Ensure LoggerAuditor implements services.Auditor
var _ services.Auditor = (*LoggerAuditor)(nil)

// ActivityRecorder persists activity feed entries.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, a models.Activity) error
}

// activityVerbs maps audit actions onto the wording of the dashboard feed.
// Actions missing here are logged but not shown in the feed.
var activityVerbs = map[string]string{
	"user.create":                 "created user",
	"user.update":                 "updated user",
	"user.status":                 "changed status of user",
	"user.delete":                 "deleted user",
	"repository.create":           "created repository",
	"repository.update":           "updated repository",
	"repository.delete":           "deleted repository",
	"repository.members":          "updated members of",
	"repository.migration_status": "updated migration status of",
	"migration.create":            "created migration",
	"migration.update":            "updated migration",
	"migration.delete":            "deleted migration",
	"migration.start":             "started migration",
	"migration.pause":             "paused migration",
	"migration.complete":          "completed migration",
	"migration.retry":             "retried migration",
	"backup.create":               "initiated backup",
	"backup.complete":             "completed backup",
	"backup.retry":                "retried backup",
	"backup.delete":               "deleted backup",
	"schedule.create":             "created backup schedule",
	"schedule.update":             "updated backup schedule",
	"schedule.toggle":             "toggled backup schedule",
	"schedule.delete":             "deleted backup schedule",
}

// LoggerAuditor writes audit events to its own logrus logger and records
// the user-facing ones in the activity feed.
type LoggerAuditor struct {
	enabled  bool
	logger   *logrus.Logger
	recorder ActivityRecorder
}

// NewLoggerAuditor creates a new instance of LoggerAuditor. A nil recorder
// disables the activity feed.
func NewLoggerAuditor(level string, enabled bool, recorder ActivityRecorder) *LoggerAuditor {
	return &LoggerAuditor{
		enabled:  enabled,
		logger:   logging.NewLogger(level),
		recorder: recorder,
	}
}

// Log records an event using logrus if auditing is enabled and stores the
// matching activity entry regardless.
func (a *LoggerAuditor) Log(ctx context.Context, action string, actor string, resource string, details map[string]interface{}) {
	if a.enabled {
		fields := logrus.Fields{
			"audit_action":   action,
			"audit_actor":    actor,
			"audit_resource": resource,
		}
		for k, v := range details {
			fields["detail."+k] = v
		}
		a.logger.WithFields(fields).Info("AUDIT EVENT")
	}

	verb, ok := activityVerbs[action]
	if !ok || a.recorder == nil {
		return
	}
	now := time.Now().UTC()
	entry := models.Activity{
		ID:       ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		User:     actor,
		Action:   verb,
		Resource: resource,
		Time:     now,
	}
	// The caller's request may already be finished.
	if err := a.recorder.RecordActivity(context.WithoutCancel(ctx), entry); err != nil {
		logging.Log.Errorf("Failed to record activity '%s' for %s: %v", action, resource, err)
	}
}
