// filepath: internal/console/backups.go
package console

import (
	"context"
	"math"
	"strings"
	"time"

	"scmdash/internal/listview"
	"scmdash/internal/models"
)

// AllocatedStorageGB is the capacity storage usage is measured against.
const AllocatedStorageGB = 40.0

// BackupStats summarizes the backups page.
type BackupStats struct {
	Total               int
	Completed           int
	InProgress          int
	Failed              int
	TotalStorageGB      float64
	LastFullBackupDate  string
	StorageUsagePercent int
	CompletionRate      int
	// FromServer is false when the statistics endpoint failed and the
	// numbers were reduced from the list instead.
	FromServer bool
}

var BackupTypes = []string{listview.All, models.BackupFull, models.BackupDelta}

// BackupsPage is the backup runs list.
type BackupsPage struct {
	*listview.Controller[models.Backup, BackupStats]
	backend Backend
	now     func() time.Time
}

func NewBackupsPage(b Backend) *BackupsPage {
	p := &BackupsPage{backend: b, now: time.Now}
	p.Controller = listview.New(listview.Config[models.Backup, BackupStats]{
		Name:     "backups",
		PageSize: 5,
		Rules: listview.Rules[models.Backup]{
			Tabs: []listview.Tab[models.Backup]{{Key: "all", Label: "All Backups"}},
			Filters: []listview.FilterDef[models.Backup]{
				listview.Equals("type", "Type", func(b models.Backup) string { return b.Type }),
				listview.Equals("status", "Status", func(b models.Backup) string { return b.Status }),
				{Key: "dateRange", Label: "Date Range", Match: func(b models.Backup, v string) bool {
					start, ok := listview.DateRangeStart(v, p.now())
					return !ok || !b.Date.Before(start)
				}},
			},
			Searchable: func(b models.Backup) []string {
				return []string{b.BackupID, b.InitiatedBy, b.Repos}
			},
		},
		ID: backupID,
		Fetch: func(ctx context.Context) ([]models.Backup, error) {
			return b.ListBackups(ctx, models.BackupFilter{})
		},
		Sides: []listview.SideFetch{
			{Name: SideStatistics, Fetch: func(ctx context.Context) (any, error) {
				return b.BackupStatistics(ctx)
			}},
			fetchRepositories(b),
		},
		Stats:    backupStats,
		Describe: describe,
	})
	return p
}

func backupStats(list []models.Backup, sides listview.Sides) BackupStats {
	var s BackupStats
	if server := listview.SideAs[*models.BackupStatistics](sides, SideStatistics); server != nil {
		s = BackupStats{
			Total:              server.TotalBackups,
			Completed:          server.CompletedBackups,
			InProgress:         server.InProgressBackups,
			Failed:             server.FailedBackups,
			TotalStorageGB:     server.TotalStorageGB,
			LastFullBackupDate: server.LastFullBackupDate,
			FromServer:         true,
		}
	} else {
		s = reduceBackups(list)
	}
	s.StorageUsagePercent = min(int(math.Round(s.TotalStorageGB/AllocatedStorageGB*100)), 100)
	s.CompletionRate = listview.Rate(s.Completed, s.Total)
	return s
}

func reduceBackups(list []models.Backup) BackupStats {
	s := BackupStats{Total: len(list)}
	var lastFull time.Time
	for _, b := range list {
		switch b.Status {
		case models.BackupComplete:
			s.Completed++
			if b.Type == models.BackupFull && b.Date.After(lastFull) {
				lastFull = b.Date
			}
		case models.BackupInProgress:
			s.InProgress++
		case models.BackupFailed:
			s.Failed++
		}
		s.TotalStorageGB += SizeGB(b.Size)
	}
	s.TotalStorageGB = math.Round(s.TotalStorageGB*10) / 10
	if !lastFull.IsZero() {
		s.LastFullBackupDate = lastFull.Format("2006-01-02 15:04")
	}
	return s
}

// SizeGB converts a display size such as "12.4 GB" or "850 MB" to gigabytes.
// Unparseable sizes count as zero.
func SizeGB(size string) float64 {
	v, ok := listview.ParseLeadingFloat(size)
	if !ok || math.IsInf(v, 0) {
		return 0
	}
	upper := strings.ToUpper(size)
	switch {
	case strings.Contains(upper, "TB"):
		return v * 1024
	case strings.Contains(upper, "MB"):
		return v / 1024
	case strings.Contains(upper, "KB"):
		return v / (1024 * 1024)
	}
	return v
}

// Repositories returns the repositories a backup may cover.
func (p *BackupsPage) Repositories() []models.Repository {
	return listview.SideAs[[]models.Repository](p.Sides(), SideRepositories)
}

// Create starts a backup. An empty repositoryIDs covers every repository.
func (p *BackupsPage) Create(ctx context.Context, payload models.BackupPayload, repositoryIDs []int64) (models.Backup, error) {
	return p.Mutate(ctx, listview.Mutation[models.Backup]{
		Op:          listview.OpCreate,
		Fallback:    "Failed to create backup",
		ReloadSides: true,
		Call: func(ctx context.Context) (models.Backup, error) {
			return echo(p.backend.CreateBackup(ctx, payload, repositoryIDs))
		},
	})
}

func (p *BackupsPage) Delete(ctx context.Context, id int64) error {
	_, err := p.Mutate(ctx, listview.Mutation[models.Backup]{
		Op:          listview.OpDelete,
		ID:          id,
		Fallback:    "Failed to delete backup",
		ReloadSides: true,
		Call: func(ctx context.Context) (models.Backup, error) {
			return models.Backup{}, p.backend.DeleteBackup(ctx, id)
		},
	})
	return err
}

func (p *BackupsPage) Retry(ctx context.Context, id int64) (models.Backup, error) {
	return p.Mutate(ctx, listview.Mutation[models.Backup]{
		Op:          listview.OpUpdate,
		Fallback:    "Failed to retry backup",
		ReloadSides: true,
		Call: func(ctx context.Context) (models.Backup, error) {
			return echo(p.backend.RetryBackup(ctx, id))
		},
	})
}
