package nginx

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/nginxforge/nginxforge/internal/logger"
	"github.com/nginxforge/nginxforge/internal/models"
)

// Test hooks to allow overriding OS functions
var (
	writeFileFunc  = os.WriteFile
	readFileFunc   = os.ReadFile
	removeFileFunc = os.Remove
	readDirFunc    = os.ReadDir
	statFunc       = os.Stat
	mkdirAllFunc   = os.MkdirAll
)

const snapshotKeep = 10

// Manager owns the rendered configuration lifecycle: generate, write to
// disk, snapshot the previous rendering for rollback, and record an audit
// trail. Rendered files live under <configDir>/sites, snapshots under
// <configDir>/snapshots.
type Manager struct {
	db        *gorm.DB
	configDir string
}

// NewManager creates a configuration manager rooted at configDir.
func NewManager(db *gorm.DB, configDir string) *Manager {
	return &Manager{db: db, configDir: configDir}
}

// SitePath returns the rendered file path for a site file stem.
func (m *Manager) SitePath(stem string) string {
	return filepath.Join(m.configDir, "sites", stem+".conf")
}

// Deploy renders the model and writes it to the site's config file. The
// previous rendering, if any, is snapshotted first so a bad write can be
// rolled back. Models with error-severity lint findings are refused.
func (m *Manager) Deploy(siteID uint, stem string, model *ServerConfig) (string, error) {
	report := Lint(model)
	if !report.Valid {
		err := fmt.Errorf("configuration has %d lint error(s); fix them before deploying", errorCount(report))
		m.recordConfigChange(siteID, "", false, err.Error())
		return "", err
	}

	text := Generate(model).Text
	hash := fmt.Sprintf("%x", sha256.Sum256([]byte(text)))

	if err := mkdirAllFunc(filepath.Join(m.configDir, "sites"), 0o755); err != nil {
		return "", fmt.Errorf("ensure sites dir: %w", err)
	}

	target := m.SitePath(stem)
	if _, err := m.saveSnapshot(stem, target); err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}

	if err := writeFileFunc(target, []byte(text), 0o644); err != nil {
		if rollbackErr := m.Rollback(stem); rollbackErr != nil {
			m.recordConfigChange(siteID, hash, false, err.Error())
			return "", fmt.Errorf("write failed: %w, rollback also failed: %v", err, rollbackErr)
		}
		m.recordConfigChange(siteID, hash, false, err.Error())
		return "", fmt.Errorf("write failed (rolled back): %w", err)
	}

	m.recordConfigChange(siteID, hash, true, "")

	if err := m.rotateSnapshots(stem, snapshotKeep); err != nil {
		logger.Log().WithError(err).Warn("Snapshot rotation failed")
	}

	return hash, nil
}

// Remove deletes a site's rendered file. Snapshots are kept so the removal
// can be undone by hand.
func (m *Manager) Remove(stem string) error {
	err := removeFileFunc(m.SitePath(stem))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// Rollback restores the most recent snapshot of a site's rendered file.
func (m *Manager) Rollback(stem string) error {
	snapshots, err := m.listSnapshots(stem)
	if err != nil || len(snapshots) == 0 {
		return fmt.Errorf("no snapshots available for rollback")
	}

	latest := snapshots[len(snapshots)-1]
	data, err := readFileFunc(latest)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	if err := writeFileFunc(m.SitePath(stem), data, 0o644); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}

	return nil
}

// saveSnapshot copies the current rendered file, when present, into the
// snapshots directory. Returns the snapshot path, or "" on first deploy.
func (m *Manager) saveSnapshot(stem, target string) (string, error) {
	current, err := readFileFunc(target)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read current config: %w", err)
	}

	dir := filepath.Join(m.configDir, "snapshots")
	if err := mkdirAllFunc(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure snapshots dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%d.conf", stem, time.Now().UnixNano()))
	if err := writeFileFunc(path, current, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// listSnapshots returns a site's snapshot paths sorted oldest first.
func (m *Manager) listSnapshots(stem string) ([]string, error) {
	dir := filepath.Join(m.configDir, "snapshots")
	entries, err := readDirFunc(dir)
	if err != nil {
		return nil, fmt.Errorf("read snapshots dir: %w", err)
	}

	var snapshots []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, stem+"-") || filepath.Ext(name) != ".conf" {
			continue
		}
		snapshots = append(snapshots, filepath.Join(dir, name))
	}

	sort.Slice(snapshots, func(i, j int) bool {
		infoI, _ := statFunc(snapshots[i])
		infoJ, _ := statFunc(snapshots[j])
		return infoI.ModTime().Before(infoJ.ModTime())
	})

	return snapshots, nil
}

// rotateSnapshots keeps only the N most recent snapshots for a site.
func (m *Manager) rotateSnapshots(stem string, keep int) error {
	snapshots, err := m.listSnapshots(stem)
	if err != nil {
		return err
	}

	if len(snapshots) <= keep {
		return nil
	}

	for _, path := range snapshots[:len(snapshots)-keep] {
		if err := removeFileFunc(path); err != nil {
			return fmt.Errorf("delete snapshot %s: %w", path, err)
		}
	}

	return nil
}

// recordConfigChange stores an audit record in the database. Best effort;
// deploys never fail on audit bookkeeping.
func (m *Manager) recordConfigChange(siteID uint, hash string, success bool, errorMsg string) {
	if m.db == nil {
		return
	}
	m.db.Create(&models.ConfigChange{
		SiteID:     siteID,
		ConfigHash: hash,
		AppliedAt:  time.Now(),
		Success:    success,
		ErrorMsg:   errorMsg,
	})
}

func errorCount(r *Report) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}
