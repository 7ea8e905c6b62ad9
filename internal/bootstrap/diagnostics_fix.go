package bootstrap

import (
	"fmt"
	"os"
	"strings"

	"media-grabber/internal/config"
	"media-grabber/internal/domain"
)

// FixDiagnostic applies a remediation for one failed diagnostic item and
// returns the refreshed report. Only directory problems can be fixed here;
// missing tools must be bundled or installed by the user.
func (a *App) FixDiagnostic(itemID string) (domain.DiagnosticReport, error) {
	id := strings.TrimSpace(itemID)
	if id == "" {
		return domain.DiagnosticReport{}, fmt.Errorf("diagnostic item id is required")
	}

	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}

	var (
		changed bool
		fixErr  error
	)
	switch id {
	case "download_dir":
		settings.DownloadDir, changed, fixErr = fixDirectory(settings.DownloadDir, config.DefaultSettings().DownloadDir)
	case "temp_dir":
		settings.TempDir, changed, fixErr = fixDirectory(settings.TempDir, config.DefaultSettings().TempDir)
	default:
		return a.GetDiagnostics(), fmt.Errorf("no automatic fix for diagnostic item: %s", id)
	}

	if changed {
		if saveErr := a.Store.Save(settings); saveErr != nil {
			return a.apply(settings), fmt.Errorf("save settings after fix: %w", saveErr)
		}
	}

	report := a.apply(settings)
	if fixErr != nil {
		return report, fixErr
	}
	return report, nil
}

// fixDirectory creates dir, substituting fallback when dir is blank.
func fixDirectory(dir, fallback string) (string, bool, error) {
	dir = strings.TrimSpace(dir)
	changed := false
	if dir == "" {
		dir = fallback
		changed = true
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return dir, changed, fmt.Errorf("create directory %s: %w", dir, err)
	}
	return dir, changed, nil
}
