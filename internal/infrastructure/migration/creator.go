package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const migrationTemplate = `-- Migration: {{.Name}}{{if .Rollback}} (Rollback){{end}}
-- Created: {{.Created}}
{{- if .Description}}
-- Description: {{.Description}}
{{- end}}

`

var (
	tmplMigration = template.Must(template.New("migration").Parse(migrationTemplate))
	fileVersion   = regexp.MustCompile(`^(\d+)_.+\.(up|down)\.sql$`)
	nameCleaner   = regexp.MustCompile(`[^a-z0-9]+`)
)

// MigrationFile describes a created up/down pair
type MigrationFile struct {
	Version  uint
	Name     string
	UpPath   string
	DownPath string
}

// CreateMigration writes the next sequentially numbered up/down pair, e.g.
// 000002_add_payment_channel.up.sql
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	clean := sanitizeName(name)
	if clean == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}
	latest, err := LatestVersion(dir)
	if err != nil {
		return nil, err
	}

	mf := &MigrationFile{Version: latest + 1, Name: clean}
	base := fmt.Sprintf("%06d_%s", mf.Version, clean)
	mf.UpPath = filepath.Join(dir, base+".up.sql")
	mf.DownPath = filepath.Join(dir, base+".down.sql")

	created := time.Now().UTC().Format(time.RFC3339)
	if err := writeMigration(mf.UpPath, clean, description, created, false); err != nil {
		return nil, err
	}
	if err := writeMigration(mf.DownPath, clean, description, created, true); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

func writeMigration(path, name, description, created string, rollback bool) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return tmplMigration.Execute(f, map[string]any{
		"Name":        name,
		"Description": description,
		"Created":     created,
		"Rollback":    rollback,
	})
}

// LatestVersion returns the highest version number in dir, zero when empty
func LatestVersion(dir string) (uint, error) {
	names, err := ListMigrations(dir)
	if err != nil {
		return 0, err
	}
	var latest uint
	for _, n := range names {
		v, _ := strconv.ParseUint(strings.SplitN(n, "_", 2)[0], 10, 32)
		if uint(v) > latest {
			latest = uint(v)
		}
	}
	return latest, nil
}

// ListMigrations returns the base names of the migrations in dir, sorted
func ListMigrations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}
	seen := make(map[string]bool)
	names := make([]string, 0)
	for _, e := range entries {
		if e.IsDir() || !fileVersion.MatchString(e.Name()) {
			continue
		}
		base := strings.TrimSuffix(strings.TrimSuffix(e.Name(), ".up.sql"), ".down.sql")
		if !seen[base] {
			seen[base] = true
			names = append(names, base)
		}
	}
	return names, nil
}

// sanitizeName lowercases name and joins its words with underscores
func sanitizeName(name string) string {
	return strings.Trim(nameCleaner.ReplaceAllString(strings.ToLower(name), "_"), "_")
}
