package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// MigrationFile represents a migration file pair
type MigrationFile struct {
	Version  string
	Name     string
	UpPath   string
	DownPath string
}

// CreateMigration creates a new up/down migration pair in migrationsDir.
// The version prefix is the creation timestamp (YYYYMMDDHHMMSS) so pairs
// sort in creation order.
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	return CreateMigrationAt(migrationsDir, name, description, time.Now())
}

// CreateMigrationAt is CreateMigration with an explicit creation time.
// Scaffolding every dialect directory with the same time keeps their version
// prefixes in lockstep.
func CreateMigrationAt(migrationsDir, name, description string, now time.Time) (*MigrationFile, error) {
	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	version := now.Format("20060102150405")
	base := fmt.Sprintf("%s_%s", version, sanitizeName(name))

	mf := &MigrationFile{
		Version:  version,
		Name:     name,
		UpPath:   filepath.Join(migrationsDir, base+".up.sql"),
		DownPath: filepath.Join(migrationsDir, base+".down.sql"),
	}

	up := migrationHeader(name, description, now, false)
	if err := os.WriteFile(mf.UpPath, []byte(up), 0o644); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}

	down := migrationHeader(name, description, now, true)
	if err := os.WriteFile(mf.DownPath, []byte(down), 0o644); err != nil {
		// Do not leave a dangling up file behind
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}

	return mf, nil
}

func migrationHeader(name, description string, createdAt time.Time, rollback bool) string {
	var b strings.Builder

	if rollback {
		fmt.Fprintf(&b, "-- Migration: %s (Rollback)\n", name)
	} else {
		fmt.Fprintf(&b, "-- Migration: %s\n", name)
	}
	fmt.Fprintf(&b, "-- Created: %s\n", createdAt.Format(time.RFC3339))
	if description != "" {
		if rollback {
			fmt.Fprintf(&b, "-- Description: Rollback for %s\n", description)
		} else {
			fmt.Fprintf(&b, "-- Description: %s\n", description)
		}
	}

	if rollback {
		b.WriteString("\n-- Write your DOWN migration SQL here\n\n")
	} else {
		b.WriteString("\n-- Write your UP migration SQL here\n\n")
	}

	return b.String()
}

// sanitizeName converts a migration name to a safe file name format
func sanitizeName(name string) string {
	result := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			result = append(result, c)
		case c >= 'A' && c <= 'Z':
			result = append(result, c+('a'-'A'))
		case c == ' ' || c == '-' || c == '_':
			if n := len(result); n > 0 && result[n-1] != '_' {
				result = append(result, '_')
			}
		}
	}
	if n := len(result); n > 0 && result[n-1] == '_' {
		result = result[:n-1]
	}
	return string(result)
}

// ListMigrations returns the migration base names found in a directory,
// sorted by version
func ListMigrations(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	migrations := make([]string, 0)
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		base := strings.TrimSuffix(entry.Name(), ".up.sql")
		if !seen[base] {
			seen[base] = true
			migrations = append(migrations, base)
		}
	}

	sort.Strings(migrations)
	return migrations, nil
}
