package migrate

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMigration(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

const validSQL = "-- +goose Up\nCREATE TABLE t (id int);\n-- +goose Down\nDROP TABLE t;\n"

func TestValidateDirAcceptsWellFormedMigrations(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "00001_oltp_schema.sql", validSQL)
	writeMigration(t, dir, "00002_add_index.sql", validSQL)

	if err := ValidateDir(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "schema.sql", validSQL)

	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected error for unversioned filename")
	}
}

func TestValidateDirRejectsDuplicateVersion(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "00001_first.sql", validSQL)
	writeMigration(t, dir, "00001_second.sql", validSQL)

	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected error for duplicate version")
	}
}

func TestValidateDirRequiresGooseHeaders(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "00001_no_down.sql", "-- +goose Up\nCREATE TABLE t (id int);\n")

	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected error for missing down header")
	}
}

func TestValidateDirIgnoresNonSQLFiles(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "00001_ok.sql", validSQL)
	writeMigration(t, dir, "README.md", "notes")

	if err := ValidateDir(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRepositoryMigrationsValidate(t *testing.T) {
	root, err := filepath.Abs(filepath.Join("..", "..", DefaultDir))
	if err != nil {
		t.Fatalf("resolving migrations dir: %v", err)
	}
	if _, statErr := os.Stat(root); statErr != nil {
		t.Skipf("migrations dir not present: %v", statErr)
	}

	if err := ValidateDir(root); err != nil {
		t.Fatalf("repository migrations invalid: %v", err)
	}
}
