package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/angelmondragon/spesa/pkg/config"
)

type testModel struct {
	ID   int
	Name string
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "session.db")
	client, err := New(context.Background(), config.SessionConfig{Path: path}, nil)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	if err := client.DB().AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return client
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	client := newTestClient(t)
	db := client.DB()

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestNewCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "session.db")
	client, err := New(context.Background(), config.SessionConfig{Path: path}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer client.Close()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected database file at %s: %v", path, err)
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: memoryPath, want: "file::memory:?cache=shared&_busy_timeout=5000"},
		{path: "spesa.db", want: "file:spesa.db?_busy_timeout=5000&_foreign_keys=on"},
		{path: "/tmp/spesa.db", want: "file:/tmp/spesa.db?_busy_timeout=5000&_foreign_keys=on"},
	}
	for _, tt := range tests {
		if got := dsn(tt.path); got != tt.want {
			t.Fatalf("dsn(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestNewRequiresPath(t *testing.T) {
	if _, err := New(context.Background(), config.SessionConfig{Path: " "}, nil); err == nil {
		t.Fatal("expected error for empty path")
	}
}
