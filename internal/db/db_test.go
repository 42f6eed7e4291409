package db

import (
	"testing"

	"github.com/taproom/taproom/internal/config"
	"github.com/taproom/taproom/internal/models"
)

func TestDSN(t *testing.T) {
	dc := config.DatabaseConfig{
		Host: "127.0.0.1", Port: 3306, Database: "taproom_dockside", User: "root",
	}
	want := "root@tcp(127.0.0.1:3306)/taproom_dockside?parseTime=true"
	if got := DSN(dc); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}

	dc.Password = "hunter2"
	want = "root:hunter2@tcp(127.0.0.1:3306)/taproom_dockside?parseTime=true"
	if got := DSN(dc); got != want {
		t.Errorf("DSN with password = %q, want %q", got, want)
	}
}

func TestConnectUnknownDriver(t *testing.T) {
	_, err := Connect(config.DatabaseConfig{Driver: "postgres"})
	if err == nil {
		t.Fatal("unknown driver accepted")
	}
}

func TestMigrateAndReset(t *testing.T) {
	gdb, err := Connect(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !gdb.Migrator().HasTable(&models.Product{}) {
		t.Error("products table missing after migrate")
	}

	if err := gdb.Create(&models.Product{ID: "p-1", Name: "Bud Light", Active: true}).Error; err != nil {
		t.Fatal(err)
	}
	if err := Reset(gdb); err != nil {
		t.Fatalf("reset: %v", err)
	}

	var count int64
	if err := gdb.Model(&models.Product{}).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("products after reset = %d, want 0", count)
	}
}
