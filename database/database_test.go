package database_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kbukum/backend-template/component"
	"github.com/kbukum/backend-template/database"
	"github.com/kbukum/backend-template/database/testutil"
	apperrors "github.com/kbukum/backend-template/errors"
	"github.com/kbukum/backend-template/logger"
)

type note struct {
	database.BaseModel
	Title string `gorm:"uniqueIndex" json:"title"`
}

var _ database.Entity = (*note)(nil)

func TestBaseModel_CreateAssignsDefaults(t *testing.T) {
	db := testutil.Open(t, &note{})
	ctx := context.Background()

	n := note{Title: "first"}
	if err := db.WithContext(ctx).Create(&n).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	if n.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}

	var got note
	if err := db.WithContext(ctx).First(&got, "id = ?", n.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !got.GetIsActive() {
		t.Error("expected isActive to default to true")
	}
	if got.GetCreatedAt().IsZero() || got.GetUpdatedAt().IsZero() {
		t.Error("expected timestamps to be set")
	}
	if got.String() != n.ID.String() {
		t.Errorf("String() = %q, want id %q", got.String(), n.ID)
	}
}

func TestBaseModel_CreateInactive(t *testing.T) {
	db := testutil.Open(t, &note{})
	ctx := context.Background()

	n := note{Title: "draft"}
	n.SetActive(false)
	if err := db.WithContext(ctx).Create(&n).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	var got note
	if err := db.WithContext(ctx).First(&got, "id = ?", n.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.GetIsActive() {
		t.Error("expected the row to be stored inactive")
	}
	var active int64
	if err := db.WithContext(ctx).Model(&note{}).Scopes(database.Active).Count(&active).Error; err != nil {
		t.Fatal(err)
	}
	if active != 0 {
		t.Errorf("active rows = %d, want 0", active)
	}
}

func TestBaseModel_IDsAreUnique(t *testing.T) {
	db := testutil.Open(t, &note{})
	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 10; i++ {
		n := note{Title: uuid.NewString()}
		if err := db.WithContext(context.Background()).Create(&n).Error; err != nil {
			t.Fatalf("create: %v", err)
		}
		if seen[n.ID] {
			t.Fatalf("duplicate id %s", n.ID)
		}
		seen[n.ID] = true
	}
}

func TestBaseModel_UpdateRefreshesUpdatedAt(t *testing.T) {
	db := testutil.Open(t, &note{})
	ctx := context.Background()

	n := note{Title: "draft"}
	if err := db.WithContext(ctx).Create(&n).Error; err != nil {
		t.Fatal(err)
	}
	created := n.CreatedAt
	firstUpdate := n.UpdatedAt

	time.Sleep(5 * time.Millisecond)
	n.Title = "final"
	if err := db.WithContext(ctx).Save(&n).Error; err != nil {
		t.Fatal(err)
	}

	var got note
	if err := db.WithContext(ctx).First(&got, "id = ?", n.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !got.UpdatedAt.After(firstUpdate) {
		t.Errorf("expected updatedAt to advance: %v -> %v", firstUpdate, got.UpdatedAt)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("createdAt changed: %v -> %v", created, got.CreatedAt)
	}
}

func TestDeactivateAndActiveScope(t *testing.T) {
	db := testutil.Open(t, &note{})
	ctx := context.Background()

	keep := note{Title: "keep"}
	drop := note{Title: "drop"}
	for _, n := range []*note{&keep, &drop} {
		if err := db.WithContext(ctx).Create(n).Error; err != nil {
			t.Fatal(err)
		}
	}

	if err := database.Deactivate(ctx, db.GormDB, &drop); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	var active []note
	if err := db.WithContext(ctx).Scopes(database.Active).Find(&active).Error; err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 || active[0].ID != keep.ID {
		t.Errorf("expected only the kept note, got %+v", active)
	}

	var all int64
	db.WithContext(ctx).Model(&note{}).Count(&all)
	if all != 2 {
		t.Errorf("soft delete must keep the row, count=%d", all)
	}

	missing := note{BaseModel: database.BaseModel{ID: uuid.New()}}
	if err := database.Deactivate(ctx, db.GormDB, &missing); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected not found for unknown id, got %v", err)
	}
}

func TestFromDatabase(t *testing.T) {
	db := testutil.Open(t, &note{})
	ctx := context.Background()

	var n note
	err := db.WithContext(ctx).First(&n, "id = ?", uuid.New()).Error
	if got := database.FromDatabase(err, "note"); got.Code != apperrors.ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", got.Code)
	}

	if err := db.WithContext(ctx).Create(&note{Title: "dup"}).Error; err != nil {
		t.Fatal(err)
	}
	err = db.WithContext(ctx).Create(&note{Title: "dup"}).Error
	if got := database.FromDatabase(err, "note"); got == nil || got.Code != apperrors.ErrCodeAlreadyExists {
		t.Errorf("expected ALREADY_EXISTS, got %v", got)
	}

	if got := database.FromDatabase(errors.New("dial tcp: connection refused"), "note"); !got.Retryable {
		t.Error("connection errors should be retryable")
	}
	if database.FromDatabase(nil, "note") != nil {
		t.Error("expected nil for nil error")
	}
}

func TestTransactionRollsBack(t *testing.T) {
	db := testutil.Open(t, &note{})
	ctx := context.Background()

	err := db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&note{Title: "inside"}).Error; err != nil {
			return err
		}
		return errors.New("abort")
	})
	if err == nil {
		t.Fatal("expected transaction error")
	}

	var count int64
	db.WithContext(ctx).Model(&note{}).Count(&count)
	if count != 0 {
		t.Errorf("expected rollback, found %d rows", count)
	}
}

func TestConfig(t *testing.T) {
	cfg := database.Config{Enabled: true, Name: "app", User: "admin", Password: "p w'd", Port: 6543}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	conn := cfg.ConnString()
	for _, want := range []string{"host=localhost", "port=6543", "dbname=app", "user=admin", `password='p w\'d'`} {
		if !strings.Contains(conn, want) {
			t.Errorf("expected %q in %q", want, conn)
		}
	}
	if strings.Contains(cfg.Redacted(), "p w") {
		t.Error("Redacted leaked the password")
	}

	bad := []database.Config{
		{Enabled: true, Driver: "oracle"},
		{Enabled: true, Driver: database.DriverPostgres},
		{Enabled: true, Driver: database.DriverSQLite},
	}
	for _, c := range bad {
		c.ApplyDefaults()
		if err := c.Validate(); err == nil {
			t.Errorf("expected validation error for %+v", c)
		}
	}
}

func TestComponentLifecycle(t *testing.T) {
	comp := database.NewComponent(testutil.Config(t.Name()), logger.NewNop())
	ctx := context.Background()

	if h := comp.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if comp.DB() == nil {
		t.Fatal("expected DB after start")
	}
	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s (%s)", h.Status, h.Message)
	}
	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if comp.DB() != nil {
		t.Error("expected DB to be released after stop")
	}
}

func TestNew_RetriesThenFails(t *testing.T) {
	cfg := database.Config{
		Enabled:      true,
		Driver:       database.DriverSQLite,
		DSN:          t.TempDir() + "/missing/dir/app.db",
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
		LogLevel:     "silent",
	}
	_, err := database.New(context.Background(), cfg, logger.NewNop())
	if err == nil || !strings.Contains(err.Error(), "after 2 attempts") {
		t.Fatalf("expected retry exhaustion error, got %v", err)
	}
}
