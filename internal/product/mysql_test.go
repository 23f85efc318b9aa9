package product

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/checkout?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	return db
}

func TestMySQL_FindAllByID_OmitsUnknown(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	repo := NewMySQLRepo(db)

	p := &Product{ID: uuid.NewString(), Name: "Mouse", Price: decimal.RequireFromString("99.90"), Quantity: 4}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	defer db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, p.ID)

	got, err := repo.FindAllByID(ctx, []string{p.ID, "missing-" + uuid.NewString()})
	if err != nil {
		t.Fatalf("FindAllByID failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != p.ID {
		t.Fatalf("expected only %s, got %+v", p.ID, got)
	}
	if !got[0].Price.Equal(p.Price) {
		t.Errorf("expected price %s, got %s", p.Price, got[0].Price)
	}
}

func TestMySQL_UpdateQuantities(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	repo := NewMySQLRepo(db)

	p := &Product{ID: uuid.NewString(), Name: "Keyboard", Price: decimal.NewFromInt(10), Quantity: 10}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	defer db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, p.ID)

	if err := repo.UpdateQuantities(ctx, []QuantityUpdate{{ID: p.ID, Quantity: 8}}); err != nil {
		t.Fatalf("UpdateQuantities failed: %v", err)
	}

	got, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Quantity != 8 {
		t.Errorf("expected quantity 8, got %d", got.Quantity)
	}
}

func TestMySQL_UpdateQuantities_UnknownIDRollsBack(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	repo := NewMySQLRepo(db)

	p := &Product{ID: uuid.NewString(), Name: "Pad", Price: decimal.NewFromInt(3), Quantity: 5}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	defer db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, p.ID)

	err := repo.UpdateQuantities(ctx, []QuantityUpdate{
		{ID: p.ID, Quantity: 1},
		{ID: "missing-" + uuid.NewString(), Quantity: 1},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	got, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Quantity != 5 {
		t.Errorf("failed batch must not apply, quantity=%d", got.Quantity)
	}
}

// Writing the current value again still succeeds.
func TestMySQL_UpdateQuantities_SameValue(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	repo := NewMySQLRepo(db)

	p := &Product{ID: uuid.NewString(), Name: "Cable", Price: decimal.NewFromInt(2), Quantity: 7}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	defer db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, p.ID)

	for i := 0; i < 2; i++ {
		if err := repo.UpdateQuantities(ctx, []QuantityUpdate{{ID: p.ID, Quantity: 7}}); err != nil {
			t.Fatalf("UpdateQuantities #%d failed: %v", i+1, err)
		}
	}
}

func TestMySQL_GetByID_NotFound(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	_, err := NewMySQLRepo(db).GetByID(context.Background(), "nonexistent-product")
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
