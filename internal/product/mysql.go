package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// MySQLRepo stores products in MySQL. DECIMAL columns scan straight into decimal.Decimal.
type MySQLRepo struct {
	db *sql.DB
}

func NewMySQLRepo(db *sql.DB) *MySQLRepo { return &MySQLRepo{db: db} }

const mysqlColumns = `id, name, COALESCE(description, ''), price, quantity, created_at, updated_at`

func (m *MySQLRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, price, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Price, p.Quantity, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

func (m *MySQLRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanMySQL(m.db.QueryRowContext(ctx, `SELECT `+mysqlColumns+` FROM products WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return p, nil
}

func (m *MySQLRepo) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q = q.normalize()
	like := "%" + q.Q + "%"
	rows, err := m.db.QueryContext(ctx, `
		SELECT `+mysqlColumns+`
		FROM products
		WHERE (? = '' OR name LIKE ? OR description LIKE ?)
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`,
		q.Q, like, like, q.Limit, q.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return collectMySQL(rows)
}

func (m *MySQLRepo) Update(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// RowsAffected is 0 for an unchanged row, so existence is checked separately.
	if _, err := m.GetByID(ctx, p.ID); err != nil {
		return err
	}
	_, err := m.db.ExecContext(ctx, `
		UPDATE products
		SET name = ?, description = ?, price = ?, quantity = ?, updated_at = NOW()
		WHERE id = ?`,
		p.Name, p.Description, p.Price, p.Quantity, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (m *MySQLRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := m.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (m *MySQLRepo) FindAllByID(ctx context.Context, ids []string) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	rows, err := m.db.QueryContext(ctx,
		`SELECT `+mysqlColumns+` FROM products WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	return collectMySQL(rows)
}

func (m *MySQLRepo) UpdateQuantities(ctx context.Context, updates []QuantityUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, u := range updates {
		// MySQL counts changed rows, not matched ones, so existence is checked
		// with a locking read instead of RowsAffected.
		var id string
		err := tx.QueryRowContext(ctx, `SELECT id FROM products WHERE id = ? FOR UPDATE`, u.ID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("update quantity of %s: %w", u.ID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("lock product %s: %w", u.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE products SET quantity = ?, updated_at = NOW() WHERE id = ?`,
			u.Quantity, u.ID,
		); err != nil {
			return fmt.Errorf("update quantity of %s: %w", u.ID, err)
		}
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMySQL(row rowScanner) (*Product, error) {
	var p Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func collectMySQL(rows *sql.Rows) ([]Product, error) {
	defer rows.Close()
	out := []Product{}
	for rows.Next() {
		p, err := scanMySQL(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
