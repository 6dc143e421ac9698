package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

// MySQLAdapter is a catalog source backed by MySQL. The server reads it
// once at startup; SaveProducts and Migrate exist to prepare a database.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, name, description, price, glyph, category, rating, reviews, stock
		FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}

	var products []domain.Product
	index := make(map[domain.ProductID]int)
	for rows.Next() {
		var (
			p     domain.Product
			price string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Glyph, &p.Category, &p.Rating, &p.Reviews, &p.Stock); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			rows.Close()
			return nil, fmt.Errorf("product %d price %q: %w", p.ID, price, err)
		}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	err = m.loadChildren(ctx, tx, `SELECT product_id, name FROM product_colors ORDER BY product_id, position`,
		func(id domain.ProductID, values []string) {
			if i, ok := index[id]; ok {
				products[i].Colors = append(products[i].Colors, values[0])
			}
		}, 1)
	if err != nil {
		return nil, fmt.Errorf("load colors: %w", err)
	}

	err = m.loadChildren(ctx, tx, `SELECT product_id, feature FROM product_features ORDER BY product_id, position`,
		func(id domain.ProductID, values []string) {
			if i, ok := index[id]; ok {
				products[i].Features = append(products[i].Features, values[0])
			}
		}, 1)
	if err != nil {
		return nil, fmt.Errorf("load features: %w", err)
	}

	err = m.loadChildren(ctx, tx, `SELECT product_id, label, value FROM product_specs ORDER BY product_id, position`,
		func(id domain.ProductID, values []string) {
			if i, ok := index[id]; ok {
				products[i].Specs = append(products[i].Specs, domain.Spec{Label: values[0], Value: values[1]})
			}
		}, 2)
	if err != nil {
		return nil, fmt.Errorf("load specs: %w", err)
	}

	return products, tx.Commit()
}

// loadChildren scans rows of (product_id, n string columns) and hands each
// row to add.
func (m *MySQLAdapter) loadChildren(ctx context.Context, tx *sql.Tx, query string, add func(domain.ProductID, []string), n int) error {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id domain.ProductID
		values := make([]string, n)
		dest := []any{&id}
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		add(id, values)
	}
	return rows.Err()
}

// SaveProducts replaces the catalog tables with products. Used to seed a
// fresh database from the compiled-in catalog.
func (m *MySQLAdapter) SaveProducts(ctx context.Context, products []domain.Product) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"product_specs", "product_features", "product_colors", "products"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, p := range products {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO products (id, name, description, price, glyph, category, rating, reviews, stock)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Description, p.Price.StringFixed(2), p.Glyph, p.Category, p.Rating, p.Reviews, p.Stock,
		)
		if err != nil {
			return fmt.Errorf("insert product %d: %w", p.ID, err)
		}
		for i, c := range p.Colors {
			if _, err := tx.ExecContext(ctx, `INSERT INTO product_colors (product_id, position, name) VALUES (?, ?, ?)`, p.ID, i, c); err != nil {
				return fmt.Errorf("insert color: %w", err)
			}
		}
		for i, f := range p.Features {
			if _, err := tx.ExecContext(ctx, `INSERT INTO product_features (product_id, position, feature) VALUES (?, ?, ?)`, p.ID, i, f); err != nil {
				return fmt.Errorf("insert feature: %w", err)
			}
		}
		for i, s := range p.Specs {
			if _, err := tx.ExecContext(ctx, `INSERT INTO product_specs (product_id, position, label, value) VALUES (?, ?, ?, ?)`, p.ID, i, s.Label, s.Value); err != nil {
				return fmt.Errorf("insert spec: %w", err)
			}
		}
	}

	return tx.Commit()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		price DECIMAL(12,2) NOT NULL,
		glyph VARCHAR(16) NOT NULL,
		category VARCHAR(64) NOT NULL,
		rating DOUBLE NOT NULL,
		reviews INT NOT NULL,
		stock INT NOT NULL
	) DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS product_colors (
		product_id BIGINT NOT NULL,
		position INT NOT NULL,
		name VARCHAR(64) NOT NULL,
		PRIMARY KEY (product_id, position)
	) DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS product_features (
		product_id BIGINT NOT NULL,
		position INT NOT NULL,
		feature VARCHAR(255) NOT NULL,
		PRIMARY KEY (product_id, position)
	) DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS product_specs (
		product_id BIGINT NOT NULL,
		position INT NOT NULL,
		label VARCHAR(64) NOT NULL,
		value VARCHAR(255) NOT NULL,
		PRIMARY KEY (product_id, position)
	) DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the catalog tables when they do not exist.
func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
