package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/shopsense-ai/catalog-assistant/internal/observability"
)

// ErrNotConnected is returned when an operation runs before Connect.
var ErrNotConnected = errors.New("catalog store is not connected")

// StoreConfig holds catalog store settings.
type StoreConfig struct {
	Driver          string // sqlite or postgres
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store is the process-wide handle to the catalog database. It is opened
// once when the serving process starts and reused across requests; Connect
// and Close are idempotent so startup and shutdown paths can call them
// without coordinating.
type Store struct {
	logger *observability.Logger
	cfg    StoreConfig

	mu sync.Mutex
	db *sql.DB
}

// NewStore creates an unconnected store.
func NewStore(logger *observability.Logger, cfg StoreConfig) *Store {
	return &Store{
		logger: logger.WithComponent("catalog"),
		cfg:    cfg,
	}
}

// Connect opens the database connection and runs schema migration. Calling
// Connect on an already-connected store is a no-op.
func (s *Store) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	driverName := s.cfg.Driver
	if driverName == "sqlite" {
		driverName = "sqlite3"
	}

	db, err := sql.Open(driverName, s.cfg.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if s.cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(s.cfg.MaxOpenConns)
	}
	if s.cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(s.cfg.MaxIdleConns)
	}
	if s.cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(s.cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	if err := migrate(ctx, db, s.cfg.Driver); err != nil {
		db.Close()
		return fmt.Errorf("migrate schema: %w", err)
	}

	s.db = db
	s.logger.Info().Str("driver", s.cfg.Driver).Msg("Catalog store connected")
	return nil
}

// Close tears the connection down. Safe to call when never connected.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	return err
}

// Connected reports whether Connect has succeeded.
func (s *Store) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db != nil
}

func (s *Store) handle() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrNotConnected
	}
	return s.db, nil
}

func migrate(ctx context.Context, db *sql.DB, driver string) error {
	idColumn := "BIGSERIAL PRIMARY KEY"
	if driver == "sqlite" {
		idColumn = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS products (
			id %s,
			name TEXT NOT NULL,
			brand TEXT,
			gender TEXT,
			price TEXT,
			description TEXT,
			primary_color TEXT
		)
	`, idColumn)

	_, err := db.ExecContext(ctx, schema)
	return err
}

// ListProducts fetches every catalog row in id order.
func (s *Store) ListProducts(ctx context.Context) ([]Product, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, brand, gender, price, description, primary_color
		FROM products
		ORDER BY id
	`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var (
			p                                        Product
			brand, gender, price, desc, primaryColor sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &brand, &gender, &price, &desc, &primaryColor); err != nil {
			return nil, err
		}
		p.Brand = nullableString(brand)
		p.Gender = nullableString(gender)
		p.Price = nullableString(price)
		p.Description = nullableString(desc)
		p.PrimaryColor = nullableString(primaryColor)
		products = append(products, p)
	}
	return products, rows.Err()
}

// InsertProduct writes one catalog row.
func (s *Store) InsertProduct(ctx context.Context, p *Product) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (name, brand, gender, price, description, primary_color)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = db.ExecContext(ctx, query,
		p.Name, p.Brand, p.Gender, p.Price, p.Description, p.PrimaryColor,
	)
	return err
}

// CountProducts returns the number of catalog rows.
func (s *Store) CountProducts(ctx context.Context) (int64, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}

	var count int64
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	return count, err
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}
