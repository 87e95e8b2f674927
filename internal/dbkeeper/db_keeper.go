// Package dbkeeper reads the product catalog from PostgreSQL.
package dbkeeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/drstein77/shophub/internal/catalog"
	"github.com/drstein77/shophub/internal/models"
)

type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

type DBKeeper struct {
	pool *pgxpool.Pool
	log  Log
}

// NewDBKeeper connects to the database at dsn.
func NewDBKeeper(ctx context.Context, dsn func() string, log Log) (*DBKeeper, error) {
	addr := dsn()
	if addr == "" {
		return nil, errors.New("database dsn is empty")
	}

	config, err := pgxpool.ParseConfig(addr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	log.Info("Connected!")

	return &DBKeeper{
		pool: pool,
		log:  log,
	}, nil
}

const selectProducts = `
	SELECT id, title, price, description, category, image, rating_rate, rating_count
	FROM products
	ORDER BY id
`

// Fetch reads the whole catalog. It implements catalog.Source.
func (kp *DBKeeper) Fetch(ctx context.Context) ([]models.Product, error) {
	if kp.pool == nil {
		return nil, &catalog.LoadError{Kind: catalog.KindNetwork, Err: errors.New("database connection pool is nil")}
	}

	rows, err := kp.pool.Query(ctx, selectProducts)
	if err != nil {
		return nil, classify(ctx, fmt.Errorf("failed to execute query: %w", err))
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, classify(ctx, err)
	}

	kp.log.Info("Successfully retrieved all products", zap.Int("count", len(products)))
	return products, nil
}

// pgxRows is the part of pgx.Rows that scanProducts needs.
type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanProducts(rows pgxRows) ([]models.Product, error) {
	products := make([]models.Product, 0)
	for rows.Next() {
		var (
			product models.Product
			price   decimal.Decimal
		)
		err := rows.Scan(
			&product.ID,
			&product.Title,
			&price,
			&product.Description,
			&product.Category,
			&product.Image,
			&product.Rating.Rate,
			&product.Rating.Count,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		product.Price = price
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return products, nil
}

func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return &catalog.LoadError{Kind: catalog.KindCanceled, Err: err}
	}
	return &catalog.LoadError{Kind: catalog.KindNetwork, Err: err}
}

// Ping reports whether the database answers within five seconds.
func (kp *DBKeeper) Ping(ctx context.Context) bool {
	if kp.pool == nil {
		kp.log.Error("Database ping failed", zap.Error(errors.New("database connection pool is nil")))
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := kp.pool.Ping(ctx); err != nil {
		kp.log.Error("Database ping failed", zap.Error(err))
		return false
	}

	return true
}

func (kp *DBKeeper) Close() bool {
	if kp.pool != nil {
		kp.pool.Close()
		kp.log.Info("Database connection pool closed")
		return true
	}
	kp.log.Info("Attempted to close a nil database connection pool")
	return false
}
