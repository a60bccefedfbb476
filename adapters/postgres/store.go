// Package postgres stores pricing tables and discount codes in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"

	"github.com/Omri-Jukin/Portfolio-sub003/core/model"
	"github.com/Omri-Jukin/Portfolio-sub003/core/types"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/errors"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/logging"
)

const (
	selectProjectTypes = `SELECT key, display_name, base_rate, sort_order, is_active
        FROM project_types ORDER BY sort_order, key`
	selectOverrides = `SELECT project_type_key, client_type_key, base_rate, sort_order, is_active
        FROM base_rate_overrides ORDER BY sort_order, id`
	selectFeatures = `SELECT key, display_name, cost, feature_group, sort_order, is_active
        FROM features ORDER BY sort_order, key`
	selectGroups = `SELECT key, display_name, sort_order, is_active
        FROM multiplier_groups ORDER BY sort_order, key`
	selectOptions = `SELECT group_key, option_key, value, is_fixed, display_name, sort_order, is_active
        FROM multiplier_options ORDER BY group_key, sort_order, option_key`
	selectMeta = `SELECT page_cost_per_unit, range_percent, default_currency
        FROM pricing_meta WHERE id = 1`
	selectMinimums = `SELECT project_type_key, amount FROM project_minimums ORDER BY project_type_key`

	selectDiscount = `SELECT code, discount_type, amount, currency, project_types, features,
            client_types, exclude_client_types, starts_at, ends_at, max_uses, used_count,
            per_user_limit, is_active
        FROM discounts WHERE code = $1`

	redeemDiscount = `UPDATE discounts SET used_count = used_count + 1
        WHERE code = $1 AND is_active AND (max_uses IS NULL OR used_count < max_uses)`
	discountExists = `SELECT EXISTS (SELECT 1 FROM discounts WHERE code = $1)`
)

// Store reads the pricing model and discounts from PostgreSQL
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// New wraps an open connection
func New(db *sqlx.DB) *Store {
	return &Store{db: db, logger: logging.Named("postgres")}
}

// Open connects and pings the database
func Open(ctx context.Context, dsn string, maxOpenConns int) (*Store, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Storage("failed to open database", err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Storage("failed to reach database", err)
	}
	return New(db), nil
}

// Close closes the connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the pricing tables if they do not exist
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return errors.Storage("failed to apply schema", err)
	}
	s.logger.Info("schema applied")
	return nil
}

// LoadModel reads every pricing table in one read-only transaction and validates the result
func (s *Store) LoadModel(ctx context.Context) (*types.PricingModel, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, errors.Storage("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var t tables
	selects := []struct {
		table string
		dest  interface{}
		query string
	}{
		{"project_types", &t.projectTypes, selectProjectTypes},
		{"base_rate_overrides", &t.overrides, selectOverrides},
		{"features", &t.features, selectFeatures},
		{"multiplier_groups", &t.groups, selectGroups},
		{"multiplier_options", &t.options, selectOptions},
		{"project_minimums", &t.minimums, selectMinimums},
	}
	for _, sel := range selects {
		if err := tx.SelectContext(ctx, sel.dest, sel.query); err != nil {
			return nil, errors.Storage("failed to read pricing table", err).WithContext("table", sel.table)
		}
	}
	if err := tx.GetContext(ctx, &t.meta, selectMeta); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.Config("pricing_meta has no row")
		}
		return nil, errors.Storage("failed to read pricing meta", err)
	}

	m := assemble(t)
	if err := model.Validate(m); err != nil {
		return nil, err
	}
	return m, nil
}

// FindDiscount looks up a discount by its normalized code
func (s *Store) FindDiscount(ctx context.Context, code string) (*types.Discount, error) {
	var row discountRow
	if err := s.db.GetContext(ctx, &row, selectDiscount, code); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("discount", code)
		}
		return nil, errors.Storage("failed to read discount", err).WithContext("code", code)
	}

	d := row.toDiscount()
	if err := model.ValidateDiscount(d); err != nil {
		s.logger.Warn("invalid discount row", zap.String("code", code), zap.Error(err))
		return nil, err
	}
	return d, nil
}

// RecordRedemption increments the usage counter in one conditional statement, so
// concurrent redemptions can never push used_count past max_uses
func (s *Store) RecordRedemption(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx, redeemDiscount, code)
	if err != nil {
		return errors.Storage("failed to record redemption", err).WithContext("code", code)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Storage("failed to record redemption", err).WithContext("code", code)
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := s.db.GetContext(ctx, &exists, discountExists, code); err != nil {
		return errors.Storage("failed to read discount", err).WithContext("code", code)
	}
	if !exists {
		return errors.NotFound("discount", code)
	}
	return errors.New(errors.TypeConflict, "discount can no longer be redeemed").WithContext("code", code)
}
