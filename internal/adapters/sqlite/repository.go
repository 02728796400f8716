package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"instantTrendBot/internal/domain"
	"instantTrendBot/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.JournalRepository using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

var _ ports.JournalRepository = (*Repository)(nil)

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/instant_trend.db" // Default path
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("%w: failed to open database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("%w: failed to ping database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// A single connection serialises writers from the driver and the metrics goroutine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "SQLite journal ready", map[string]interface{}{"path": dbPath})

	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		bar_time TIMESTAMP NOT NULL,
		kind TEXT NOT NULL,
		rationale TEXT NOT NULL DEFAULT '',
		trend REAL NOT NULL,
		trigger_value REAL NOT NULL,
		projection REAL NOT NULL,
		status TEXT NOT NULL,
		crossover TEXT NOT NULL,
		intent_side TEXT NULL,
		intent_type TEXT NULL,
		intent_quantity REAL NULL,
		intent_price REAL NULL,
		intent_tag TEXT NULL,
		order_id INTEGER NOT NULL DEFAULT 0,
		momersion REAL NOT NULL,
		momersion_ready INTEGER NOT NULL,
		regime TEXT NOT NULL,
		fault TEXT NULL
	);

	CREATE TABLE IF NOT EXISTS order_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		kind TEXT NOT NULL,
		side TEXT NOT NULL,
		order_type TEXT NOT NULL,
		quantity REAL NOT NULL,
		price REAL NOT NULL,
		event_time TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_decisions_symbol_bar_time ON decisions (symbol, bar_time);
	CREATE INDEX IF NOT EXISTS idx_order_events_symbol_time ON order_events (symbol, event_time);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- Decision journal ---

// SaveDecision stores a decision and returns its assigned ID.
func (r *Repository) SaveDecision(ctx context.Context, d *domain.Decision) (int64, error) {
	const query = `
	INSERT INTO decisions (symbol, bar_time, kind, rationale, trend, trigger_value, projection,
	                       status, crossover, intent_side, intent_type, intent_quantity, intent_price,
	                       intent_tag, order_id, momersion, momersion_ready, regime, fault)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var (
		side, orderType, tag sql.NullString
		quantity, price      sql.NullFloat64
		fault                sql.NullString
	)
	if d.Intent != nil {
		side = sql.NullString{String: string(d.Intent.Side), Valid: true}
		orderType = sql.NullString{String: string(d.Intent.Type), Valid: true}
		quantity = sql.NullFloat64{Float64: d.Intent.Quantity, Valid: true}
		price = sql.NullFloat64{Float64: d.Intent.LimitPrice, Valid: true}
		tag = sql.NullString{String: d.Intent.Tag, Valid: true}
	}
	if d.Fault != "" {
		fault = sql.NullString{String: d.Fault, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query,
		d.Symbol, d.BarTime.UTC(), d.Kind, d.Rationale, d.Trend, d.Trigger, d.Projection,
		d.Status, d.Crossover, side, orderType, quantity, price,
		tag, d.OrderID, d.Momersion, d.MomersionReady, d.Regime, fault)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to insert decision for symbol %s: %v", ports.ErrQueryFailed, d.Symbol, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for decision %s: %w", d.Symbol, err)
	}
	d.ID = id
	r.logger.Debug(ctx, "Decision journaled", map[string]interface{}{"decisionID": id, "symbol": d.Symbol, "kind": d.Kind})
	return id, nil
}

// FindDecisionsBySymbol retrieves the latest decisions for a symbol, newest first.
func (r *Repository) FindDecisionsBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Decision, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ports.ErrInvalidRequest)
	}
	const query = `
	SELECT id, symbol, bar_time, kind, rationale, trend, trigger_value, projection, status,
	       crossover, intent_side, intent_type, intent_quantity, intent_price, intent_tag,
	       order_id, momersion, momersion_ready, regime, fault
	FROM decisions
	WHERE symbol = ?
	ORDER BY bar_time DESC, id DESC
	LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query decisions for symbol %s: %v", ports.ErrQueryFailed, symbol, err)
	}
	defer rows.Close()

	decisions := make([]*domain.Decision, 0, limit)
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		decisions = append(decisions, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decision rows: %w", err)
	}
	return decisions, nil
}

// CountIntentsBySymbol counts the decisions that emitted an order for a symbol.
func (r *Repository) CountIntentsBySymbol(ctx context.Context, symbol string) (int, error) {
	const query = `SELECT COUNT(*) FROM decisions WHERE symbol = ? AND intent_side IS NOT NULL`

	var count int
	if err := r.db.QueryRowContext(ctx, query, symbol).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: failed to count intents for symbol %s: %v", ports.ErrQueryFailed, symbol, err)
	}
	return count, nil
}

// --- Order events ---

// SaveOrderEvent stores a fill or cancellation and returns its assigned ID.
func (r *Repository) SaveOrderEvent(ctx context.Context, ev *domain.OrderEvent) (int64, error) {
	const query = `
	INSERT INTO order_events (order_id, symbol, kind, side, order_type, quantity, price, event_time)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		ev.OrderID, ev.Symbol, ev.Kind, ev.Side, ev.Type, ev.Quantity, ev.Price, ev.Time.UTC())
	if err != nil {
		return 0, fmt.Errorf("%w: failed to insert order event for order %d: %v", ports.ErrQueryFailed, ev.OrderID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for order event %d: %w", ev.OrderID, err)
	}
	ev.ID = id
	r.logger.Debug(ctx, "Order event journaled", map[string]interface{}{"eventID": id, "orderID": ev.OrderID, "kind": ev.Kind})
	return id, nil
}

// FindOrderEventsBySymbol retrieves the latest order events for a symbol, newest first.
func (r *Repository) FindOrderEventsBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.OrderEvent, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ports.ErrInvalidRequest)
	}
	const query = `
	SELECT id, order_id, symbol, kind, side, order_type, quantity, price, event_time
	FROM order_events
	WHERE symbol = ?
	ORDER BY event_time DESC, id DESC
	LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query order events for symbol %s: %v", ports.ErrQueryFailed, symbol, err)
	}
	defer rows.Close()

	events := make([]*domain.OrderEvent, 0, limit)
	for rows.Next() {
		ev, err := scanOrderEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order event: %w", err)
		}
		events = append(events, ev)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order event rows: %w", err)
	}
	return events, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDecision(s scanner) (*domain.Decision, error) {
	d := &domain.Decision{}
	var (
		kind, status, crossover, regime string
		side, orderType, tag, fault     sql.NullString
		quantity, price                 sql.NullFloat64
	)
	err := s.Scan(
		&d.ID, &d.Symbol, &d.BarTime, &kind, &d.Rationale, &d.Trend, &d.Trigger, &d.Projection, &status,
		&crossover, &side, &orderType, &quantity, &price, &tag,
		&d.OrderID, &d.Momersion, &d.MomersionReady, &regime, &fault)
	if err != nil {
		return nil, err
	}
	d.Kind = domain.DecisionKind(kind)
	d.Status = domain.PositionStatus(status)
	d.Crossover = domain.CrossoverState(crossover)
	d.Regime = domain.Regime(regime)
	if side.Valid {
		d.Intent = &domain.OrderIntent{
			Symbol:     d.Symbol,
			Side:       domain.OrderSide(side.String),
			Type:       domain.OrderType(orderType.String),
			Quantity:   quantity.Float64,
			LimitPrice: price.Float64,
			Tag:        tag.String,
		}
	}
	if fault.Valid {
		d.Fault = fault.String
	}
	return d, nil
}

func scanOrderEvent(s scanner) (*domain.OrderEvent, error) {
	ev := &domain.OrderEvent{}
	var kind, side, orderType string
	err := s.Scan(&ev.ID, &ev.OrderID, &ev.Symbol, &kind, &side, &orderType, &ev.Quantity, &ev.Price, &ev.Time)
	if err != nil {
		return nil, err
	}
	ev.Kind = domain.OrderEventKind(kind)
	ev.Side = domain.OrderSide(side)
	ev.Type = domain.OrderType(orderType)
	return ev, nil
}
