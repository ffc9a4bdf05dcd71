package store

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/ledgerline/billparse/internal/model"
)

const migrateSQL = `
CREATE TABLE IF NOT EXISTS bills (
	id UUID PRIMARY KEY,
	property_name TEXT,
	utility_provider TEXT,
	utility_type TEXT,
	account_number TEXT,
	meter_serial_number TEXT,
	billing_date DATE,
	billing_start_date DATE,
	billing_end_date DATE,
	due_date DATE,
	current_charges NUMERIC(12,2),
	previous_balance NUMERIC(12,2),
	past_due_balance NUMERIC(12,2),
	total_amount_due NUMERIC(12,2),
	units_used NUMERIC(14,3),
	unit_type TEXT,
	payments NUMERIC(12,2),
	balance_forward NUMERIC(12,2),
	water_charges NUMERIC(12,2),
	sewer_charges NUMERIC(12,2),
	storm_water_charges NUMERIC(12,2),
	environmental_fee NUMERIC(12,2),
	trash_charges NUMERIC(12,2),
	gas_charges NUMERIC(12,2),
	electric_charges NUMERIC(12,2),
	rate_plan TEXT,
	service_days INTEGER,
	extraction_method TEXT,
	confidence_score DOUBLE PRECISION,
	requires_review BOOLEAN,
	raw_extracted_data JSONB,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

const createBillSQL = `
INSERT INTO bills (id, created_at, updated_at) VALUES ($1, NOW(), NOW())`

const saveBillSQL = `
UPDATE bills SET
	property_name = $2,
	utility_provider = $3,
	utility_type = $4,
	account_number = $5,
	meter_serial_number = $6,
	billing_date = $7,
	billing_start_date = $8,
	billing_end_date = $9,
	due_date = $10,
	current_charges = $11,
	previous_balance = $12,
	past_due_balance = $13,
	total_amount_due = $14,
	units_used = $15,
	unit_type = $16,
	payments = $17,
	balance_forward = $18,
	water_charges = $19,
	sewer_charges = $20,
	storm_water_charges = $21,
	environmental_fee = $22,
	trash_charges = $23,
	gas_charges = $24,
	electric_charges = $25,
	rate_plan = $26,
	service_days = $27,
	extraction_method = $28,
	confidence_score = $29,
	requires_review = $30,
	raw_extracted_data = $31,
	updated_at = NOW()
WHERE id = $1`

// PostgresStore persists bills in a Postgres bills table.
type PostgresStore struct {
	pool Pool
}

// NewPostgres connects a pool to the given DSN.
func NewPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, eris.Wrap(err, "connect postgres")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Tests use this with a
// mock pool.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the bills table when it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, migrateSQL); err != nil {
		return eris.Wrap(err, "migrate bills table")
	}
	return nil
}

// CreateBill inserts a stub row and returns its id.
func (s *PostgresStore) CreateBill(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if _, err := s.pool.Exec(ctx, createBillSQL, id); err != nil {
		return "", eris.Wrap(err, "create bill stub")
	}
	return id, nil
}

// SaveBill writes the full record onto an existing stub row.
func (s *PostgresStore) SaveBill(ctx context.Context, billID string, bill *model.NormalizedBill, method string) error {
	rawJSON, err := json.Marshal(bill.RawExtractedData)
	if err != nil {
		return eris.Wrap(err, "marshal raw payload")
	}

	tag, err := s.pool.Exec(ctx, saveBillSQL,
		billID,
		bill.PropertyName,
		bill.UtilityProvider,
		string(bill.UtilityType),
		bill.AccountNumber,
		bill.MeterSerialNumber,
		bill.BillingDate,
		bill.BillingStartDate,
		bill.BillingEndDate,
		bill.DueDate,
		bill.CurrentCharges,
		bill.PreviousBalance,
		bill.PastDueBalance,
		bill.TotalAmountDue,
		bill.UnitsUsed,
		bill.UnitType,
		bill.Payments,
		bill.BalanceForward,
		bill.WaterCharges,
		bill.SewerCharges,
		bill.StormWaterCharges,
		bill.EnvironmentalFee,
		bill.TrashCharges,
		bill.GasCharges,
		bill.ElectricCharges,
		bill.RatePlan,
		bill.ServiceDays,
		method,
		bill.ConfidenceScore,
		bill.RequiresReview(),
		rawJSON,
	)
	if err != nil {
		return eris.Wrap(err, "save bill")
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("bill %s not found", billID)
	}
	return nil
}

// Ping checks connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
