package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Calculation is a completed calculation stored in the database.
type Calculation struct {
	ID       string
	OperandA int
	Operator string
	OperandB int
	// Result is the rendered result, e.g. "7", "2.5" or "Error".
	Result string
	// ResultValue is nil when the calculation failed.
	ResultValue *float64
	IsError     bool
	CreatedAt   time.Time
}

// CalculationRepository provides access to the calculation log.
type CalculationRepository struct {
	db *sql.DB
}

// Calculations returns the calculation repository for this store.
func (s *Store) Calculations() *CalculationRepository {
	return &CalculationRepository{db: s.db}
}

// Create inserts a calculation. ID and CreatedAt are filled in when empty.
func (r *CalculationRepository) Create(c *Calculation) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.CreatedAt = c.CreatedAt.UTC()

	var value sql.NullFloat64
	if c.ResultValue != nil {
		value = sql.NullFloat64{Float64: *c.ResultValue, Valid: true}
	}

	_, err := r.db.Exec(
		`INSERT INTO calculations (id, operand_a, operator, operand_b, result, result_value, is_error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.OperandA, c.Operator, c.OperandB, c.Result, value, c.IsError, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert calculation: %w", err)
	}
	return nil
}

// GetByID retrieves a calculation by its ID.
func (r *CalculationRepository) GetByID(id string) (*Calculation, error) {
	row := r.db.QueryRow(
		`SELECT id, operand_a, operator, operand_b, result, result_value, is_error, created_at
		 FROM calculations WHERE id = ?`,
		id,
	)

	c, err := scanCalculation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// Recent returns up to limit calculations, newest first.
func (r *CalculationRepository) Recent(limit int) ([]*Calculation, error) {
	if limit <= 0 {
		return []*Calculation{}, nil
	}

	rows, err := r.db.Query(
		`SELECT id, operand_a, operator, operand_b, result, result_value, is_error, created_at
		 FROM calculations ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	calcs := []*Calculation{}
	for rows.Next() {
		c, err := scanCalculation(rows)
		if err != nil {
			return nil, err
		}
		calcs = append(calcs, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return calcs, nil
}

// Count returns the number of stored calculations.
func (r *CalculationRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM calculations`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCalculation(s scanner) (*Calculation, error) {
	c := &Calculation{}
	var value sql.NullFloat64
	var isError int

	err := s.Scan(&c.ID, &c.OperandA, &c.Operator, &c.OperandB, &c.Result, &value, &isError, &c.CreatedAt)
	if err != nil {
		return nil, err
	}

	if value.Valid {
		v := value.Float64
		c.ResultValue = &v
	}
	c.IsError = isError != 0
	return c, nil
}
