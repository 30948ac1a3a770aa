package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hr_contract_notifier/internal/domain/contract"
)

var ErrContractNotFound = errors.New("contract not found")
var ErrEmployeeNotFound = errors.New("employee not found")

const contractColumns = `id, contract_number, employee_id, status, start_date, end_date,
               job_title, department_id, terminated_date, termination_reason`

// PostgresContractRepository reads contracts owned by the HR application. It never writes.
type PostgresContractRepository struct {
	db *sql.DB
}

func NewPostgresContractRepository(db *sql.DB) *PostgresContractRepository {
	return &PostgresContractRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContract(row rowScanner) (*contract.Contract, error) {
	c := &contract.Contract{}
	err := row.Scan(&c.ID, &c.Number, &c.EmployeeID, &c.Status, &c.StartDate, &c.EndDate,
		&c.JobTitle, &c.DepartmentID, &c.TerminatedDate, &c.TerminationReason)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresContractRepository) GetByID(ctx context.Context, id int64) (*contract.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contract WHERE id = $1`
	c, err := scanContract(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContractNotFound
		}
		return nil, fmt.Errorf("error getting contract by ID: %w", err)
	}
	return c, nil
}

func (r *PostgresContractRepository) ListActiveEndingBetween(ctx context.Context, after, until time.Time) ([]*contract.Contract, error) {
	query := `SELECT ` + contractColumns + `
               FROM contract
               WHERE status = $1
                 AND end_date IS NOT NULL
                 AND end_date > $2::date
                 AND end_date <= $3::date
               ORDER BY end_date, id`

	rows, err := r.db.QueryContext(ctx, query, contract.StatusActive, after.Format(time.DateOnly), until.Format(time.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("error listing expiring contracts: %w", err)
	}
	defer rows.Close()

	contracts := make([]*contract.Contract, 0)
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning expiring contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expiring contracts: %w", err)
	}
	return contracts, nil
}

func (r *PostgresContractRepository) GetEmployee(ctx context.Context, employeeID int64) (*contract.Employee, error) {
	query := `SELECT e.id, e.employee_code, e.full_name, e.department_id, d.name
               FROM employee e
               LEFT JOIN department d ON d.id = e.department_id
               WHERE e.id = $1`
	e := &contract.Employee{}
	err := r.db.QueryRowContext(ctx, query, employeeID).Scan(&e.ID, &e.Code, &e.FullName, &e.DepartmentID, &e.DepartmentName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("error getting employee by ID: %w", err)
	}
	return e, nil
}
