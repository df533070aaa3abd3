package leads

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// Repository persists marketing leads.
type Repository interface {
	Insert(ctx context.Context, payload Payload) (*Lead, error)
	Update(ctx context.Context, id int64, payload Payload) (*Lead, error)
}

// leadColumns is the fixed select order every query scans in.
const leadColumns = "id, name, first_name, clinic_name, origin_url, phone, email, " +
	"qualification_type, data_json, schedule_event, utms_json, created_at, updated_at"

// SQLRepository stores leads through database/sql with the pq driver.
type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Insert(ctx context.Context, payload Payload) (*Lead, error) {
	columns := sortedColumns(payload)

	var query string
	var args []any
	if len(columns) == 0 {
		query = fmt.Sprintf("INSERT INTO leads_mkt DEFAULT VALUES RETURNING %s", leadColumns)
	} else {
		placeholders := make([]string, len(columns))
		args = make([]any, len(columns))
		for i, col := range columns {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			args[i] = payload[col]
		}
		query = fmt.Sprintf("INSERT INTO leads_mkt (%s) VALUES (%s) RETURNING %s",
			strings.Join(columns, ", "), strings.Join(placeholders, ", "), leadColumns)
	}

	lead, err := scanLead(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("leads: insert: %w", err)
	}
	return lead, nil
}

func (r *SQLRepository) Update(ctx context.Context, id int64, payload Payload) (*Lead, error) {
	columns := sortedColumns(payload)

	sets := make([]string, 0, len(columns)+1)
	args := make([]any, 0, len(columns)+1)
	for i, col := range columns {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+1))
		args = append(args, payload[col])
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE leads_mkt SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), leadColumns)

	lead, err := scanLead(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("leads: update %d: %w", id, err)
	}
	return lead, nil
}

func sortedColumns(payload Payload) []string {
	columns := make([]string, 0, len(payload))
	for col := range payload {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}

func scanLead(row *sql.Row) (*Lead, error) {
	var lead Lead
	err := row.Scan(&lead.ID, &lead.Name, &lead.FirstName, &lead.ClinicName,
		&lead.OriginURL, &lead.Phone, &lead.Email, &lead.QualificationType,
		&lead.DataJSON, &lead.ScheduleEvent, &lead.UTMsJSON,
		&lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &lead, nil
}
