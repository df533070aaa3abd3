package onboarding

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

// PgxPool is the subset of pgxpool.Pool the repository needs; it is also
// satisfied by pgxmock pools in tests.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores records in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("onboarding: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// recordColumns is the fixed select order every scan uses.
const recordColumns = `id, name, timezone, address, google_maps_link, operating_hours, parking,
	assistant_name, bot_reply_to, crm_provider, communication_style,
	booking_reminder_today, booking_reminder_tomorrow,
	phone, clinic_notification_phone,
	is_group_bot_activated, is_voice_reply_activated, is_ai_allow_to_book_appointments,
	is_booking_reminders_activated, is_smart_followups_activated, deactivate_on_human_reply,
	ai_reactivation_interval, reactivation_lead_status_ids,
	availability_blocks, operating_hours_blocks, instagram_links, is_clinic_info_added,
	custom_instructions_inputs, calendar_logic_json, client_data, products, pain_points, onboarding_data,
	created_at, updated_at`

// Insert creates a new row from the column write.
func (r *PostgresRepository) Insert(ctx context.Context, write ColumnWrite) (*Record, error) {
	columns, args := encodeWrite(write)

	var query string
	if len(columns) == 0 {
		query = fmt.Sprintf(`INSERT INTO chatbot_onboarding DEFAULT VALUES RETURNING %s`, recordColumns)
	} else {
		placeholders := make([]string, len(columns))
		for i := range columns {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		}
		query = fmt.Sprintf(
			`INSERT INTO chatbot_onboarding (%s) VALUES (%s) RETURNING %s`,
			strings.Join(columns, ", "), strings.Join(placeholders, ", "), recordColumns,
		)
	}

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("onboarding: insert: %w", err)
	}
	return rec, nil
}

// Get fetches a record by id.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM chatbot_onboarding WHERE id = $1`, recordColumns)
	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("onboarding: select: %w", err)
	}
	return rec, nil
}

// Merge locks the row, runs the merge function against the current state,
// and writes the produced columns — all inside one transaction so a
// concurrent writer cannot merge against a stale snapshot.
func (r *PostgresRepository) Merge(ctx context.Context, id int64, merge func(existing *Record) ColumnWrite) (*Record, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("onboarding: begin merge: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := fmt.Sprintf(`SELECT %s FROM chatbot_onboarding WHERE id = $1 FOR UPDATE`, recordColumns)
	existing, err := scanRecord(tx.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("onboarding: lock row: %w", err)
	}

	columns, args := encodeWrite(merge(existing))
	assignments := make([]string, 0, len(columns)+1)
	for i, col := range columns {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", col, i+1))
	}
	assignments = append(assignments, "updated_at = now()")
	args = append(args, id)

	updateQuery := fmt.Sprintf(
		`UPDATE chatbot_onboarding SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(assignments, ", "), len(args), recordColumns,
	)
	rec, err := scanRecord(tx.QueryRow(ctx, updateQuery, args...))
	if err != nil {
		return nil, fmt.Errorf("onboarding: update: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("onboarding: commit merge: %w", err)
	}
	return rec, nil
}

// encodeWrite flattens a column write into sorted column names and pgx-ready
// arguments. Buckets and recurrence blocks travel as jsonb bytes.
func encodeWrite(write ColumnWrite) ([]string, []any) {
	columns := make([]string, 0, len(write))
	for col := range write {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	args := make([]any, 0, len(columns))
	for _, col := range columns {
		args = append(args, encodeColumn(write[col]))
	}
	return columns, args
}

func encodeColumn(value any) any {
	switch v := value.(type) {
	case Bucket:
		data, _ := json.Marshal(v)
		return data
	case []RecurrenceBlock:
		data, _ := json.Marshal(v)
		return data
	case []int:
		out := make([]int32, len(v))
		for i, n := range v {
			out[i] = int32(n)
		}
		return out
	default:
		return value
	}
}

func scanRecord(row pgx.Row) (*Record, error) {
	var (
		rec           Record
		interval      *int32
		statusIDs     []int32
		blocksJSON    []byte
		hoursJSON     []byte
		instructions  []byte
		calendarLogic []byte
		clientProfile []byte
		products      []byte
		painPoints    []byte
		onboarding    []byte
	)

	err := row.Scan(
		&rec.ID, &rec.Name, &rec.Timezone, &rec.Address, &rec.GoogleMapsLink, &rec.OperatingHours, &rec.Parking,
		&rec.AssistantName, &rec.BotReplyTo, &rec.CRMProvider, &rec.CommunicationStyle,
		&rec.BookingReminderToday, &rec.BookingReminderTomorrow,
		&rec.Phone, &rec.NotificationPhone,
		&rec.GroupBotActivated, &rec.VoiceReplyActivated, &rec.AIAllowedToBook,
		&rec.BookingRemindersActive, &rec.SmartFollowupsActivated, &rec.DeactivateOnHumanReply,
		&interval, &statusIDs,
		&blocksJSON, &hoursJSON, &rec.InstagramLinks, &rec.ClinicInfoAdded,
		&instructions, &calendarLogic, &clientProfile, &products, &painPoints, &onboarding,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if interval != nil {
		n := int(*interval)
		rec.AIReactivationInterval = &n
	}
	if statusIDs != nil {
		rec.ReactivationLeadStatuses = make([]int, len(statusIDs))
		for i, id := range statusIDs {
			rec.ReactivationLeadStatuses[i] = int(id)
		}
	}
	if len(blocksJSON) > 0 {
		if err := json.Unmarshal(blocksJSON, &rec.AvailabilityBlocks); err != nil {
			return nil, fmt.Errorf("decode availability_blocks: %w", err)
		}
	}
	if len(hoursJSON) > 0 {
		if err := json.Unmarshal(hoursJSON, &rec.OperatingHoursBlocks); err != nil {
			return nil, fmt.Errorf("decode operating_hours_blocks: %w", err)
		}
	}

	for _, bucket := range []struct {
		data []byte
		dest *Bucket
	}{
		{instructions, &rec.Instructions},
		{calendarLogic, &rec.CalendarLogic},
		{clientProfile, &rec.ClientProfile},
		{products, &rec.Products},
		{painPoints, &rec.PainPoints},
		{onboarding, &rec.OnboardingData},
	} {
		if len(bucket.data) == 0 {
			continue
		}
		if err := json.Unmarshal(bucket.data, bucket.dest); err != nil {
			return nil, fmt.Errorf("decode bucket: %w", err)
		}
	}
	return &rec, nil
}
