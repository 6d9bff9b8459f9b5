package repository

import (
	"context"
	"fmt"
	"strings"

	"rental-terms-qa/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const rentalTermsTable = "rental_terms"

const createRentalTermsTable = `CREATE TABLE IF NOT EXISTS rental_terms (
	id UUID PRIMARY KEY,
	country TEXT,
	vehicle_type TEXT,
	rental_information TEXT,
	payment_information TEXT,
	protection_conditions TEXT,
	authorized_driving_areas TEXT,
	extras TEXT,
	other_charges_and_taxes TEXT,
	vat TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type RentalTermsRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewRentalTermsRepository(db *pgxpool.Pool, logger *zap.Logger) *RentalTermsRepository {
	return &RentalTermsRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureSchema creates the rental_terms table when it does not exist yet.
func (r *RentalTermsRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createRentalTermsTable); err != nil {
		return fmt.Errorf("failed to create %s table: %w", rentalTermsTable, err)
	}
	return nil
}

func (r *RentalTermsRepository) Create(ctx context.Context, record *models.RentalTermsRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	sql, args, err := insertRecordQuery(record).ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// FetchAll returns every record in insertion order. It is a full table scan.
func (r *RentalTermsRepository) FetchAll(ctx context.Context) ([]models.RentalTermsRecord, error) {
	sql, args, err := selectAllQuery().ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", rentalTermsTable, err)
	}
	defer rows.Close()

	var records []models.RentalTermsRecord
	for rows.Next() {
		var (
			id          uuid.UUID
			country     pgtype.Text
			vehicleType pgtype.Text
			sections    [len(models.Sections)]pgtype.Text
		)
		dest := []any{&id, &country, &vehicleType}
		for i := range sections {
			dest = append(dest, &sections[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", rentalTermsTable, err)
		}

		record := models.RentalTermsRecord{
			ID:          id,
			Country:     textOr(country, models.UnknownValue),
			VehicleType: textOr(vehicleType, models.UnknownValue),
		}
		for i, section := range models.Sections {
			record.SetSection(section, textOr(sections[i], ""))
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", rentalTermsTable, err)
	}

	r.logger.Debug("Rental terms fetched", zap.Int("records", len(records)))
	return records, nil
}

func (r *RentalTermsRepository) Count(ctx context.Context) (int, error) {
	sql, args, err := squirrel.Select("COUNT(*)").
		From(rentalTermsTable).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *RentalTermsRepository) DeleteAll(ctx context.Context) (int64, error) {
	sql, args, err := squirrel.Delete(rentalTermsTable).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func recordColumns() []string {
	columns := []string{"id", "country", "vehicle_type"}
	for _, section := range models.Sections {
		columns = append(columns, string(section))
	}
	return columns
}

func selectAllQuery() squirrel.SelectBuilder {
	return squirrel.Select(recordColumns()...).
		From(rentalTermsTable).
		OrderBy("created_at ASC", "id ASC").
		PlaceholderFormat(squirrel.Dollar)
}

func insertRecordQuery(record *models.RentalTermsRecord) squirrel.InsertBuilder {
	values := []any{record.ID, nullableText(record.Country), nullableText(record.VehicleType)}
	for _, section := range models.Sections {
		values = append(values, nullableText(record.Section(section)))
	}

	return squirrel.Insert(rentalTermsTable).
		Columns(recordColumns()...).
		Values(values...).
		PlaceholderFormat(squirrel.Dollar)
}

// nullableText stores blank strings as NULL and strips invalid UTF-8, which Postgres rejects.
func nullableText(s string) pgtype.Text {
	if strings.TrimSpace(s) == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: sanitizeUTF8(s), Valid: true}
}

func textOr(t pgtype.Text, fallback string) string {
	if !t.Valid || strings.TrimSpace(t.String) == "" {
		return fallback
	}
	return t.String
}
