package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/yusufkecer/medfit-backend/internal/db"
	"github.com/yusufkecer/medfit-backend/internal/domain"
)

const assessmentColumns = `id, client_id, taken_at, notes, bmi, bmi_category, bmi_risk,
	whr, whr_category, result_profile, created_at, updated_at`

type AssessmentRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

var _ domain.AssessmentRepository = (*AssessmentRepository)(nil)

func NewAssessmentRepository(conn *sql.DB, dialect db.Dialect) *AssessmentRepository {
	return &AssessmentRepository{db: conn, dialect: dialect}
}

// Create stores the assessment, its measurements and its cached result in
// one transaction. Absent values (zero, negative, non-finite) are not stored.
func (r *AssessmentRepository) Create(ctx context.Context, a *domain.Assessment) (int64, error) {
	now := time.Now().UTC().Truncate(time.Second)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	args := append([]any{a.ClientID, formatTime(a.TakenAt), nullString(a.Notes)}, resultArgs(a.Result)...)
	args = append(args, formatTime(now), formatTime(now))
	id, err := insertID(ctx, tx, r.dialect,
		`INSERT INTO assessments (client_id, taken_at, notes, bmi, bmi_category, bmi_risk,
		 whr, whr_category, result_profile, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create assessment: %w", err)
	}
	if err := r.insertMeasurements(ctx, tx, id, a.Measurements); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit assessment: %w", err)
	}

	a.ID = id
	a.CreatedAt = now
	a.UpdatedAt = now
	return id, nil
}

func (r *AssessmentRepository) GetByID(ctx context.Context, id int64) (*domain.Assessment, error) {
	list, err := r.list(ctx, `SELECT `+assessmentColumns+` FROM assessments WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (r *AssessmentRepository) GetAll(ctx context.Context) ([]domain.Assessment, error) {
	return r.list(ctx, `SELECT `+assessmentColumns+` FROM assessments ORDER BY taken_at DESC, id DESC`)
}

func (r *AssessmentRepository) GetByClientID(ctx context.Context, clientID int64) ([]domain.Assessment, error) {
	return r.list(ctx,
		`SELECT `+assessmentColumns+` FROM assessments WHERE client_id = ? ORDER BY taken_at DESC, id DESC`,
		clientID,
	)
}

func (r *AssessmentRepository) GetLatestByClientID(ctx context.Context, clientID int64) (*domain.Assessment, error) {
	list, err := r.list(ctx,
		`SELECT `+assessmentColumns+` FROM assessments WHERE client_id = ? ORDER BY taken_at DESC, id DESC LIMIT 1`,
		clientID,
	)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// GetByPeriod returns assessments taken within [from, to], both inclusive.
func (r *AssessmentRepository) GetByPeriod(ctx context.Context, from, to time.Time) ([]domain.Assessment, error) {
	return r.list(ctx,
		`SELECT `+assessmentColumns+` FROM assessments WHERE taken_at >= ? AND taken_at <= ? ORDER BY taken_at DESC, id DESC`,
		formatTime(from), formatTime(to),
	)
}

// Update replaces the raw data of an assessment together with its cached
// result. A nil Result clears the cache.
func (r *AssessmentRepository) Update(ctx context.Context, a *domain.Assessment) (bool, error) {
	now := time.Now().UTC().Truncate(time.Second)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	args := append([]any{formatTime(a.TakenAt), nullString(a.Notes)}, resultArgs(a.Result)...)
	args = append(args, formatTime(now), a.ID)
	ok, err := execAffected(ctx, tx, r.dialect,
		`UPDATE assessments SET taken_at = ?, notes = ?, bmi = ?, bmi_category = ?, bmi_risk = ?,
		 whr = ?, whr_category = ?, result_profile = ?, updated_at = ? WHERE id = ?`,
		args...,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update assessment: %w", err)
	}
	if !ok {
		return false, nil
	}
	if _, err := tx.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM assessment_measurements WHERE assessment_id = ?`), a.ID); err != nil {
		return false, fmt.Errorf("failed to clear measurements: %w", err)
	}
	if err := r.insertMeasurements(ctx, tx, a.ID, a.Measurements); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit assessment: %w", err)
	}

	a.UpdatedAt = now
	return true, nil
}

// SaveResults replaces the cached results of several assessments in one
// transaction. Unknown ids are ignored.
func (r *AssessmentRepository) SaveResults(ctx context.Context, results map[int64]domain.AssessmentResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := r.dialect.Rebind(`UPDATE assessments SET bmi = ?, bmi_category = ?, bmi_risk = ?,
		whr = ?, whr_category = ?, result_profile = ? WHERE id = ?`)
	for id, result := range results {
		args := append(resultArgs(&result), id)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to save result of assessment %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit results: %w", err)
	}
	return nil
}

// resultArgs flattens a result into the bmi, bmi_category, bmi_risk, whr,
// whr_category and result_profile columns.
func resultArgs(result *domain.AssessmentResult) []any {
	var bmi, whr sql.NullFloat64
	var bmiCategory, bmiRisk, whrCategory, profile sql.NullString
	if result != nil {
		profile = sql.NullString{String: result.Profile, Valid: true}
		if result.BMI != nil {
			bmi = sql.NullFloat64{Float64: result.BMI.Value, Valid: true}
			bmiCategory = sql.NullString{String: result.BMI.Category, Valid: true}
			bmiRisk = sql.NullString{String: result.BMI.Risk, Valid: true}
		}
		if result.WHR != nil {
			whr = sql.NullFloat64{Float64: result.WHR.Value, Valid: true}
			whrCategory = sql.NullString{String: result.WHR.Category, Valid: true}
		}
	}
	return []any{bmi, bmiCategory, bmiRisk, whr, whrCategory, profile}
}

func (r *AssessmentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM assessment_measurements WHERE assessment_id = ?`), id); err != nil {
		return false, fmt.Errorf("failed to delete measurements: %w", err)
	}
	ok, err := execAffected(ctx, tx, r.dialect, `DELETE FROM assessments WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete assessment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit delete: %w", err)
	}
	return ok, nil
}

func (r *AssessmentRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assessments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count assessments: %w", err)
	}
	return n, nil
}

func (r *AssessmentRepository) insertMeasurements(ctx context.Context, tx *sql.Tx, id int64, m domain.Measurements) error {
	for name, value := range m {
		if !domain.IsPresent(value) {
			continue
		}
		if _, err := tx.ExecContext(ctx, r.dialect.Rebind(
			`INSERT INTO assessment_measurements (assessment_id, name, measured_value) VALUES (?, ?, ?)`),
			id, string(name), value,
		); err != nil {
			return fmt.Errorf("failed to store measurement %s: %w", name, err)
		}
	}
	return nil
}

// list runs an assessment query and attaches measurements with one extra
// query for the whole page.
func (r *AssessmentRepository) list(ctx context.Context, query string, args ...any) ([]domain.Assessment, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	var assessments []domain.Assessment
	index := map[int64]int{}
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		index[a.ID] = len(assessments)
		assessments = append(assessments, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(assessments) == 0 {
		return assessments, nil
	}

	ids := make([]any, len(assessments))
	for i, a := range assessments {
		ids[i] = a.ID
	}
	mrows, err := r.db.QueryContext(ctx, r.dialect.Rebind(
		`SELECT assessment_id, name, measured_value FROM assessment_measurements WHERE assessment_id IN (`+placeholders(len(ids))+`)`),
		ids...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load measurements: %w", err)
	}
	defer mrows.Close()

	for mrows.Next() {
		var (
			id    int64
			name  string
			value float64
		)
		if err := mrows.Scan(&id, &name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		if i, ok := index[id]; ok {
			assessments[i].Measurements[domain.MeasurementName(name)] = value
		}
	}
	return assessments, mrows.Err()
}

func scanAssessment(s scanner) (*domain.Assessment, error) {
	var (
		a                                        domain.Assessment
		takenAt, createdAt, updatedAt            string
		notes, bmiCategory, bmiRisk, whrCategory sql.NullString
		profile                                  sql.NullString
		bmi, whr                                 sql.NullFloat64
		err                                      error
	)
	if err = s.Scan(&a.ID, &a.ClientID, &takenAt, &notes, &bmi, &bmiCategory, &bmiRisk,
		&whr, &whrCategory, &profile, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if a.TakenAt, err = parseTime(takenAt); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	a.Notes = stringPtr(notes)
	a.Measurements = domain.Measurements{}

	if profile.Valid {
		a.Result = &domain.AssessmentResult{Profile: profile.String}
		if bmi.Valid {
			a.Result.BMI = &domain.MetricResult{Value: bmi.Float64, Category: bmiCategory.String, Risk: bmiRisk.String}
		}
		if whr.Valid {
			a.Result.WHR = &domain.MetricResult{Value: whr.Float64, Category: whrCategory.String}
		}
	}
	return &a, nil
}
