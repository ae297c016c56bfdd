package repository

import (
	"context"

	"github.com/okian/pcdmatch/internal/apperr"
	"github.com/okian/pcdmatch/pkg/logger"
)

// schema is plain DDL accepted by both PostgreSQL and SQLite.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS fields_of_study (
		id   BIGINT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS disability_subtypes (
		id        BIGINT PRIMARY KEY,
		name      TEXT NOT NULL,
		type_name TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS barriers (
		id          BIGINT PRIMARY KEY,
		description TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS accessibilities (
		id          BIGINT PRIMARY KEY,
		description TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS barrier_accessibilities (
		barrier_id       BIGINT NOT NULL REFERENCES barriers (id),
		accessibility_id BIGINT NOT NULL REFERENCES accessibilities (id),
		PRIMARY KEY (barrier_id, accessibility_id)
	)`,
	`CREATE TABLE IF NOT EXISTS candidates (
		id                  BIGINT PRIMARY KEY,
		name                TEXT NOT NULL,
		education_level     TEXT,
		city                TEXT,
		state               TEXT,
		willing_to_relocate BOOLEAN NOT NULL DEFAULT FALSE,
		willing_to_travel   BOOLEAN NOT NULL DEFAULT FALSE,
		availability_scope  TEXT,
		is_active           BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS candidate_subtypes (
		candidate_id BIGINT NOT NULL REFERENCES candidates (id),
		subtype_id   BIGINT NOT NULL REFERENCES disability_subtypes (id),
		PRIMARY KEY (candidate_id, subtype_id)
	)`,
	`CREATE TABLE IF NOT EXISTS candidate_barriers (
		candidate_id BIGINT NOT NULL REFERENCES candidates (id),
		subtype_id   BIGINT NOT NULL REFERENCES disability_subtypes (id),
		barrier_id   BIGINT NOT NULL REFERENCES barriers (id),
		PRIMARY KEY (candidate_id, subtype_id, barrier_id)
	)`,
	`CREATE TABLE IF NOT EXISTS candidate_fields_of_study (
		candidate_id      BIGINT NOT NULL REFERENCES candidates (id),
		field_of_study_id BIGINT NOT NULL REFERENCES fields_of_study (id),
		PRIMARY KEY (candidate_id, field_of_study_id)
	)`,
	`CREATE TABLE IF NOT EXISTS companies (
		id   BIGINT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id                BIGINT PRIMARY KEY,
		company_id        BIGINT REFERENCES companies (id),
		title             TEXT NOT NULL,
		status            TEXT NOT NULL DEFAULT 'draft',
		min_education     TEXT,
		field_of_study_id BIGINT REFERENCES fields_of_study (id),
		city              TEXT,
		state             TEXT,
		employment_type   TEXT,
		work_model        TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS job_subtypes (
		job_id     BIGINT NOT NULL REFERENCES jobs (id),
		subtype_id BIGINT NOT NULL REFERENCES disability_subtypes (id),
		PRIMARY KEY (job_id, subtype_id)
	)`,
	`CREATE TABLE IF NOT EXISTS job_accessibilities (
		job_id           BIGINT NOT NULL REFERENCES jobs (id),
		accessibility_id BIGINT NOT NULL REFERENCES accessibilities (id),
		PRIMARY KEY (job_id, accessibility_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs (status)`,
	`CREATE INDEX IF NOT EXISTS idx_candidate_barriers_barrier ON candidate_barriers (barrier_id)`,
}

// Migrate creates any missing table. It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	const op = "repository.Migrate"
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return apperr.WrapKind(op, apperr.ErrDependency, err)
		}
	}
	s.logger.Info(ctx, "schema ready", logger.String("driver", s.driver), logger.Int("statements", len(schema)))
	return nil
}
