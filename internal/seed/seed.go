// Package seed loads a small, self-consistent dataset into the matching
// schema. It backs local development and end-to-end tests.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Named is a row of a lookup table.
type Named struct {
	ID   int64
	Name string
}

// Subtype is a disability subtype and the disability type it belongs to.
type Subtype struct {
	ID       int64
	Name     string
	TypeName string
}

// Pair is a two-column link row, e.g. barrier/feature or subtype/barrier.
type Pair [2]int64

// Candidate is a candidate row plus its link tables.
type Candidate struct {
	ID        int64
	Name      string
	Education string
	City      string
	State     string
	Relocate  bool
	Travel    bool
	Scope     string
	Active    bool
	Subtypes  []int64
	// Barriers holds (subtype, barrier) pairs.
	Barriers []Pair
	Fields   []int64
}

// Job is a job row plus its link tables. Zero ids and empty strings are
// stored as NULL.
type Job struct {
	ID              int64
	CompanyID       int64
	Title           string
	Status          string
	MinEducation    string
	FieldOfStudyID  int64
	City            string
	State           string
	EmploymentType  string
	WorkModel       string
	Subtypes        []int64
	Accessibilities []int64
}

// Dataset is everything Apply writes.
type Dataset struct {
	FieldsOfStudy   []Named
	Subtypes        []Subtype
	Barriers        []Named
	Accessibilities []Named
	// Mappings holds (barrier, feature) pairs.
	Mappings   []Pair
	Companies  []Named
	Candidates []Candidate
	Jobs       []Job
}

// tables in delete order; children first.
var tables = []string{
	"job_accessibilities",
	"job_subtypes",
	"jobs",
	"companies",
	"candidate_fields_of_study",
	"candidate_barriers",
	"candidate_subtypes",
	"candidates",
	"barrier_accessibilities",
	"accessibilities",
	"barriers",
	"disability_subtypes",
	"fields_of_study",
}

// Apply replaces the content of every matching table with d in a single
// transaction. The schema must already exist.
func Apply(ctx context.Context, db *sql.DB, d Dataset) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrApply, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, t := range tables {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return fmt.Errorf("%w: clear %s: %w", ErrApply, t, err)
		}
	}

	w := writer{ctx: ctx, tx: tx}
	for _, r := range d.FieldsOfStudy {
		w.exec("fields_of_study (id, name)", r.ID, r.Name)
	}
	for _, r := range d.Subtypes {
		w.exec("disability_subtypes (id, name, type_name)", r.ID, r.Name, r.TypeName)
	}
	for _, r := range d.Barriers {
		w.exec("barriers (id, description)", r.ID, r.Name)
	}
	for _, r := range d.Accessibilities {
		w.exec("accessibilities (id, description)", r.ID, r.Name)
	}
	for _, p := range d.Mappings {
		w.exec("barrier_accessibilities (barrier_id, accessibility_id)", p[0], p[1])
	}
	for _, r := range d.Companies {
		w.exec("companies (id, name)", r.ID, r.Name)
	}
	for _, c := range d.Candidates {
		w.exec("candidates (id, name, education_level, city, state, willing_to_relocate, willing_to_travel, availability_scope, is_active)",
			c.ID, c.Name, nullString(c.Education), nullString(c.City), nullString(c.State), c.Relocate, c.Travel, nullString(c.Scope), c.Active)
		for _, s := range c.Subtypes {
			w.exec("candidate_subtypes (candidate_id, subtype_id)", c.ID, s)
		}
		for _, b := range c.Barriers {
			w.exec("candidate_barriers (candidate_id, subtype_id, barrier_id)", c.ID, b[0], b[1])
		}
		for _, f := range c.Fields {
			w.exec("candidate_fields_of_study (candidate_id, field_of_study_id)", c.ID, f)
		}
	}
	for _, j := range d.Jobs {
		w.exec("jobs (id, company_id, title, status, min_education, field_of_study_id, city, state, employment_type, work_model)",
			j.ID, nullID(j.CompanyID), j.Title, j.Status, nullString(j.MinEducation), nullID(j.FieldOfStudyID),
			nullString(j.City), nullString(j.State), nullString(j.EmploymentType), nullString(j.WorkModel))
		for _, s := range j.Subtypes {
			w.exec("job_subtypes (job_id, subtype_id)", j.ID, s)
		}
		for _, a := range j.Accessibilities {
			w.exec("job_accessibilities (job_id, accessibility_id)", j.ID, a)
		}
	}
	if err = w.err; err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrApply, err)
	}
	return nil
}

// writer keeps the first insert error and skips the rest.
type writer struct {
	ctx context.Context
	tx  *sql.Tx
	err error
}

func (w *writer) exec(target string, args ...any) {
	if w.err != nil {
		return
	}
	marks := make([]string, len(args))
	for i := range args {
		marks[i] = fmt.Sprintf("$%d", i+1)
	}
	query := "INSERT INTO " + target + " VALUES (" + strings.Join(marks, ", ") + ")"
	if _, err := w.tx.ExecContext(w.ctx, query, args...); err != nil {
		w.err = fmt.Errorf("%w: insert %s: %w", ErrApply, target, err)
	}
}

func nullString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func nullID(id int64) any {
	if id <= 0 {
		return nil
	}
	return id
}
