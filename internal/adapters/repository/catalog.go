package repository

import (
	"context"
	"database/sql"

	"github.com/okian/pcdmatch/internal/apperr"
	"github.com/okian/pcdmatch/internal/domain/education"
	"github.com/okian/pcdmatch/internal/domain/model"
	"github.com/okian/pcdmatch/internal/domain/sets"
)

const (
	publishedJobsQuery = `SELECT j.id, j.title, COALESCE(c.name, ''), j.status, COALESCE(j.min_education, ''),
		j.field_of_study_id, COALESCE(f.name, ''), COALESCE(j.city, ''), COALESCE(j.state, ''),
		COALESCE(j.employment_type, ''), COALESCE(j.work_model, '')
		FROM jobs j
		LEFT JOIN companies c ON c.id = j.company_id
		LEFT JOIN fields_of_study f ON f.id = j.field_of_study_id
		WHERE LOWER(j.status) = 'published'
		ORDER BY j.id`
	publishedJobSubtypesQuery = `SELECT js.job_id, js.subtype_id FROM job_subtypes js
		JOIN jobs j ON j.id = js.job_id WHERE LOWER(j.status) = 'published'`
	publishedJobFeaturesQuery = `SELECT ja.job_id, ja.accessibility_id FROM job_accessibilities ja
		JOIN jobs j ON j.id = ja.job_id WHERE LOWER(j.status) = 'published'`
	countPublishedQuery = `SELECT COUNT(*) FROM jobs WHERE LOWER(status) = 'published'`
)

// LoadPublishedJobs returns every published job ordered by id, with accepted
// subtypes and offered features attached. An empty catalog is not an error.
func (s *Store) LoadPublishedJobs(ctx context.Context) ([]model.JobListing, error) {
	const op = "repository.LoadPublishedJobs"

	jobs, byID, err := s.publishedJobs(ctx)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	if len(jobs) == 0 {
		return jobs, nil
	}

	err = eachPair(ctx, s.db, publishedJobSubtypesQuery, func(jobID, subtype int64) {
		if i, ok := byID[model.JobID(jobID)]; ok {
			jobs[i].AcceptedSubtypes.Add(model.SubtypeID(subtype))
		}
	})
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	err = eachPair(ctx, s.db, publishedJobFeaturesQuery, func(jobID, feature int64) {
		if i, ok := byID[model.JobID(jobID)]; ok {
			jobs[i].OfferedFeatures.Add(model.FeatureID(feature))
		}
	})
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	return jobs, nil
}

func (s *Store) publishedJobs(ctx context.Context) ([]model.JobListing, map[model.JobID]int, error) {
	rows, err := s.db.QueryContext(ctx, publishedJobsQuery)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var (
		jobs = []model.JobListing{}
		byID = map[model.JobID]int{}
	)
	for rows.Next() {
		var (
			j        model.JobListing
			minLevel string
			fieldID  sql.NullInt64
		)
		if err := rows.Scan(&j.ID, &j.Title, &j.Company, &j.Status, &minLevel, &fieldID,
			&j.FieldOfStudyName, &j.Location.City, &j.Location.State, &j.EmploymentType, &j.WorkModel); err != nil {
			return nil, nil, err
		}
		j.MinEducation = education.Parse(minLevel)
		j.MinEducationLabel = minLevel
		if fieldID.Valid {
			id := model.FieldOfStudyID(fieldID.Int64)
			j.FieldOfStudy = &id
		}
		j.AcceptedSubtypes = sets.New[model.SubtypeID](0)
		j.OfferedFeatures = sets.New[model.FeatureID](0)
		byID[j.ID] = len(jobs)
		jobs = append(jobs, j)
	}
	return jobs, byID, rows.Err()
}

// CountPublishedJobs returns the size of the published catalog.
func (s *Store) CountPublishedJobs(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, countPublishedQuery).Scan(&n); err != nil {
		return 0, apperr.Wrap("repository.CountPublishedJobs", err)
	}
	return n, nil
}

// eachPair scans a two-column integer result.
func eachPair(ctx context.Context, db *sql.DB, query string, fn func(a, b int64), args ...any) error {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a, b int64
		if err := rows.Scan(&a, &b); err != nil {
			return err
		}
		fn(a, b)
	}
	return rows.Err()
}
