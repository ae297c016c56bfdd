package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/okian/pcdmatch/internal/apperr"
	"github.com/okian/pcdmatch/internal/domain/education"
	"github.com/okian/pcdmatch/internal/domain/model"
	"github.com/okian/pcdmatch/internal/domain/sets"
)

const (
	candidateQuery = `SELECT id, COALESCE(education_level, ''), COALESCE(city, ''), COALESCE(state, ''),
		willing_to_relocate, willing_to_travel, COALESCE(availability_scope, ''), is_active
		FROM candidates WHERE id = $1`
	candidateSubtypesQuery = `SELECT subtype_id FROM candidate_subtypes WHERE candidate_id = $1`
	candidateBarriersQuery = `SELECT subtype_id, barrier_id FROM candidate_barriers WHERE candidate_id = $1`
	candidateFieldsQuery   = `SELECT field_of_study_id FROM candidate_fields_of_study WHERE candidate_id = $1`
)

// LoadCandidateProfile loads the candidate snapshot the engine matches on.
// An unknown id yields an error matching apperr.ErrNotFound.
func (s *Store) LoadCandidateProfile(ctx context.Context, id model.CandidateID) (model.CandidateProfile, error) {
	const op = "repository.LoadCandidateProfile"

	var (
		p                model.CandidateProfile
		educationLevel   string
		scope            string
		relocate, travel bool
		city, state      string
		active           bool
	)
	err := s.db.QueryRowContext(ctx, candidateQuery, int64(id)).Scan(
		&p.ID, &educationLevel, &city, &state, &relocate, &travel, &scope, &active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CandidateProfile{}, apperr.WrapKind(op, apperr.ErrNotFound, ErrNotFound)
	}
	if err != nil {
		return model.CandidateProfile{}, apperr.Wrap(op, err)
	}
	p.Active = active
	p.Education = education.Parse(educationLevel)
	p.Location = model.Location{City: city, State: state}
	p.Mobility = model.Mobility{
		WillingToRelocate: relocate,
		WillingToTravel:   travel,
		Scope:             model.ParseScope(scope),
	}

	if p.Subtypes, err = queryIDs[model.SubtypeID](ctx, s.db, candidateSubtypesQuery, int64(id)); err != nil {
		return model.CandidateProfile{}, apperr.Wrap(op, err)
	}
	if p.FieldsOfStudy, err = queryIDs[model.FieldOfStudyID](ctx, s.db, candidateFieldsQuery, int64(id)); err != nil {
		return model.CandidateProfile{}, apperr.Wrap(op, err)
	}
	if p.BarriersBySubtype, err = s.candidateBarriers(ctx, id); err != nil {
		return model.CandidateProfile{}, apperr.Wrap(op, err)
	}
	return p, nil
}

func (s *Store) candidateBarriers(ctx context.Context, id model.CandidateID) (map[model.SubtypeID]sets.Set[model.BarrierID], error) {
	rows, err := s.db.QueryContext(ctx, candidateBarriersQuery, int64(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.SubtypeID]sets.Set[model.BarrierID])
	for rows.Next() {
		var subtype, barrier int64
		if err := rows.Scan(&subtype, &barrier); err != nil {
			return nil, err
		}
		bs, ok := out[model.SubtypeID(subtype)]
		if !ok {
			bs = sets.New[model.BarrierID](1)
			out[model.SubtypeID(subtype)] = bs
		}
		bs.Add(model.BarrierID(barrier))
	}
	return out, rows.Err()
}

// queryIDs collects a single integer column into a set.
func queryIDs[T ~int64](ctx context.Context, db *sql.DB, query string, args ...any) (sets.Set[T], error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := sets.New[T](0)
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out.Add(T(v))
	}
	return out, rows.Err()
}
