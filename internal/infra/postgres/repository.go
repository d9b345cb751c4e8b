package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/syamcode/thumbnail-generator/internal/domain/entity"
)

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

func (r *JobRepository) Create(ctx context.Context, job *entity.Job) error {
	query := `
		INSERT INTO thumbnail_jobs (
			id, source_url, state, stage, artifact_key,
			attempt, max_attempts, last_error, failure_reason,
			created_at, updated_at, completed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`

	_, err := r.pool.Exec(ctx, query,
		job.ID, job.SourceURL, string(job.State), job.Stage, job.ArtifactKey,
		job.Attempt, job.MaxAttempts, job.LastError, job.FailureReason,
		job.CreatedAt, job.UpdatedAt, job.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *JobRepository) Update(ctx context.Context, job *entity.Job) error {
	query := `
		UPDATE thumbnail_jobs SET
			state=$2, stage=$3, artifact_key=$4, attempt=$5,
			last_error=$6, failure_reason=$7, updated_at=$8, completed_at=$9
		WHERE id=$1`

	_, err := r.pool.Exec(ctx, query,
		job.ID, string(job.State), job.Stage, job.ArtifactKey, job.Attempt,
		job.LastError, job.FailureReason, job.UpdatedAt, job.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

func (r *JobRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	query := `
		SELECT id, source_url, state, stage, artifact_key,
			attempt, max_attempts, last_error, failure_reason,
			created_at, updated_at, completed_at
		FROM thumbnail_jobs WHERE id=$1`

	job := &entity.Job{}
	var state string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&job.ID, &job.SourceURL, &state, &job.Stage, &job.ArtifactKey,
		&job.Attempt, &job.MaxAttempts, &job.LastError, &job.FailureReason,
		&job.CreatedAt, &job.UpdatedAt, &job.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("find job by id: %w", err)
	}
	job.State = entity.JobState(state)
	return job, nil
}
