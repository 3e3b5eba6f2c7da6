package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/resumeparser/pkg/resume"
)

// ResumeRepository хранит разобранные резюме в PostgreSQL.
type ResumeRepository struct {
	pool *pgxpool.Pool
}

func NewResumeRepository(ctx context.Context, pool *pgxpool.Pool) (*ResumeRepository, error) {
	r := &ResumeRepository{pool: pool}
	if err := r.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure resumes schema: %w", err)
	}
	return r, nil
}

func (r *ResumeRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS resumes (
	id BIGSERIAL PRIMARY KEY,
	name TEXT,
	email TEXT,
	phone TEXT,
	linkedin TEXT,
	summary TEXT,
	work_experience JSONB NOT NULL DEFAULT '[]',
	education JSONB NOT NULL DEFAULT '[]',
	projects JSONB NOT NULL DEFAULT '[]',
	certifications TEXT[] NOT NULL DEFAULT '{}',
	technical_skills TEXT[] NOT NULL DEFAULT '{}',
	soft_skills TEXT[] NOT NULL DEFAULT '{}',
	rating INT CHECK (rating BETWEEN 0 AND 10),
	feedback TEXT,
	suggested_skills TEXT[] NOT NULL DEFAULT '{}',
	file_name TEXT NOT NULL,
	raw_text TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS resumes_created_at_idx ON resumes (created_at DESC, id DESC);
`)
	return err
}

func (r *ResumeRepository) InsertFallback(ctx context.Context, fileName, rawReply string) (resume.Stored, error) {
	var s resume.Stored
	err := r.pool.QueryRow(ctx, `
INSERT INTO resumes (file_name, raw_text)
VALUES ($1, $2)
RETURNING id, created_at
`, fileName, rawReply).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return resume.Stored{}, err
	}
	s.CreatedAt = s.CreatedAt.UTC()
	return s, nil
}

func (r *ResumeRepository) InsertFull(ctx context.Context, rec resume.Record) (resume.Stored, error) {
	rec.Normalize()
	work, err := json.Marshal(rec.WorkExperience)
	if err != nil {
		return resume.Stored{}, err
	}
	edu, err := json.Marshal(rec.Education)
	if err != nil {
		return resume.Stored{}, err
	}
	projects, err := json.Marshal(rec.Projects)
	if err != nil {
		return resume.Stored{}, err
	}

	var s resume.Stored
	err = r.pool.QueryRow(ctx, `
INSERT INTO resumes (
	name, email, phone, linkedin, summary,
	work_experience, education, projects,
	certifications, technical_skills, soft_skills,
	rating, feedback, suggested_skills, file_name, raw_text
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
RETURNING id, created_at
`,
		rec.Name, rec.Email, rec.Phone, rec.LinkedIn, rec.Summary,
		work, edu, projects,
		rec.Certifications, rec.TechnicalSkills, rec.SoftSkills,
		rec.Rating, rec.Feedback, rec.SuggestedSkills, rec.FileName, rec.RawText,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return resume.Stored{}, err
	}
	s.CreatedAt = s.CreatedAt.UTC()
	return s, nil
}

func (r *ResumeRepository) List(ctx context.Context) ([]resume.Summary, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, name, email, file_name, created_at
FROM resumes
ORDER BY created_at DESC, id DESC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []resume.Summary{}
	for rows.Next() {
		var s resume.Summary
		var created time.Time
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.FileName, &created); err != nil {
			return nil, err
		}
		s.CreatedAt = created.UTC()
		res = append(res, s)
	}
	return res, rows.Err()
}

func (r *ResumeRepository) GetByID(ctx context.Context, id int64) (resume.Record, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, name, email, phone, linkedin, summary,
	work_experience, education, projects,
	certifications, technical_skills, soft_skills,
	rating, feedback, suggested_skills, file_name, raw_text, created_at
FROM resumes WHERE id = $1
`, id)
	var (
		rec                 resume.Record
		work, edu, projects []byte
		created             time.Time
	)
	err := row.Scan(
		&rec.ID, &rec.Name, &rec.Email, &rec.Phone, &rec.LinkedIn, &rec.Summary,
		&work, &edu, &projects,
		&rec.Certifications, &rec.TechnicalSkills, &rec.SoftSkills,
		&rec.Rating, &rec.Feedback, &rec.SuggestedSkills, &rec.FileName, &rec.RawText, &created,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return resume.Record{}, resume.ErrNotFound
		}
		return resume.Record{}, err
	}
	if err := json.Unmarshal(work, &rec.WorkExperience); err != nil {
		return resume.Record{}, fmt.Errorf("decode work_experience: %w", err)
	}
	if err := json.Unmarshal(edu, &rec.Education); err != nil {
		return resume.Record{}, fmt.Errorf("decode education: %w", err)
	}
	if err := json.Unmarshal(projects, &rec.Projects); err != nil {
		return resume.Record{}, fmt.Errorf("decode projects: %w", err)
	}
	rec.CreatedAt = created.UTC()
	rec.Normalize()
	return rec, nil
}
