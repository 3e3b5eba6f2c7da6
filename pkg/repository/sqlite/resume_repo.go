package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/artem13815/resumeparser/pkg/resume"
)

// ResumeRepository stores resumes in SQLite. Lists are kept as JSON text and
// created_at as Unix microseconds.
type ResumeRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewResumeRepository(ctx context.Context, db *sql.DB) (*ResumeRepository, error) {
	r := &ResumeRepository{db: db, now: time.Now}
	if err := r.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure resumes schema: %w", err)
	}
	return r, nil
}

func (r *ResumeRepository) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS resumes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT,
	email TEXT,
	phone TEXT,
	linkedin TEXT,
	summary TEXT,
	work_experience TEXT NOT NULL DEFAULT '[]',
	education TEXT NOT NULL DEFAULT '[]',
	projects TEXT NOT NULL DEFAULT '[]',
	certifications TEXT NOT NULL DEFAULT '[]',
	technical_skills TEXT NOT NULL DEFAULT '[]',
	soft_skills TEXT NOT NULL DEFAULT '[]',
	rating INTEGER CHECK (rating BETWEEN 0 AND 10),
	feedback TEXT,
	suggested_skills TEXT NOT NULL DEFAULT '[]',
	file_name TEXT NOT NULL,
	raw_text TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS resumes_created_at_idx ON resumes (created_at DESC, id DESC);
`)
	return err
}

func (r *ResumeRepository) stamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

func (r *ResumeRepository) InsertFallback(ctx context.Context, fileName, rawReply string) (resume.Stored, error) {
	created := r.stamp()
	res, err := r.db.ExecContext(ctx, `
INSERT INTO resumes (file_name, raw_text, created_at)
VALUES (?, ?, ?)
`, fileName, rawReply, created.UnixMicro())
	if err != nil {
		return resume.Stored{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return resume.Stored{}, err
	}
	return resume.Stored{ID: id, CreatedAt: created}, nil
}

func (r *ResumeRepository) InsertFull(ctx context.Context, rec resume.Record) (resume.Stored, error) {
	rec.Normalize()
	lists, err := encodeLists(
		rec.WorkExperience, rec.Education, rec.Projects,
		rec.Certifications, rec.TechnicalSkills, rec.SoftSkills, rec.SuggestedSkills,
	)
	if err != nil {
		return resume.Stored{}, err
	}

	created := r.stamp()
	res, err := r.db.ExecContext(ctx, `
INSERT INTO resumes (
	name, email, phone, linkedin, summary,
	work_experience, education, projects,
	certifications, technical_skills, soft_skills, suggested_skills,
	rating, feedback, file_name, raw_text, created_at
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		rec.Name, rec.Email, rec.Phone, rec.LinkedIn, rec.Summary,
		lists[0], lists[1], lists[2],
		lists[3], lists[4], lists[5], lists[6],
		rec.Rating, rec.Feedback, rec.FileName, rec.RawText, created.UnixMicro(),
	)
	if err != nil {
		return resume.Stored{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return resume.Stored{}, err
	}
	return resume.Stored{ID: id, CreatedAt: created}, nil
}

func (r *ResumeRepository) List(ctx context.Context) ([]resume.Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
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
		var (
			s       resume.Summary
			created int64
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.FileName, &created); err != nil {
			return nil, err
		}
		s.CreatedAt = time.UnixMicro(created).UTC()
		res = append(res, s)
	}
	return res, rows.Err()
}

func (r *ResumeRepository) GetByID(ctx context.Context, id int64) (resume.Record, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, email, phone, linkedin, summary,
	work_experience, education, projects,
	certifications, technical_skills, soft_skills, suggested_skills,
	rating, feedback, file_name, raw_text, created_at
FROM resumes WHERE id = ?
`, id)
	var (
		rec     resume.Record
		lists   [7]string
		rating  sql.NullInt64
		created int64
	)
	err := row.Scan(
		&rec.ID, &rec.Name, &rec.Email, &rec.Phone, &rec.LinkedIn, &rec.Summary,
		&lists[0], &lists[1], &lists[2],
		&lists[3], &lists[4], &lists[5], &lists[6],
		&rating, &rec.Feedback, &rec.FileName, &rec.RawText, &created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return resume.Record{}, resume.ErrNotFound
		}
		return resume.Record{}, err
	}

	targets := []any{
		&rec.WorkExperience, &rec.Education, &rec.Projects,
		&rec.Certifications, &rec.TechnicalSkills, &rec.SoftSkills, &rec.SuggestedSkills,
	}
	for i, dst := range targets {
		if err := json.Unmarshal([]byte(lists[i]), dst); err != nil {
			return resume.Record{}, fmt.Errorf("decode list column %d: %w", i, err)
		}
	}
	if rating.Valid {
		n := int(rating.Int64)
		rec.Rating = &n
	}
	rec.CreatedAt = time.UnixMicro(created).UTC()
	rec.Normalize()
	return rec, nil
}

func encodeLists(values ...any) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[i] = string(b)
	}
	return out, nil
}
