package resume

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Repository when no record has the requested id.
var ErrNotFound = errors.New("resume not found")

// Record хранит резюме вместе с результатом разбора LLM.
type Record struct {
	ID              int64            `json:"id"`
	Name            *string          `json:"name"`
	Email           *string          `json:"email"`
	Phone           *string          `json:"phone"`
	LinkedIn        *string          `json:"linkedin"`
	Summary         *string          `json:"summary"`
	WorkExperience  []ExperienceItem `json:"work_experience"`
	Education       []EducationItem  `json:"education"`
	Projects        []ProjectItem    `json:"projects"`
	Certifications  []string         `json:"certifications"`
	TechnicalSkills []string         `json:"technical_skills"`
	SoftSkills      []string         `json:"soft_skills"`
	Rating          *int             `json:"rating"`
	Feedback        *string          `json:"feedback"`
	SuggestedSkills []string         `json:"suggested_skills"`
	FileName        string           `json:"file_name"`
	RawText         string           `json:"raw_text"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Summary is the list view of a record.
type Summary struct {
	ID        int64     `json:"id"`
	Name      *string   `json:"name"`
	Email     *string   `json:"email"`
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Stored carries the server-assigned attributes of a fresh insert.
type Stored struct {
	ID        int64
	CreatedAt time.Time
}

// Normalize replaces nil list fields with empty ones.
func (r *Record) Normalize() {
	if r.WorkExperience == nil {
		r.WorkExperience = []ExperienceItem{}
	}
	if r.Education == nil {
		r.Education = []EducationItem{}
	}
	if r.Projects == nil {
		r.Projects = []ProjectItem{}
	}
	for i := range r.Projects {
		if r.Projects[i].Technologies == nil {
			r.Projects[i].Technologies = []string{}
		}
	}
	if r.Certifications == nil {
		r.Certifications = []string{}
	}
	if r.TechnicalSkills == nil {
		r.TechnicalSkills = []string{}
	}
	if r.SoftSkills == nil {
		r.SoftSkills = []string{}
	}
	if r.SuggestedSkills == nil {
		r.SuggestedSkills = []string{}
	}
}

// Repository описывает хранилище резюме. Записи только добавляются и читаются.
type Repository interface {
	// InsertFallback stores a record holding only the file name and the raw AI reply.
	InsertFallback(ctx context.Context, fileName, rawReply string) (Stored, error)
	InsertFull(ctx context.Context, r Record) (Stored, error)
	// List returns all records, newest first.
	List(ctx context.Context) ([]Summary, error)
	GetByID(ctx context.Context, id int64) (Record, error)
}
