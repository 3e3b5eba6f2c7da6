package resume

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/artem13815/resumeparser/pkg/llm"
)

// FallbackWarning accompanies an upload whose model reply held no JSON.
const FallbackWarning = "Failed to parse JSON from LLM. Raw output saved."

// Stage errors; the underlying cause is wrapped alongside.
var (
	ErrExtractText = errors.New("extract text")
	ErrCompletion  = errors.New("ai completion")
	ErrPersist     = errors.New("persist resume")
)

// Upload is a file that already passed request validation and is stored on disk.
type Upload struct {
	FileName string // stored name, becomes Record.FileName
	Data     []byte
}

// Outcome of a processed upload. Parsed is nil when the reply could not be
// recovered; Warning and Raw are set instead.
type Outcome struct {
	ID        int64
	CreatedAt time.Time
	Parsed    json.RawMessage
	Warning   string
	Raw       string
}

// Degraded reports whether only a fallback record was stored.
func (o Outcome) Degraded() bool { return o.Parsed == nil }

// UploadUseCase describes the application use case for resume intake.
type UploadUseCase interface {
	Process(ctx context.Context, up Upload) (Outcome, error)
}

type uploadService struct {
	extractor TextExtractor
	llm       llm.ChatModel
	repo      Repository
	log       logrus.FieldLogger
}

// NewUploadService creates the default implementation.
func NewUploadService(extractor TextExtractor, model llm.ChatModel, repo Repository, log logrus.FieldLogger) UploadUseCase {
	return &uploadService{
		extractor: extractor,
		llm:       model,
		repo:      repo,
		log:       log,
	}
}

func (s *uploadService) Process(ctx context.Context, up Upload) (Outcome, error) {
	log := s.log.WithField("file", up.FileName)

	text, err := s.extractor.ExtractText(ctx, up.Data)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrExtractText, err)
	}
	log.WithField("chars", len(text)).Debug("resume text extracted")

	reply, err := s.llm.Ask(ctx, "", BuildPrompt(text))
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrCompletion, err)
	}

	parsed, ok := RecoverJSON(reply)
	if !ok || isEmptyResult(parsed) {
		stored, err := s.repo.InsertFallback(ctx, up.FileName, reply)
		if err != nil {
			return Outcome{}, fmt.Errorf("%w: %w", ErrPersist, err)
		}
		log.WithField("id", stored.ID).Warn("no JSON in model reply, raw output saved")
		return Outcome{
			ID:        stored.ID,
			CreatedAt: stored.CreatedAt,
			Warning:   FallbackWarning,
			Raw:       reply,
		}, nil
	}

	rec := ParseExtraction(parsed).Record(up.FileName, text)
	stored, err := s.repo.InsertFull(ctx, rec)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	log.WithField("id", stored.ID).Info("resume stored")
	return Outcome{
		ID:        stored.ID,
		CreatedAt: stored.CreatedAt,
		Parsed:    parsed,
	}, nil
}
