package consult

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Skufu/triage/internal/llm"
)

const missingInputAdvice = "Missing age or symptoms."

type Service struct {
	llm      llm.Client
	recorder Recorder
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(client llm.Client, recorder Recorder, logger zerolog.Logger) *Service {
	return &Service{llm: client, recorder: recorder, logger: logger, now: time.Now}
}

// Analyze runs one consultation. Validation and completion failures are
// reported in the returned Result; the error is non-nil only when the
// consultation could not be recorded.
func (s *Service) Analyze(ctx context.Context, req Request) (Result, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Symptoms = strings.TrimSpace(req.Symptoms)
	req.Age = strings.TrimSpace(req.Age)

	if req.Symptoms == "" || req.Age == "" {
		return Result{Condition: string(UrgencyInvalid), Urgency: UrgencyInvalid, Advice: missingInputAdvice}, nil
	}

	res, err := s.assess(ctx, req)
	if err != nil {
		s.logger.Warn().Err(err).Msg("consultation assessment failed")
		return Result{Condition: string(UrgencyError), Urgency: UrgencyError, Advice: err.Error()}, nil
	}

	rec := NewRecord(s.now(), req, res)
	if err := s.recorder.Append(ctx, rec); err != nil {
		return Result{}, fmt.Errorf("record consultation: %w", err)
	}

	s.logger.Info().
		Str("urgency", string(res.Urgency)).
		Int("critical_symptoms", CountCriticalSymptoms(req.Symptoms)).
		Msg("consultation recorded")
	return res, nil
}

func (s *Service) assess(ctx context.Context, req Request) (Result, error) {
	resp, err := s.llm.Complete(ctx, buildMessages(req.Age, req.Symptoms))
	if err != nil {
		return Result{}, err
	}
	return ParseReply(resp.Content, req.Symptoms)
}
