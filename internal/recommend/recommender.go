// Package recommend picks one catalog product for a pet description using a
// text generation model.
package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"petstore/internal/models"

	"go.uber.org/zap"
)

var (
	// ErrDisabled is returned when no generator is configured.
	ErrDisabled = errors.New("recommendations are disabled")
	// ErrMalformedResponse is returned when the model output is not the expected JSON object.
	ErrMalformedResponse = errors.New("malformed recommendation response")
	// ErrUnknownProduct is returned when the model names a product it was not offered.
	ErrUnknownProduct = errors.New("recommended product is not a candidate")
	// ErrGenerationFailed is returned when the model call itself fails.
	ErrGenerationFailed = errors.New("recommendation generation failed")
)

// Generator produces text for a prompt under the given system instructions.
type Generator interface {
	Generate(ctx context.Context, systemInstructions []string, prompt string) (string, error)
}

// CandidateSource yields the products a recommendation may pick from.
type CandidateSource interface {
	ActiveInStock(ctx context.Context) ([]models.Product, error)
}

// Recommender builds the prompt, calls the generator and validates its answer.
type Recommender struct {
	candidates CandidateSource
	generator  Generator
	logger     *zap.Logger
}

// NewRecommender creates a Recommender. A nil generator disables it.
func NewRecommender(candidates CandidateSource, generator Generator, logger *zap.Logger) *Recommender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recommender{candidates: candidates, generator: generator, logger: logger}
}

// Enabled reports whether a generator is configured.
func (r *Recommender) Enabled() bool {
	return r.generator != nil
}

// Recommend returns the single best product for description. The returned
// id is always one of the candidates offered and the name is the catalog name.
func (r *Recommender) Recommend(ctx context.Context, description models.PetDescription) (*models.Recommendation, error) {
	if r.generator == nil {
		return nil, ErrDisabled
	}

	candidates, err := r.candidates.ActiveInStock(ctx)
	if err != nil {
		return nil, err
	}

	prompt, err := buildPrompt(candidates, description)
	if err != nil {
		return nil, err
	}

	text, err := r.generator.Generate(ctx, systemInstructions, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	rec, err := parseRecommendation(text)
	if err != nil {
		r.logger.Warn("model returned malformed recommendation", zap.String("response", text), zap.Error(err))
		return nil, err
	}

	for _, p := range candidates {
		if p.ID == rec.ProductID {
			if rec.Name != p.Name {
				r.logger.Info("replacing model product name with catalog name",
					zap.Int64("product_id", p.ID),
					zap.String("model_name", rec.Name),
				)
				rec.Name = p.Name
			}
			return rec, nil
		}
	}

	r.logger.Warn("model recommended a product outside the candidate set",
		zap.Int64("product_id", rec.ProductID),
		zap.Int("candidates", len(candidates)),
	)
	return nil, fmt.Errorf("product with ID %d: %w", rec.ProductID, ErrUnknownProduct)
}

func parseRecommendation(text string) (*models.Recommendation, error) {
	body := strings.TrimSpace(text)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimSpace(body)

	var rec models.Recommendation
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if rec.Reason == "" {
		return nil, fmt.Errorf("%w: empty reason", ErrMalformedResponse)
	}
	return &rec, nil
}
