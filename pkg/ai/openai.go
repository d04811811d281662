package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "langcoach",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of AI provider requests",
	}, []string{"operation", "model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "langcoach",
		Subsystem: "ai",
		Name:      "request_failures_total",
		Help:      "Number of failed AI provider requests",
	}, []string{"operation", "model"})
)

// OpenAIConfig defines configuration options for the OpenAI speech evaluator.
type OpenAIConfig struct {
	APIKey             string
	TranscriptionModel string
	ScoringModel       string
	MaxTokens          int
	Temperature        float32
	Logger             zerolog.Logger
}

// OpenAIEvaluator implements SpeechEvaluator against the OpenAI audio and
// chat completion APIs.
type OpenAIEvaluator struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIEvaluator builds a new evaluator using the provided configuration.
func NewOpenAIEvaluator(cfg OpenAIConfig) (*OpenAIEvaluator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = openai.Whisper1
	}

	if cfg.ScoringModel == "" {
		cfg.ScoringModel = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	tracer := otel.Tracer("github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIEvaluator{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Transcribe sends the audio stream to the transcription API and returns the
// recognised text.
func (e *OpenAIEvaluator) Transcribe(parent context.Context, filename string, audio io.Reader) (string, error) {
	ctx, span := e.tracer.Start(parent, "openai.transcribe", trace.WithAttributes(
		attribute.String("model", e.cfg.TranscriptionModel),
	))
	defer span.End()

	start := time.Now()
	resp, err := e.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    e.cfg.TranscriptionModel,
		FilePath: filename,
		Reader:   audio,
	})
	aiDuration.WithLabelValues("transcribe", e.cfg.TranscriptionModel).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues("transcribe", e.cfg.TranscriptionModel).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", classifyError(err, ErrTranscriptionFailed)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		err := fmt.Errorf("%w: empty transcription", ErrTranscriptionFailed)
		aiFailures.WithLabelValues("transcribe", e.cfg.TranscriptionModel).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return text, nil
}

// Score asks the chat completion API to grade the transcript for the given
// test type and validates the returned shape.
func (e *OpenAIEvaluator) Score(parent context.Context, transcript, testType string) (SpeechEvaluation, error) {
	ctx, span := e.tracer.Start(parent, "openai.score", trace.WithAttributes(
		attribute.String("model", e.cfg.ScoringModel),
		attribute.String("test_type", testType),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       e.cfg.ScoringModel,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert language assessment AI. Provide detailed, constructive feedback.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildScoringPrompt(transcript, testType),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := e.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues("score", e.cfg.ScoringModel).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues("score", e.cfg.ScoringModel).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return SpeechEvaluation{}, classifyError(err, ErrProviderUnavailable)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("%w: no choices returned", ErrMalformedResponse)
		aiFailures.WithLabelValues("score", e.cfg.ScoringModel).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return SpeechEvaluation{}, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	evaluation, err := parseScoreResponse(content)
	if err != nil {
		aiFailures.WithLabelValues("score", e.cfg.ScoringModel).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return SpeechEvaluation{}, err
	}

	return evaluation, nil
}

func buildScoringPrompt(transcript, testType string) string {
	builder := strings.Builder{}
	builder.WriteString("You are an expert ")
	builder.WriteString(testType)
	builder.WriteString(" language examiner. Evaluate this spoken response transcription:\n\n\"")
	builder.WriteString(transcript)
	builder.WriteString("\"\n\nProvide a detailed evaluation with scores (0-100) for:\n")
	builder.WriteString("1. Pronunciation (based on transcription quality and clarity)\n")
	builder.WriteString("2. Fluency (based on sentence structure and coherence)\n")
	builder.WriteString("3. Vocabulary (range and appropriateness)\n")
	builder.WriteString("4. Grammar (accuracy and complexity)\n\n")
	builder.WriteString("Also provide:\n- Specific feedback for each category\n- 3-4 key strengths\n- 3-4 areas for improvement\n\n")
	builder.WriteString("Return JSON in this exact format:\n")
	builder.WriteString(`{
  "pronunciationScore": number,
  "fluencyScore": number,
  "vocabularyScore": number,
  "grammarScore": number,
  "feedback": {
    "pronunciation": "string",
    "fluency": "string",
    "vocabulary": "string",
    "grammar": "string",
    "strengths": ["string", "string", "string"],
    "improvements": ["string", "string", "string"]
  }
}`)
	return builder.String()
}

// parseScoreResponse decodes and validates the provider payload. Missing
// fields or scores outside [0,100] are rejected as malformed rather than
// clamped, so a partial or garbage evaluation is never persisted.
func parseScoreResponse(content string) (SpeechEvaluation, error) {
	type feedbackPayload struct {
		Pronunciation *string  `json:"pronunciation"`
		Fluency       *string  `json:"fluency"`
		Vocabulary    *string  `json:"vocabulary"`
		Grammar       *string  `json:"grammar"`
		Strengths     []string `json:"strengths"`
		Improvements  []string `json:"improvements"`
	}
	type payload struct {
		PronunciationScore *int             `json:"pronunciationScore"`
		FluencyScore       *int             `json:"fluencyScore"`
		VocabularyScore    *int             `json:"vocabularyScore"`
		GrammarScore       *int             `json:"grammarScore"`
		Feedback           *feedbackPayload `json:"feedback"`
	}

	var data payload
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return SpeechEvaluation{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	scores := map[string]*int{
		"pronunciationScore": data.PronunciationScore,
		"fluencyScore":       data.FluencyScore,
		"vocabularyScore":    data.VocabularyScore,
		"grammarScore":       data.GrammarScore,
	}
	for name, score := range scores {
		if score == nil {
			return SpeechEvaluation{}, fmt.Errorf("%w: missing %s", ErrMalformedResponse, name)
		}
		if *score < 0 || *score > 100 {
			return SpeechEvaluation{}, fmt.Errorf("%w: %s out of range: %d", ErrMalformedResponse, name, *score)
		}
	}

	fb := data.Feedback
	if fb == nil {
		return SpeechEvaluation{}, fmt.Errorf("%w: missing feedback object", ErrMalformedResponse)
	}
	if fb.Pronunciation == nil || fb.Fluency == nil || fb.Vocabulary == nil || fb.Grammar == nil {
		return SpeechEvaluation{}, fmt.Errorf("%w: incomplete category feedback", ErrMalformedResponse)
	}
	if len(fb.Strengths) == 0 || len(fb.Improvements) == 0 {
		return SpeechEvaluation{}, fmt.Errorf("%w: missing strengths or improvements", ErrMalformedResponse)
	}

	return SpeechEvaluation{
		OverallScore:       overallScore(*data.PronunciationScore, *data.FluencyScore, *data.VocabularyScore, *data.GrammarScore),
		PronunciationScore: *data.PronunciationScore,
		FluencyScore:       *data.FluencyScore,
		VocabularyScore:    *data.VocabularyScore,
		GrammarScore:       *data.GrammarScore,
		Feedback: SpeechFeedback{
			Pronunciation: *fb.Pronunciation,
			Fluency:       *fb.Fluency,
			Vocabulary:    *fb.Vocabulary,
			Grammar:       *fb.Grammar,
			Strengths:     fb.Strengths,
			Improvements:  fb.Improvements,
		},
	}, nil
}

// overallScore is the rounded arithmetic mean of the four category scores.
func overallScore(pronunciation, fluency, vocabulary, grammar int) int {
	return int(math.Round(float64(pronunciation+fluency+vocabulary+grammar) / 4))
}

// classifyError maps transport and provider errors onto the adapter's error
// taxonomy. Server-side and connectivity failures are ErrProviderUnavailable;
// anything else falls back to the supplied default.
func classifyError(err error, fallback error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode >= 500 || apiErr.HTTPStatusCode == 429 {
			return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		return fmt.Errorf("%w: %v", fallback, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	return fmt.Errorf("%w: %v", fallback, err)
}
