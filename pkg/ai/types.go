package ai

import (
	"context"
	"errors"
	"io"
)

// ErrProviderUnavailable indicates the provider could not be reached or is
// not configured.
var ErrProviderUnavailable = errors.New("ai provider unavailable")

// ErrTranscriptionFailed indicates the audio could not be transcribed.
var ErrTranscriptionFailed = errors.New("transcription failed")

// ErrMalformedResponse indicates the provider returned a scoring payload that
// does not match the expected shape.
var ErrMalformedResponse = errors.New("malformed evaluation response")

// SpeechFeedback is the per-category natural-language feedback returned by
// the scoring provider.
type SpeechFeedback struct {
	Pronunciation string   `json:"pronunciation"`
	Fluency       string   `json:"fluency"`
	Vocabulary    string   `json:"vocabulary"`
	Grammar       string   `json:"grammar"`
	Strengths     []string `json:"strengths"`
	Improvements  []string `json:"improvements"`
}

// SpeechEvaluation is the normalized scoring result. Category scores are in
// [0,100]; OverallScore is the rounded arithmetic mean of the four.
type SpeechEvaluation struct {
	OverallScore       int            `json:"overall_score"`
	PronunciationScore int            `json:"pronunciation_score"`
	FluencyScore       int            `json:"fluency_score"`
	VocabularyScore    int            `json:"vocabulary_score"`
	GrammarScore       int            `json:"grammar_score"`
	Feedback           SpeechFeedback `json:"feedback"`
}

// SpeechEvaluator describes a provider capable of transcribing spoken audio
// and scoring the transcript for a given test type.
type SpeechEvaluator interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
	Score(ctx context.Context, transcript, testType string) (SpeechEvaluation, error)
}
