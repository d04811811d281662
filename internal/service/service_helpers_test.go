package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/models"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/internal/repository"
	"github.com/strangerwhoisharborofdoom/w1proto-langcoach-AI/pkg/ai"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]models.User)}
}

func (m *memoryUserRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (m *memoryUserRepo) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]models.User, 0)
	for _, user := range m.users {
		if user.Role == role {
			result = append(result, user)
		}
	}
	return result, nil
}

func (m *memoryUserRepo) List(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]models.User, 0, len(m.users))
	for _, user := range m.users {
		result = append(result, user)
	}
	return result, nil
}

func (m *memoryUserRepo) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	m.users[user.ID] = *user
	return nil
}

type memoryAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[string]models.Assignment
}

func newMemoryAssignmentRepo() *memoryAssignmentRepo {
	return &memoryAssignmentRepo{assignments: make(map[string]models.Assignment)}
}

func (m *memoryAssignmentRepo) List(ctx context.Context) ([]models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]models.Assignment, 0, len(m.assignments))
	for _, assignment := range m.assignments {
		result = append(result, assignment)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *memoryAssignmentRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]models.Assignment, 0)
	for _, assignment := range m.assignments {
		if assignment.TeacherID == teacherID {
			result = append(result, assignment)
		}
	}
	return result, nil
}

func (m *memoryAssignmentRepo) GetByID(ctx context.Context, id string) (models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	assignment, ok := m.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (m *memoryAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	assignment.CreatedAt = time.Now()
	m.assignments[assignment.ID] = *assignment
	return nil
}

func (m *memoryAssignmentRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assignments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.assignments, id)
	return nil
}

type memorySubmissionRepo struct {
	mu          sync.Mutex
	submissions map[string]models.Submission
}

func newMemorySubmissionRepo() *memorySubmissionRepo {
	return &memorySubmissionRepo{submissions: make(map[string]models.Submission)}
}

func (m *memorySubmissionRepo) put(submission models.Submission) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions[submission.ID] = submission
}

func (m *memorySubmissionRepo) get(id string) models.Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submissions[id]
}

func (m *memorySubmissionRepo) List(ctx context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]models.Submission, 0)
	for _, submission := range m.submissions {
		if filter.AssignmentID != nil && submission.AssignmentID != *filter.AssignmentID {
			continue
		}
		if filter.StudentID != nil && submission.StudentID != *filter.StudentID {
			continue
		}
		if filter.TeacherID != nil && submission.Assignment.TeacherID != *filter.TeacherID {
			continue
		}
		if filter.Status != nil && submission.Status != *filter.Status {
			continue
		}
		result = append(result, submission)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SubmittedAt.After(result[j].SubmittedAt) })
	return result, nil
}

func (m *memorySubmissionRepo) GetByID(ctx context.Context, id string) (models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	submission, ok := m.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (m *memorySubmissionRepo) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *models.Submission
	for _, submission := range m.submissions {
		if submission.AssignmentID != assignmentID || submission.StudentID != studentID {
			continue
		}
		s := submission
		if latest == nil || s.SubmittedAt.After(latest.SubmittedAt) {
			latest = &s
		}
	}
	if latest == nil {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return *latest, nil
}

func (m *memorySubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now()
	}
	m.submissions[submission.ID] = *submission
	return nil
}

func (m *memorySubmissionRepo) Update(ctx context.Context, id string, changes repository.SubmissionChanges) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	submission, ok := m.submissions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if changes.Transcription != nil {
		submission.Transcription = *changes.Transcription
	}
	if changes.Status != nil {
		submission.Status = *changes.Status
	}
	m.submissions[id] = submission
	return nil
}

type memoryEvaluationRepo struct {
	mu           sync.Mutex
	bySubmission map[string]models.Evaluation
}

func newMemoryEvaluationRepo() *memoryEvaluationRepo {
	return &memoryEvaluationRepo{bySubmission: make(map[string]models.Evaluation)}
}

func (m *memoryEvaluationRepo) GetBySubmission(ctx context.Context, submissionID string) (models.Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	evaluation, ok := m.bySubmission[submissionID]
	if !ok {
		return models.Evaluation{}, gorm.ErrRecordNotFound
	}
	return evaluation, nil
}

func (m *memoryEvaluationRepo) List(ctx context.Context) ([]models.Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]models.Evaluation, 0, len(m.bySubmission))
	for _, evaluation := range m.bySubmission {
		result = append(result, evaluation)
	}
	return result, nil
}

func (m *memoryEvaluationRepo) Create(ctx context.Context, evaluation *models.Evaluation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.bySubmission[evaluation.SubmissionID]; exists {
		return gorm.ErrDuplicatedKey
	}
	if evaluation.ID == "" {
		evaluation.ID = uuid.NewString()
	}
	evaluation.CreatedAt = time.Now()
	m.bySubmission[evaluation.SubmissionID] = *evaluation
	return nil
}

func (m *memoryEvaluationRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bySubmission)
}

type memoryFeedbackRepo struct {
	mu      sync.Mutex
	entries []models.TeacherFeedback
}

func (m *memoryFeedbackRepo) ListBySubmission(ctx context.Context, submissionID string) ([]models.TeacherFeedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]models.TeacherFeedback, 0)
	for _, entry := range m.entries {
		if entry.SubmissionID == submissionID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (m *memoryFeedbackRepo) Create(ctx context.Context, feedback *models.TeacherFeedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	feedback.CreatedAt = time.Now()
	m.entries = append(m.entries, *feedback)
	return nil
}

// stubEvaluator is a scriptable SpeechEvaluator. Call counters are guarded so
// concurrency tests can assert on them.
type stubEvaluator struct {
	mu              sync.Mutex
	transcribeCalls int
	scoreCalls      int
	transcript      string
	transcribeErr   error
	scoreErr        error
	evaluation      ai.SpeechEvaluation
	delay           time.Duration
}

func (s *stubEvaluator) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	s.mu.Lock()
	s.transcribeCalls++
	delay := s.delay
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if s.transcribeErr != nil {
		return "", s.transcribeErr
	}
	if s.transcript == "" {
		return "a spoken answer", nil
	}
	return s.transcript, nil
}

func (s *stubEvaluator) Score(ctx context.Context, transcript, testType string) (ai.SpeechEvaluation, error) {
	s.mu.Lock()
	s.scoreCalls++
	s.mu.Unlock()
	if s.scoreErr != nil {
		return ai.SpeechEvaluation{}, s.scoreErr
	}
	return s.evaluation, nil
}

func (s *stubEvaluator) calls() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcribeCalls, s.scoreCalls
}

// stubStore keeps artifacts in memory.
type stubStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	openErr error
}

func newStubStore() *stubStore {
	return &stubStore{objects: make(map[string][]byte)}
}

func (s *stubStore) Save(ctx context.Context, name string, audio io.Reader) (string, error) {
	content, err := io.ReadAll(audio)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := "mem/" + uuid.NewString()
	s.objects[ref] = content
	return ref, nil
}

func (s *stubStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return nil, s.openErr
	}
	content, ok := s.objects[ref]
	if !ok {
		return nil, fmt.Errorf("artifact %s not found", ref)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

// recordingScheduler captures scheduled submission ids without running
// anything.
type recordingScheduler struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingScheduler) Schedule(submissionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, submissionID)
}

func (r *recordingScheduler) scheduled() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

func passingEvaluation() ai.SpeechEvaluation {
	return ai.SpeechEvaluation{
		OverallScore:       81,
		PronunciationScore: 82,
		FluencyScore:       75,
		VocabularyScore:    88,
		GrammarScore:       79,
		Feedback: ai.SpeechFeedback{
			Pronunciation: "clear",
			Fluency:       "steady",
			Vocabulary:    "broad",
			Grammar:       "accurate",
			Strengths:     []string{"clarity", "range", "structure"},
			Improvements:  []string{"pacing", "linking", "stress"},
		},
	}
}

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {"form-data; name=\"audio\"; filename=\"" + filename + "\""},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content) + 1024))
	require.NoError(t, err)
	files := form.File["audio"]
	require.Len(t, files, 1)
	return files[0]
}

// mp3Bytes returns a minimal payload that detects as audio/mpeg.
func mp3Bytes() []byte {
	return append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), bytes.Repeat([]byte{0x00}, 64)...)
}
