package services

import (
	"errors"

	"codequiz/models"
	"codequiz/repository"
)

type QuestionService struct {
	questions repository.QuestionRepository
}

func NewQuestionService(questions repository.QuestionRepository) *QuestionService {
	return &QuestionService{questions: questions}
}

// QuizQuestion is the client-facing shape of a question. Option correctness
// is intentionally omitted; it is only revealed through the
// incorrect-answer broadcast.
type QuizQuestion struct {
	ID         uint         `json:"id"`
	Text       string       `json:"text"`
	Category   string       `json:"category"`
	Difficulty string       `json:"difficulty"`
	Options    []QuizOption `json:"options"`
}

type QuizOption struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

func (s *QuestionService) Random(category, difficulty string) (*QuizQuestion, error) {
	question, err := s.questions.Random(category, difficulty)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errors.New("no questions available")
		}
		return nil, err
	}
	return sanitize(question), nil
}

func sanitize(question *models.Question) *QuizQuestion {
	q := &QuizQuestion{
		ID:         question.ID,
		Text:       question.Text,
		Category:   question.Category,
		Difficulty: question.Difficulty,
		Options:    make([]QuizOption, len(question.Options)),
	}
	for i, option := range question.Options {
		q.Options[i] = QuizOption{ID: option.ID, Text: option.Text}
	}
	return q
}
