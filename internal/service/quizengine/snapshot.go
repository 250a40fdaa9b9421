package quizengine

import "github.com/yourusername/quiz-app/internal/domain/entity"

// Snapshot - неизменяемый срез состояния движка для слоя отображения
type Snapshot struct {
	State         State
	AttemptID     string
	Title         string
	QuestionIndex int
	Question      *entity.Question
	Selected      *int
	Progress      *entity.Progress
	IsFinal       bool
	Answered      int
	Report        *entity.ScoreReport
}

// Snapshot собирает срез текущего состояния
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{State: e.state}
	if e.attempt == nil {
		return snap
	}

	attempt := e.Attempt()
	snap.AttemptID = attempt.ID
	snap.Title = attempt.Quiz.Title
	snap.QuestionIndex = attempt.CurrentIndex
	snap.Answered = len(attempt.Answers)

	switch e.state {
	case StateInProgress:
		question := *attempt.CurrentQuestion()
		question.Choices = append([]string(nil), question.Choices...)
		progress := ProgressAt(attempt.CurrentIndex, attempt.Quiz.QuestionCount())
		snap.Question = &question
		snap.Selected = attempt.Selected
		snap.Progress = &progress
		snap.IsFinal = attempt.IsOnFinalQuestion()
	case StateCompleted:
		snap.Report = e.report
	}
	return snap
}
