package dto

import (
	"fmt"

	"github.com/yourusername/quiz-app/internal/domain/entity"
	"github.com/yourusername/quiz-app/internal/handler/helper"
	"github.com/yourusername/quiz-app/internal/service/quizengine"
)

// ViewType - экран, который должен показать клиент
type ViewType string

const (
	ViewUpload   ViewType = "upload"
	ViewQuestion ViewType = "question"
	ViewResults  ViewType = "results"
)

// PerfectScoreMessage показывается вместо списка ошибок
const PerfectScoreMessage = "Perfect score! No mistakes! 🎉"

// QuizView - полное описание текущего экрана для клиента
type QuizView struct {
	View      ViewType      `json:"view"`
	State     string        `json:"state"`
	AttemptID string        `json:"attempt_id,omitempty"`
	Title     string        `json:"title,omitempty"`
	Upload    *UploadView   `json:"upload,omitempty"`
	Question  *QuestionView `json:"question,omitempty"`
	Results   *ResultsView  `json:"results,omitempty"`
}

// UploadView - экран загрузки документа
type UploadView struct {
	ExpectedFormat string `json:"expected_format"`
}

// QuestionView - экран вопроса
type QuestionView struct {
	Index           int                   `json:"index"`
	Text            string                `json:"text"`
	Options         []helper.ChoiceOption `json:"options"`
	SelectedIndex   *int                  `json:"selected_index"`
	Current         int                   `json:"current"`
	Total           int                   `json:"total"`
	ProgressLabel   string                `json:"progress_label"`
	ProgressPercent float64               `json:"progress_percent"`
	ShowNext        bool                  `json:"show_next"`
	ShowSubmit      bool                  `json:"show_submit"`
}

// ResultsView - экран результатов
type ResultsView struct {
	Correct        int           `json:"correct"`
	Total          int           `json:"total"`
	Percentage     float64       `json:"percentage"`
	ScoreText      string        `json:"score_text"`
	PercentageText string        `json:"percentage_text"`
	Perfect        bool          `json:"perfect"`
	PerfectMessage string        `json:"perfect_message,omitempty"`
	Mistakes       []MistakeView `json:"mistakes"`
}

// MistakeView - одна ошибка в списке результатов
type MistakeView struct {
	QuestionNumber    int    `json:"question_number"` // 1-based
	QuestionLabel     string `json:"question_label"`
	YourAnswer        string `json:"your_answer"`
	CorrectAnswer     string `json:"correct_answer"`
	ChosenChoiceText  string `json:"chosen_choice_text"`
	CorrectChoiceText string `json:"correct_choice_text"`
}

// NewQuizView строит описание экрана по срезу состояния движка
func NewQuizView(snap quizengine.Snapshot) QuizView {
	view := QuizView{
		State:     string(snap.State),
		AttemptID: snap.AttemptID,
		Title:     snap.Title,
	}

	switch {
	case snap.State == quizengine.StateInProgress && snap.Question != nil:
		view.View = ViewQuestion
		view.Question = newQuestionView(snap)
	case snap.State == quizengine.StateCompleted && snap.Report != nil:
		view.View = ViewResults
		view.Results = NewResultsView(snap.Report)
	default:
		view.View = ViewUpload
		view.Upload = &UploadView{ExpectedFormat: quizengine.ExpectedFormat}
	}
	return view
}

func newQuestionView(snap quizengine.Snapshot) *QuestionView {
	qv := &QuestionView{
		Index:         snap.QuestionIndex,
		Text:          snap.Question.Text,
		Options:       helper.ConvertChoicesToObjects(snap.Question.Choices, snap.Selected),
		SelectedIndex: snap.Selected,
	}
	if snap.Progress != nil {
		qv.Current = snap.Progress.Current
		qv.Total = snap.Progress.Total
		qv.ProgressLabel = snap.Progress.Label
		qv.ProgressPercent = snap.Progress.Percent
	}
	// Кнопки появляются только после выбора варианта
	if snap.Selected != nil {
		qv.ShowSubmit = snap.IsFinal
		qv.ShowNext = !snap.IsFinal
	}
	return qv
}

// NewResultsView строит экран результатов по отчету
func NewResultsView(report *entity.ScoreReport) *ResultsView {
	rv := &ResultsView{
		Correct:        report.Correct,
		Total:          report.Total,
		Percentage:     report.Percentage,
		ScoreText:      fmt.Sprintf("You scored %d out of %d", report.Correct, report.Total),
		PercentageText: fmt.Sprintf("%.1f%%", report.Percentage),
		Perfect:        report.IsPerfect(),
		Mistakes:       make([]MistakeView, 0, len(report.Mistakes)),
	}
	if rv.Perfect {
		rv.PerfectMessage = PerfectScoreMessage
	}
	for _, m := range report.Mistakes {
		rv.Mistakes = append(rv.Mistakes, MistakeView{
			QuestionNumber:    m.QuestionIndex + 1,
			QuestionLabel:     fmt.Sprintf("Question %d: %s", m.QuestionIndex+1, m.QuestionText),
			YourAnswer:        "Your answer: " + m.ChosenChoiceText,
			CorrectAnswer:     "Correct answer: " + m.CorrectChoiceText,
			ChosenChoiceText:  m.ChosenChoiceText,
			CorrectChoiceText: m.CorrectChoiceText,
		})
	}
	return rv
}
