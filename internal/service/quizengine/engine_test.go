package quizengine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/quiz-app/internal/domain/entity"
	"github.com/yourusername/quiz-app/internal/service/sample"
)

// sampleAnswers - правильные ответы встроенной викторины
var sampleAnswers = []int{2, 1, 1, 2, 3, 1, 2, 2, 1, 2}

func loadSample(t *testing.T) *entity.Quiz {
	t.Helper()
	quiz, err := Parse(sample.Document())
	require.NoError(t, err)
	return quiz
}

func threeQuestionQuiz() *entity.Quiz {
	return &entity.Quiz{
		Title: "Tiny",
		Questions: []entity.Question{
			{Text: "Q1", Choices: []string{"a", "b"}, CorrectAnswer: 0},
			{Text: "Q2", Choices: []string{"a", "b", "c"}, CorrectAnswer: 2},
			{Text: "Q3", Choices: []string{"a", "b"}, CorrectAnswer: 1},
		},
	}
}

// answerAll проходит викторину с заданными ответами и возвращает отчет
func answerAll(t *testing.T, e *Engine, answers []int) *entity.ScoreReport {
	t.Helper()
	for i, answer := range answers {
		require.NoError(t, e.SelectChoice(answer))
		if i < len(answers)-1 {
			require.NoError(t, e.Advance())
			continue
		}
		report, err := e.Submit()
		require.NoError(t, err)
		return report
	}
	t.Fatal("no answers given")
	return nil
}

func TestEngine_NewIsIdle(t *testing.T) {
	e := NewEngine()

	assert.Equal(t, StateIdle, e.State())
	assert.Nil(t, e.Attempt())

	_, err := e.CurrentQuestion()
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = e.Progress()
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = e.Report()
	assert.ErrorIs(t, err, ErrReportUnavailable)
}

func TestEngine_Load(t *testing.T) {
	startedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	e := NewEngine(
		WithClock(func() time.Time { return startedAt }),
		WithIDGenerator(func() string { return "attempt-1" }),
	)

	require.NoError(t, e.Load(threeQuestionQuiz()))

	assert.Equal(t, StateInProgress, e.State())
	attempt := e.Attempt()
	require.NotNil(t, attempt)
	assert.Equal(t, "attempt-1", attempt.ID)
	assert.Equal(t, startedAt, attempt.StartedAt)
	assert.Equal(t, 0, attempt.CurrentIndex)
	assert.Empty(t, attempt.Answers)
	assert.Nil(t, attempt.Selected)

	q, err := e.CurrentQuestion()
	require.NoError(t, err)
	assert.Equal(t, "Q1", q.Text)
}

func TestEngine_LoadRequiresIdle(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Load(threeQuestionQuiz()))

	err := e.Load(threeQuestionQuiz())

	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, StateInProgress, e.State())
}

func TestEngine_LoadRejectsEmptyQuiz(t *testing.T) {
	e := NewEngine()

	assert.ErrorIs(t, e.Load(nil), ErrMissingQuestions)
	assert.ErrorIs(t, e.Load(&entity.Quiz{}), ErrMissingQuestions)
	assert.Equal(t, StateIdle, e.State())
}

func TestEngine_SelectChoiceDoesNotCommit(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Load(threeQuestionQuiz()))

	require.NoError(t, e.SelectChoice(1))
	require.NoError(t, e.SelectChoice(0)) // Выбор можно менять до перехода

	attempt := e.Attempt()
	require.NotNil(t, attempt.Selected)
	assert.Equal(t, 0, *attempt.Selected)
	assert.Empty(t, attempt.Answers)
}

func TestEngine_SelectChoiceOutOfRange(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Load(threeQuestionQuiz()))

	assert.ErrorIs(t, e.SelectChoice(2), ErrChoiceOutOfRange)
	assert.ErrorIs(t, e.SelectChoice(-1), ErrChoiceOutOfRange)
	assert.Nil(t, e.Attempt().Selected)
}

func TestEngine_SelectChoiceRequiresInProgress(t *testing.T) {
	e := NewEngine()

	assert.ErrorIs(t, e.SelectChoice(0), ErrInvalidState)
}

func TestEngine_AdvanceWithoutSelection(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Load(threeQuestionQuiz()))

	err := e.Advance()

	assert.ErrorIs(t, err, ErrNoSelection)
	attempt := e.Attempt()
	assert.Equal(t, 0, attempt.CurrentIndex)
	assert.Empty(t, attempt.Answers)
}

func TestEngine_SubmitWithoutSelection(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Load(threeQuestionQuiz()))

	// Выбор проверяется раньше позиции: даже не на последнем вопросе - ErrNoSelection
	_, err := e.Submit()
	assert.ErrorIs(t, err, ErrNoSelection)

	require.NoError(t, e.SelectChoice(0))
	require.NoError(t, e.Advance())
	require.NoError(t, e.SelectChoice(0))
	require.NoError(t, e.Advance())

	_, err = e.Submit()
	assert.ErrorIs(t, err, ErrNoSelection)
	attempt := e.Attempt()
	assert.Equal(t, 2, attempt.CurrentIndex)
	assert.Equal(t, []int{0, 0}, attempt.Answers)
	assert.Equal(t, StateInProgress, e.State())
}

func TestEngine_AdvanceCommitsAndClearsSelection(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Load(threeQuestionQuiz()))

	require.NoError(t, e.SelectChoice(1))
	require.NoError(t, e.Advance())

	attempt := e.Attempt()
	assert.Equal(t, 1, attempt.CurrentIndex)
	assert.Equal(t, []int{1}, attempt.Answers)
	assert.Nil(t, attempt.Selected)

	// Без нового выбора дальше не пускает
	assert.ErrorIs(t, e.Advance(), ErrNoSelection)
}

func TestEngine_AdvanceOnFinalQuestion(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Load(threeQuestionQuiz()))
	for i := 0; i < 2; i++ {
		require.NoError(t, e.SelectChoice(0))
		require.NoError(t, e.Advance())
	}
	require.NoError(t, e.SelectChoice(1))

	err := e.Advance()

	assert.ErrorIs(t, err, ErrFinalQuestion)
	attempt := e.Attempt()
	assert.Equal(t, 2, attempt.CurrentIndex)
	assert.Len(t, attempt.Answers, 2)
	require.NotNil(t, attempt.Selected, "выбор сохраняется после отказа")
}

func TestEngine_SubmitBeforeFinalQuestion(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Load(threeQuestionQuiz()))
	require.NoError(t, e.SelectChoice(0))

	_, err := e.Submit()

	assert.ErrorIs(t, err, ErrNotFinalQuestion)
	assert.Equal(t, StateInProgress, e.State())
	assert.Empty(t, e.Attempt().Answers)
}

func TestEngine_SingleQuestionQuiz(t *testing.T) {
	e := NewEngine()
	quiz := &entity.Quiz{Questions: []entity.Question{{Text: "Only", Choices: []string{"x", "y"}, CorrectAnswer: 1}}}
	require.NoError(t, e.Load(quiz))
	require.NoError(t, e.SelectChoice(1))

	assert.ErrorIs(t, e.Advance(), ErrFinalQuestion)

	report, err := e.Submit()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Correct)
	assert.Equal(t, 100.0, report.Percentage)
}

func TestEngine_SampleAllCorrect(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Load(loadSample(t)))

	report := answerAll(t, e, sampleAnswers)

	assert.Equal(t, StateCompleted, e.State())
	assert.Equal(t, 10, report.Correct)
	assert.Equal(t, 10, report.Total)
	assert.Equal(t, 100.0, report.Percentage)
	assert.Empty(t, report.Mistakes)
	assert.True(t, report.IsPerfect())
	assert.Equal(t, "General Knowledge Quiz", report.Title)

	stored, err := e.Report()
	require.NoError(t, err)
	assert.Same(t, report, stored)
	assert.True(t, e.Attempt().Finished)
}

func TestEngine_SampleAllWrong(t *testing.T) {
	e := NewEngine()
	quiz := loadSample(t)
	require.NoError(t, e.Load(quiz))

	wrong := make([]int, len(sampleAnswers))
	for i, correct := range sampleAnswers {
		wrong[i] = (correct + 1) % len(quiz.Questions[i].Choices)
	}
	report := answerAll(t, e, wrong)

	assert.Equal(t, 0, report.Correct)
	assert.Equal(t, 0.0, report.Percentage)
	require.Len(t, report.Mistakes, 10)
	for i, m := range report.Mistakes {
		assert.Equal(t, i, m.QuestionIndex)
		assert.Equal(t, quiz.Questions[i].Text, m.QuestionText)
		assert.Equal(t, quiz.Questions[i].Choices[wrong[i]], m.ChosenChoiceText)
		assert.Equal(t, quiz.Questions[i].CorrectChoiceText(), m.CorrectChoiceText)
	}
}

// buildQuiz строит викторину: choiceCounts[i] вариантов в вопросе i, правильный - correct[i]
func buildQuiz(choiceCounts, correct []int) *entity.Quiz {
	quiz := &entity.Quiz{Questions: make([]entity.Question, len(choiceCounts))}
	for i, n := range choiceCounts {
		choices := make([]string, n)
		for j := range choices {
			choices[j] = fmt.Sprintf("q%d-c%d", i, j)
		}
		quiz.Questions[i] = entity.Question{Text: fmt.Sprintf("Q%d", i+1), Choices: choices, CorrectAnswer: correct[i]}
	}
	return quiz
}

func TestEngine_ScoreExtremesForVariousQuizzes(t *testing.T) {
	tests := []struct {
		name         string
		choiceCounts []int
		correct      []int
	}{
		{"one question two choices", []int{2}, []int{0}},
		{"one question many choices", []int{6}, []int{5}},
		{"two-choice questions", []int{2, 2, 2}, []int{1, 0, 1}},
		{"mixed choice counts", []int{2, 5, 3, 4}, []int{1, 4, 0, 2}},
		{"long quiz", []int{3, 3, 3, 3, 3, 3, 3}, []int{0, 1, 2, 0, 1, 2, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name+" all correct", func(t *testing.T) {
			e := NewEngine()
			require.NoError(t, e.Load(buildQuiz(tt.choiceCounts, tt.correct)))

			report := answerAll(t, e, tt.correct)

			assert.Equal(t, len(tt.correct), report.Correct)
			assert.Equal(t, len(tt.correct), report.Total)
			assert.Equal(t, 100.0, report.Percentage)
			assert.Empty(t, report.Mistakes)
		})

		t.Run(tt.name+" all wrong", func(t *testing.T) {
			quiz := buildQuiz(tt.choiceCounts, tt.correct)
			e := NewEngine()
			require.NoError(t, e.Load(quiz))

			wrong := make([]int, len(tt.correct))
			for i, c := range tt.correct {
				wrong[i] = (c + 1) % tt.choiceCounts[i]
			}
			report := answerAll(t, e, wrong)

			assert.Equal(t, 0, report.Correct)
			assert.Equal(t, 0.0, report.Percentage)
			require.Len(t, report.Mistakes, len(tt.correct))
			for i, m := range report.Mistakes {
				assert.Equal(t, i, m.QuestionIndex)
				assert.Equal(t, quiz.Questions[i].Choices[wrong[i]], m.ChosenChoiceText)
				assert.Equal(t, quiz.Questions[i].Choices[tt.correct[i]], m.CorrectChoiceText)
			}
		})
	}
}

func TestEngine_CompletedRejectsCommands(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Load(threeQuestionQuiz()))
	answerAll(t, e, []int{0, 2, 1})

	assert.ErrorIs(t, e.SelectChoice(0), ErrInvalidState)
	assert.ErrorIs(t, e.Advance(), ErrInvalidState)
	_, err := e.Submit()
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorIs(t, e.Load(threeQuestionQuiz()), ErrInvalidState)
}

func TestEngine_ResetFromCompleted(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Load(threeQuestionQuiz()))
	answerAll(t, e, []int{1, 1, 1})

	e.Reset()

	assert.Equal(t, StateIdle, e.State())
	assert.Nil(t, e.Attempt())
	_, err := e.Report()
	assert.ErrorIs(t, err, ErrReportUnavailable)

	require.NoError(t, e.Load(threeQuestionQuiz()))
	attempt := e.Attempt()
	assert.Equal(t, 0, attempt.CurrentIndex)
	assert.Empty(t, attempt.Answers)
}

func TestEngine_ResetFromInProgressAndIdle(t *testing.T) {
	e := NewEngine()
	e.Reset()
	assert.Equal(t, StateIdle, e.State())

	require.NoError(t, e.Load(threeQuestionQuiz()))
	require.NoError(t, e.SelectChoice(1))
	e.Reset()

	assert.Equal(t, StateIdle, e.State())
	assert.Nil(t, e.Attempt())
}

func TestEngine_Progress(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Load(loadSample(t)))

	p, err := e.Progress()
	require.NoError(t, err)
	assert.Equal(t, "Question 1 of 10", p.Label)
	assert.Equal(t, 10.0, p.Percent)

	for i := 0; i < 9; i++ {
		require.NoError(t, e.SelectChoice(0))
		require.NoError(t, e.Advance())
	}

	p, err = e.Progress()
	require.NoError(t, err)
	assert.Equal(t, "Question 10 of 10", p.Label)
	assert.Equal(t, 100.0, p.Percent)
	assert.Equal(t, 10, p.Current)
	assert.Equal(t, 10, p.Total)
}

func TestEngine_AttemptIsACopy(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Load(threeQuestionQuiz()))
	require.NoError(t, e.SelectChoice(1))

	attempt := e.Attempt()
	*attempt.Selected = 0
	attempt.Answers = append(attempt.Answers, 5)

	fresh := e.Attempt()
	assert.Equal(t, 1, *fresh.Selected)
	assert.Empty(t, fresh.Answers)
}

func TestEngine_Snapshot(t *testing.T) {
	e := NewEngine(WithIDGenerator(func() string { return "snap" }))
	assert.Equal(t, Snapshot{State: StateIdle}, e.Snapshot())

	require.NoError(t, e.Load(threeQuestionQuiz()))
	require.NoError(t, e.SelectChoice(1))

	snap := e.Snapshot()
	assert.Equal(t, StateInProgress, snap.State)
	assert.Equal(t, "snap", snap.AttemptID)
	assert.Equal(t, "Tiny", snap.Title)
	require.NotNil(t, snap.Question)
	assert.Equal(t, "Q1", snap.Question.Text)
	require.NotNil(t, snap.Selected)
	assert.Equal(t, 1, *snap.Selected)
	require.NotNil(t, snap.Progress)
	assert.Equal(t, "Question 1 of 3", snap.Progress.Label)
	assert.False(t, snap.IsFinal)
	assert.Nil(t, snap.Report)

	require.NoError(t, e.Advance())
	require.NoError(t, e.SelectChoice(2))
	require.NoError(t, e.Advance())
	assert.True(t, e.Snapshot().IsFinal)
	require.NoError(t, e.SelectChoice(1))
	_, err := e.Submit()
	require.NoError(t, err)

	done := e.Snapshot()
	assert.Equal(t, StateCompleted, done.State)
	assert.Nil(t, done.Question)
	assert.Nil(t, done.Progress)
	require.NotNil(t, done.Report)
	assert.Equal(t, 2, done.Report.Correct)
	assert.Equal(t, 66.7, done.Report.Percentage)
	assert.Equal(t, 3, done.Answered)
}
