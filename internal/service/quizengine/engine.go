package quizengine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/quiz-app/internal/domain/entity"
)

// State - состояние движка викторины
type State string

const (
	StateIdle       State = "idle"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// Option настраивает Engine
type Option func(*Engine)

// WithClock подменяет источник времени (для тестов)
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithIDGenerator подменяет генератор идентификаторов попыток
func WithIDGenerator(gen func() string) Option { return func(e *Engine) { e.newID = gen } }

// Engine - конечный автомат одной попытки: Idle -> InProgress -> Completed -> Idle.
// Engine не потокобезопасен, синхронизация - забота владельца (см. service.QuizSession).
// Любая неуспешная команда оставляет состояние без изменений.
type Engine struct {
	state   State
	attempt *entity.Attempt
	report  *entity.ScoreReport

	now   func() time.Time
	newID func() string
}

// NewEngine создает движок в состоянии Idle
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		state: StateIdle,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// State возвращает текущее состояние
func (e *Engine) State() State {
	return e.state
}

// Load начинает новую попытку. Допустимо только из Idle.
func (e *Engine) Load(quiz *entity.Quiz) error {
	if e.state != StateIdle {
		return fmt.Errorf("%w: load requires %s, engine is %s", ErrInvalidState, StateIdle, e.state)
	}
	if quiz == nil || quiz.QuestionCount() == 0 {
		return documentError(ErrMissingQuestions, "quiz has no questions")
	}

	e.attempt = &entity.Attempt{
		ID:           e.newID(),
		Quiz:         quiz,
		CurrentIndex: 0,
		Answers:      make([]int, 0, quiz.QuestionCount()),
		StartedAt:    e.now(),
	}
	e.report = nil
	e.state = StateInProgress
	return nil
}

// SelectChoice запоминает предварительный выбор для текущего вопроса, ответы не меняются
func (e *Engine) SelectChoice(index int) error {
	if e.state != StateInProgress {
		return fmt.Errorf("%w: select requires %s, engine is %s", ErrInvalidState, StateInProgress, e.state)
	}
	question := e.attempt.CurrentQuestion()
	if !question.IsValidOption(index) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrChoiceOutOfRange, index, question.OptionsCount())
	}

	selected := index
	e.attempt.Selected = &selected
	return nil
}

// Advance фиксирует выбор и переходит к следующему вопросу.
// На последнем вопросе нужно вызывать Submit.
func (e *Engine) Advance() error {
	if err := e.checkCommit(); err != nil {
		return err
	}
	if e.attempt.IsOnFinalQuestion() {
		return ErrFinalQuestion
	}

	e.commitSelection()
	e.attempt.CurrentIndex++
	return nil
}

// Submit фиксирует ответ на последний вопрос, считает результат и завершает попытку
func (e *Engine) Submit() (*entity.ScoreReport, error) {
	if err := e.checkCommit(); err != nil {
		return nil, err
	}
	if !e.attempt.IsOnFinalQuestion() {
		return nil, ErrNotFinalQuestion
	}

	e.commitSelection()
	e.attempt.Finished = true
	e.report = Score(e.attempt.Quiz, e.attempt.Answers)
	e.state = StateCompleted
	return e.report, nil
}

// Reset сбрасывает движок в Idle из любого состояния
func (e *Engine) Reset() {
	e.state = StateIdle
	e.attempt = nil
	e.report = nil
}

// CurrentQuestion возвращает активный вопрос
func (e *Engine) CurrentQuestion() (*entity.Question, error) {
	if e.state != StateInProgress {
		return nil, fmt.Errorf("%w: no active question in %s", ErrInvalidState, e.state)
	}
	return e.attempt.CurrentQuestion(), nil
}

// Progress возвращает прогресс для активного вопроса
func (e *Engine) Progress() (entity.Progress, error) {
	if e.state != StateInProgress {
		return entity.Progress{}, fmt.Errorf("%w: no progress in %s", ErrInvalidState, e.state)
	}
	return ProgressAt(e.attempt.CurrentIndex, e.attempt.Quiz.QuestionCount()), nil
}

// Report возвращает отчет завершенной попытки
func (e *Engine) Report() (*entity.ScoreReport, error) {
	if e.state != StateCompleted {
		return nil, ErrReportUnavailable
	}
	return e.report, nil
}

// Attempt возвращает копию текущей попытки или nil в состоянии Idle
func (e *Engine) Attempt() *entity.Attempt {
	if e.attempt == nil {
		return nil
	}
	cp := *e.attempt
	cp.Answers = append([]int(nil), e.attempt.Answers...)
	if e.attempt.Selected != nil {
		selected := *e.attempt.Selected
		cp.Selected = &selected
	}
	return &cp
}

func (e *Engine) checkCommit() error {
	if e.state != StateInProgress {
		return fmt.Errorf("%w: requires %s, engine is %s", ErrInvalidState, StateInProgress, e.state)
	}
	if !e.attempt.HasSelection() {
		return ErrNoSelection
	}
	return nil
}

func (e *Engine) commitSelection() {
	e.attempt.Answers = append(e.attempt.Answers, *e.attempt.Selected)
	e.attempt.Selected = nil
}
