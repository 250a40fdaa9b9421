package quizengine

import (
	"errors"
	"fmt"

	apperrors "github.com/yourusername/quiz-app/internal/pkg/errors"
)

// Виды ошибок валидации документа викторины
var (
	ErrMissingQuestions  = fmt.Errorf("%w: missing questions", apperrors.ErrValidation)
	ErrMalformedQuestion = fmt.Errorf("%w: malformed question", apperrors.ErrValidation)
	ErrInvalidAnswerType = fmt.Errorf("%w: invalid answer type", apperrors.ErrValidation)
	ErrAnswerOutOfRange  = fmt.Errorf("%w: answer out of range", apperrors.ErrValidation)
)

// Ошибки разбора и команд попытки
var (
	// ErrParse - входные байты не являются корректным JSON.
	ErrParse = fmt.Errorf("%w: document is not valid JSON", apperrors.ErrBadRequest)

	// ErrNoSelection - переход или отправка без выбранного варианта.
	ErrNoSelection = fmt.Errorf("%w: please select an answer", apperrors.ErrValidation)

	// ErrChoiceOutOfRange - индекс варианта вне списка вариантов текущего вопроса.
	ErrChoiceOutOfRange = fmt.Errorf("%w: choice index out of range", apperrors.ErrBadRequest)

	// ErrInvalidState - команда недопустима в текущем состоянии движка.
	ErrInvalidState = fmt.Errorf("%w: operation not allowed in current state", apperrors.ErrConflict)

	// ErrFinalQuestion - advance на последнем вопросе, нужно вызвать submit.
	ErrFinalQuestion = fmt.Errorf("%w: final question must be submitted", apperrors.ErrConflict)

	// ErrNotFinalQuestion - submit до последнего вопроса.
	ErrNotFinalQuestion = fmt.Errorf("%w: submit is only allowed on the final question", apperrors.ErrConflict)

	// ErrReportUnavailable - отчет запрошен до завершения попытки.
	ErrReportUnavailable = fmt.Errorf("%w: attempt is not completed", apperrors.ErrConflict)
)

// ExpectedFormat описывает ожидаемую структуру документа для сообщений пользователю
const ExpectedFormat = `Invalid quiz format. Please ensure your JSON file has a "questions" array where each question has: question text, choices array, and correctAnswer index.`

// InvalidJSONMessage - сообщение пользователю, если документ не разбирается как JSON
const InvalidJSONMessage = "Invalid JSON file format. Please check your file and try again."

// ValidationError - отказ валидации с привязкой к вопросу.
// Kind - одна из ошибок ErrMissingQuestions / ErrMalformedQuestion / ErrInvalidAnswerType / ErrAnswerOutOfRange.
type ValidationError struct {
	Kind          error
	QuestionIndex int // -1 для ошибок уровня документа
	Detail        string
}

func (e *ValidationError) Error() string {
	if e.QuestionIndex < 0 {
		return fmt.Sprintf("%v: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("%v: question %d: %s", e.Kind, e.QuestionIndex+1, e.Detail)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func documentError(kind error, detail string) error {
	return &ValidationError{Kind: kind, QuestionIndex: -1, Detail: detail}
}

func questionError(kind error, index int, detail string) error {
	return &ValidationError{Kind: kind, QuestionIndex: index, Detail: detail}
}

// IsValidationError проверяет, что ошибка относится к валидации документа
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
