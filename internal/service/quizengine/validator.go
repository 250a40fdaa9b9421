package quizengine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/yourusername/quiz-app/internal/domain/entity"
)

// MinChoices - минимальное количество вариантов в вопросе
const MinChoices = 2

// Parse - единая точка приема документа викторины независимо от источника
// (загруженный файл, ответ сети, встроенный пример).
func Parse(data []byte) (*entity.Quiz, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrParse)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber() // Сохраняем числа как есть, чтобы отличать 1 от 1.5

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after document", ErrParse)
	}

	return Validate(raw)
}

// Validate проверяет разобранный JSON-документ и строит Quiz.
// Проверка выполняется целиком: первая ошибка прерывает разбор, частичных результатов нет.
func Validate(raw interface{}) (*entity.Quiz, error) {
	doc, ok := raw.(map[string]interface{})
	if !ok {
		return nil, documentError(ErrMissingQuestions, "document must be an object")
	}

	rawQuestions, ok := doc["questions"]
	if !ok {
		return nil, documentError(ErrMissingQuestions, `"questions" field is missing`)
	}
	items, ok := rawQuestions.([]interface{})
	if !ok {
		return nil, documentError(ErrMissingQuestions, `"questions" must be an array`)
	}
	if len(items) == 0 {
		return nil, documentError(ErrMissingQuestions, `"questions" must not be empty`)
	}

	quiz := &entity.Quiz{
		Questions: make([]entity.Question, 0, len(items)),
	}
	if title, ok := doc["title"].(string); ok {
		quiz.Title = strings.TrimSpace(title)
	}

	for i, item := range items {
		q, err := validateQuestion(i, item)
		if err != nil {
			return nil, err
		}
		quiz.Questions = append(quiz.Questions, q)
	}

	return quiz, nil
}

func validateQuestion(index int, item interface{}) (entity.Question, error) {
	obj, ok := item.(map[string]interface{})
	if !ok {
		return entity.Question{}, questionError(ErrMalformedQuestion, index, "question must be an object")
	}

	text, _ := obj["question"].(string)
	if text == "" {
		return entity.Question{}, questionError(ErrMalformedQuestion, index, "question text is missing")
	}

	rawChoices, ok := obj["choices"].([]interface{})
	if !ok {
		return entity.Question{}, questionError(ErrMalformedQuestion, index, `"choices" must be an array`)
	}
	if len(rawChoices) < MinChoices {
		return entity.Question{}, questionError(ErrMalformedQuestion, index,
			fmt.Sprintf("at least %d choices required, got %d", MinChoices, len(rawChoices)))
	}
	choices := make([]string, len(rawChoices))
	for j, c := range rawChoices {
		s, ok := c.(string)
		if !ok {
			return entity.Question{}, questionError(ErrMalformedQuestion, index, fmt.Sprintf("choice %d is not a string", j))
		}
		choices[j] = s
	}

	correct, ok := asInteger(obj["correctAnswer"])
	if !ok {
		return entity.Question{}, questionError(ErrInvalidAnswerType, index, `"correctAnswer" must be an integer`)
	}
	if correct < 0 || correct >= len(choices) {
		return entity.Question{}, questionError(ErrAnswerOutOfRange, index,
			fmt.Sprintf(`"correctAnswer" %d is outside [0, %d)`, correct, len(choices)))
	}

	return entity.Question{
		Text:          text,
		Choices:       choices,
		CorrectAnswer: correct,
	}, nil
}

// asInteger принимает целые числа, в том числе записанные как 1.0.
// Документы, декодированные без UseNumber, приходят как float64.
func asInteger(v interface{}) (int, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		parsed, err := n.Float64()
		// Переполнение дает ±Inf, ниже оно сводится к проверке диапазона
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}

	if math.IsNaN(f) || (!math.IsInf(f, 0) && f != math.Trunc(f)) {
		return 0, false
	}
	// Целое, но не помещается в int: дальше сработает проверка диапазона
	if f > math.MaxInt32 {
		return math.MaxInt32, true
	}
	if f < math.MinInt32 {
		return math.MinInt32, true
	}
	return int(f), true
}
