package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestion_IsCorrect_CorrectAnswer(t *testing.T) {
	// Arrange
	question := &Question{
		Text:          "Which planet is known as the Red Planet?",
		Choices:       []string{"Venus", "Mars", "Jupiter", "Saturn"},
		CorrectAnswer: 1,
	}

	// Act & Assert
	assert.True(t, question.IsCorrect(1), "IsCorrect должен вернуть true для правильного ответа")
}

func TestQuestion_IsCorrect_IncorrectAnswer(t *testing.T) {
	question := &Question{CorrectAnswer: 2}

	assert.False(t, question.IsCorrect(0))
	assert.False(t, question.IsCorrect(1))
	assert.False(t, question.IsCorrect(3))
	assert.False(t, question.IsCorrect(Unanswered))
}

func TestQuestion_IsValidOption(t *testing.T) {
	question := &Question{Choices: []string{"A", "B", "C", "D"}}

	for i := 0; i < 4; i++ {
		assert.True(t, question.IsValidOption(i), "индекс %d должен быть валидным", i)
	}
	assert.False(t, question.IsValidOption(-1), "Отрицательный индекс должен быть невалидным")
	assert.False(t, question.IsValidOption(4), "Индекс вне диапазона должен быть невалидным")
}

func TestQuestion_ChoiceText(t *testing.T) {
	question := &Question{Choices: []string{"Go", "Gd", "Au", "Ag"}, CorrectAnswer: 2}

	assert.Equal(t, "Gd", question.ChoiceText(1))
	assert.Equal(t, "Au", question.CorrectChoiceText())
	assert.Equal(t, "", question.ChoiceText(Unanswered))
	assert.Equal(t, "", question.ChoiceText(10))
}

func TestQuiz_IsFinalAndQuestionAt(t *testing.T) {
	quiz := &Quiz{Questions: []Question{{Text: "a"}, {Text: "b"}, {Text: "c"}}}

	assert.Equal(t, 3, quiz.QuestionCount())
	assert.False(t, quiz.IsFinal(0))
	assert.True(t, quiz.IsFinal(2))

	q := quiz.QuestionAt(1)
	require.NotNil(t, q)
	assert.Equal(t, "b", q.Text)
	assert.Nil(t, quiz.QuestionAt(3))
	assert.Nil(t, quiz.QuestionAt(-1))
}

func TestAttempt_CurrentQuestion(t *testing.T) {
	quiz := &Quiz{Questions: []Question{{Text: "a"}, {Text: "b"}}}
	attempt := &Attempt{Quiz: quiz, Answers: []int{1}}

	assert.False(t, attempt.HasSelection())
	assert.False(t, attempt.IsOnFinalQuestion())

	attempt.CurrentIndex = 1
	assert.True(t, attempt.IsOnFinalQuestion())
	require.NotNil(t, attempt.CurrentQuestion())
	assert.Equal(t, "b", attempt.CurrentQuestion().Text)

	attempt.CurrentIndex = 2
	assert.Nil(t, attempt.CurrentQuestion())
}
