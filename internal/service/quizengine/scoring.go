package quizengine

import (
	"fmt"
	"math"

	"github.com/yourusername/quiz-app/internal/domain/entity"
)

// Score вычисляет отчет по записанным ответам.
// Отсутствующие ответы считаются ошибками с пустым текстом выбранного варианта.
func Score(quiz *entity.Quiz, answers []int) *entity.ScoreReport {
	total := quiz.QuestionCount()
	report := &entity.ScoreReport{
		Title:    quiz.Title,
		Total:    total,
		Mistakes: make([]entity.Mistake, 0),
	}

	for i := range quiz.Questions {
		question := &quiz.Questions[i]
		answer := entity.Unanswered
		if i < len(answers) {
			answer = answers[i]
		}

		if question.IsCorrect(answer) {
			report.Correct++
			continue
		}
		report.Mistakes = append(report.Mistakes, entity.Mistake{
			QuestionIndex:     i,
			QuestionText:      question.Text,
			ChosenChoiceText:  question.ChoiceText(answer),
			CorrectChoiceText: question.CorrectChoiceText(),
		})
	}

	report.Percentage = percentOf(report.Correct, total)
	return report
}

// ProgressAt возвращает прогресс для вопроса с индексом currentIndex
func ProgressAt(currentIndex, total int) entity.Progress {
	return entity.Progress{
		Current: currentIndex + 1,
		Total:   total,
		Percent: percentOf(currentIndex+1, total),
		Label:   fmt.Sprintf("Question %d of %d", currentIndex+1, total),
	}
}

// percentOf округляет долю до одного знака после запятой
func percentOf(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}
