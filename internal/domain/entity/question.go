package entity

// Question представляет вопрос с вариантами ответа
type Question struct {
	Text          string   `json:"question"`
	Choices       []string `json:"choices"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// IsCorrect проверяет, является ли выбранный вариант правильным
func (q *Question) IsCorrect(selectedOption int) bool {
	return selectedOption == q.CorrectAnswer
}

// OptionsCount возвращает количество вариантов ответа
func (q *Question) OptionsCount() int {
	return len(q.Choices)
}

// IsValidOption проверяет, является ли выбранный вариант допустимым
func (q *Question) IsValidOption(selectedOption int) bool {
	return selectedOption >= 0 && selectedOption < len(q.Choices)
}

// ChoiceText возвращает текст варианта или пустую строку для недопустимого индекса
func (q *Question) ChoiceText(index int) string {
	if !q.IsValidOption(index) {
		return ""
	}
	return q.Choices[index]
}

// CorrectChoiceText возвращает текст правильного варианта
func (q *Question) CorrectChoiceText() string {
	return q.ChoiceText(q.CorrectAnswer)
}
