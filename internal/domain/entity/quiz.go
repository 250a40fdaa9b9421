package entity

// Quiz представляет проверенный набор вопросов
type Quiz struct {
	Title     string     `json:"title,omitempty"`
	Questions []Question `json:"questions"`
}

// QuestionCount возвращает количество вопросов
func (q *Quiz) QuestionCount() int {
	return len(q.Questions)
}

// IsFinal проверяет, является ли вопрос с данным индексом последним
func (q *Quiz) IsFinal(index int) bool {
	return index == len(q.Questions)-1
}

// QuestionAt возвращает вопрос по индексу или nil
func (q *Quiz) QuestionAt(index int) *Question {
	if index < 0 || index >= len(q.Questions) {
		return nil
	}
	return &q.Questions[index]
}
