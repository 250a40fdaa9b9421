package entity

import "time"

// Unanswered отмечает вопрос без записанного ответа в отчете
const Unanswered = -1

// Attempt - одно прохождение викторины: позиция, выбор и записанные ответы
type Attempt struct {
	ID           string    `json:"id"`
	Quiz         *Quiz     `json:"-"`
	CurrentIndex int       `json:"current_index"`
	Answers      []int     `json:"answers"`
	Selected     *int      `json:"selected,omitempty"` // Предварительный выбор, сбрасывается при смене вопроса
	Finished     bool      `json:"finished"`
	StartedAt    time.Time `json:"started_at"`
}

// HasSelection проверяет, выбран ли вариант для текущего вопроса
func (a *Attempt) HasSelection() bool {
	return a.Selected != nil
}

// CurrentQuestion возвращает активный вопрос или nil, если все вопросы пройдены
func (a *Attempt) CurrentQuestion() *Question {
	if a.Quiz == nil {
		return nil
	}
	return a.Quiz.QuestionAt(a.CurrentIndex)
}

// IsOnFinalQuestion проверяет, стоит ли попытка на последнем вопросе
func (a *Attempt) IsOnFinalQuestion() bool {
	return a.Quiz != nil && a.Quiz.IsFinal(a.CurrentIndex)
}

// Mistake описывает вопрос, ответ на который отличается от правильного
type Mistake struct {
	QuestionIndex     int    `json:"question_index"`
	QuestionText      string `json:"question_text"`
	ChosenChoiceText  string `json:"chosen_choice_text"`
	CorrectChoiceText string `json:"correct_choice_text"`
}

// ScoreReport - итог завершенной попытки. Вычисляется один раз и не меняется.
type ScoreReport struct {
	Title      string    `json:"title,omitempty"`
	Correct    int       `json:"correct"`
	Total      int       `json:"total"`
	Percentage float64   `json:"percentage"`
	Mistakes   []Mistake `json:"mistakes"`
}

// IsPerfect проверяет, что ошибок нет
func (r *ScoreReport) IsPerfect() bool {
	return len(r.Mistakes) == 0
}

// Progress - положение в викторине для отображения
type Progress struct {
	Current int     `json:"current"` // 1-based номер вопроса
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
	Label   string  `json:"label"`
}
