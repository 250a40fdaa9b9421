package helper

// ChoiceOption представляет вариант ответа для фронтенда
type ChoiceOption struct {
	ID       int    `json:"id"`
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
}

// ConvertChoicesToObjects преобразует варианты ответа в объекты с id и text.
// ID использует 0-based индексацию, как correctAnswer в документе викторины.
func ConvertChoicesToObjects(choices []string, selected *int) []ChoiceOption {
	converted := make([]ChoiceOption, len(choices))
	for i, choice := range choices {
		converted[i] = ChoiceOption{
			ID:       i,
			Text:     choice,
			Selected: selected != nil && *selected == i,
		}
	}
	return converted
}

// SanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func SanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
