package websocket

// Команды клиента
const (
	// LOAD_SAMPLE загружает пример викторины
	LOAD_SAMPLE = "LOAD_SAMPLE"

	// LOAD_QUIZ загружает документ викторины из поля data
	LOAD_QUIZ = "LOAD_QUIZ"

	// SELECT_CHOICE выбирает вариант ответа: {"index": N}
	SELECT_CHOICE = "SELECT_CHOICE"

	// NEXT переходит к следующему вопросу
	NEXT = "NEXT"

	// SUBMIT завершает викторину на последнем вопросе
	SUBMIT = "SUBMIT"

	// RESTART возвращает к загрузке новой викторины
	RESTART = "RESTART"

	// GET_VIEW запрашивает текущий экран
	GET_VIEW = "GET_VIEW"
)

// Сообщения сервера
const (
	// VIEW содержит текущий экран; рассылается всем клиентам после каждого изменения
	VIEW = "VIEW"

	// ERROR отправляется только клиенту, чья команда была отклонена
	ERROR = "ERROR"
)

// ErrorData - содержимое сообщения ERROR
type ErrorData struct {
	Code           string `json:"code"`
	Message        string `json:"message"`
	ExpectedFormat string `json:"expected_format,omitempty"`
}
