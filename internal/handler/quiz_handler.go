package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/quiz-app/internal/handler/dto"
	"github.com/yourusername/quiz-app/internal/middleware"
	"github.com/yourusername/quiz-app/internal/pkg/logger"
	"github.com/yourusername/quiz-app/internal/service"
	"github.com/yourusername/quiz-app/internal/service/quizengine"
)

// ChoiceIndexKey - ключ контекста для индекса варианта (см. middleware.ExtractIntParam)
const ChoiceIndexKey = "choiceIndex"

// multipartOverhead - запас на заголовки multipart поверх лимита документа
const multipartOverhead = 64 * 1024

// QuizHandler обрабатывает команды викторины по HTTP
type QuizHandler struct {
	session        *service.QuizSession
	maxUploadBytes int64
	log            *logger.Logger
	now            func() time.Time
}

// NewQuizHandler создает новый обработчик викторины
func NewQuizHandler(session *service.QuizSession, maxUploadBytes int64, log *logger.Logger) *QuizHandler {
	return &QuizHandler{
		session:        session,
		maxUploadBytes: maxUploadBytes,
		log:            log.With("component", "quiz_handler"),
		now:            time.Now,
	}
}

// RegisterRoutes настраивает маршруты викторины в группе /api/quiz.
// uploadMiddleware применяется только к загрузке документа (например, rate limiting).
func (h *QuizHandler) RegisterRoutes(rg *gin.RouterGroup, uploadMiddleware ...gin.HandlerFunc) {
	upload := make([]gin.HandlerFunc, 0, len(uploadMiddleware)+1)
	upload = append(append(upload, uploadMiddleware...), h.Upload)

	quiz := rg.Group("/quiz")
	{
		quiz.GET("", h.GetView)
		quiz.POST("/upload", upload...)
		quiz.POST("/sample", h.LoadSample)
		quiz.POST("/choices/:index", middleware.ExtractIntParam("index", ChoiceIndexKey), h.SelectChoice)
		quiz.POST("/next", h.Next)
		quiz.POST("/submit", h.Submit)
		quiz.POST("/restart", h.Restart)
		quiz.GET("/report", h.GetReport)
		quiz.GET("/report/export", h.ExportReport)
	}
}

// GetView возвращает текущий экран
// GET /api/quiz
func (h *QuizHandler) GetView(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewQuizView(h.session.Snapshot()))
}

// Upload загружает документ викторины: multipart-поле "file" или JSON в теле запроса
// POST /api/quiz/upload
func (h *QuizHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)

	var (
		snap quizengine.Snapshot
		err  error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fileHeader, formErr := c.FormFile("file")
		if formErr != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(formErr, &tooLarge) {
				h.handleQuizError(c, fmt.Errorf("%w: %v", service.ErrDocumentTooLarge, formErr))
				return
			}
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Multipart field \"file\" is required", Code: "missing_file"})
			return
		}
		if fileHeader.Size > h.maxUploadBytes {
			h.handleQuizError(c, fmt.Errorf("%w: %d bytes", service.ErrDocumentTooLarge, fileHeader.Size))
			return
		}

		file, openErr := fileHeader.Open()
		if openErr != nil {
			h.handleQuizError(c, openErr)
			return
		}
		defer file.Close()
		snap, err = h.session.LoadFile(file)
	} else {
		snap, err = h.session.LoadFile(c.Request.Body)
	}

	if err != nil {
		h.handleQuizError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuizView(snap))
}

// LoadSample загружает пример викторины
// POST /api/quiz/sample
func (h *QuizHandler) LoadSample(c *gin.Context) {
	snap, err := h.session.LoadSample(c.Request.Context())
	if err != nil {
		h.handleQuizError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuizView(snap))
}

// SelectChoice выбирает вариант ответа на текущий вопрос
// POST /api/quiz/choices/:index
func (h *QuizHandler) SelectChoice(c *gin.Context) {
	index := c.MustGet(ChoiceIndexKey).(int)
	h.respond(c)(h.session.SelectChoice(index))
}

// Next переходит к следующему вопросу
// POST /api/quiz/next
func (h *QuizHandler) Next(c *gin.Context) {
	h.respond(c)(h.session.Advance())
}

// Submit завершает викторину
// POST /api/quiz/submit
func (h *QuizHandler) Submit(c *gin.Context) {
	h.respond(c)(h.session.Submit())
}

// Restart возвращает к загрузке новой викторины
// POST /api/quiz/restart
func (h *QuizHandler) Restart(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewQuizView(h.session.Restart()))
}

// GetReport возвращает отчет завершенной попытки
// GET /api/quiz/report
func (h *QuizHandler) GetReport(c *gin.Context) {
	report, err := h.session.Report()
	if err != nil {
		h.handleQuizError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *QuizHandler) respond(c *gin.Context) func(quizengine.Snapshot, error) {
	return func(snap quizengine.Snapshot, err error) {
		if err != nil {
			h.handleQuizError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewQuizView(snap))
	}
}

// handleQuizError обрабатывает ошибки викторины и отправляет соответствующий HTTP-ответ
func (h *QuizHandler) handleQuizError(c *gin.Context, err error) {
	status, resp := errorResponse(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("Internal server error in QuizHandler", "path", c.FullPath(), "error", err)
	}
	_ = c.Error(err)
	c.JSON(status, resp)
}
