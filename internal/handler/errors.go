package handler

import (
	"errors"
	"net/http"

	apperrors "github.com/yourusername/quiz-app/internal/pkg/errors"
	"github.com/yourusername/quiz-app/internal/service"
	"github.com/yourusername/quiz-app/internal/service/quizengine"
)

// ErrorResponse - тело ответа об ошибке (HTTP и WebSocket)
type ErrorResponse struct {
	Error          string `json:"error"`
	Code           string `json:"code"`
	ExpectedFormat string `json:"expected_format,omitempty"`
	QuestionNumber int    `json:"question_number,omitempty"` // 1-based, только для ошибок валидации вопроса
}

// errorResponse сопоставляет ошибку со статусом и телом ответа
func errorResponse(err error) (int, ErrorResponse) {
	var vErr *quizengine.ValidationError
	switch {
	case errors.As(err, &vErr):
		resp := ErrorResponse{
			Error:          err.Error(),
			Code:           "invalid_format",
			ExpectedFormat: quizengine.ExpectedFormat,
		}
		if vErr.QuestionIndex >= 0 {
			resp.QuestionNumber = vErr.QuestionIndex + 1
		}
		return http.StatusUnprocessableEntity, resp
	case errors.Is(err, quizengine.ErrParse):
		return http.StatusBadRequest, ErrorResponse{Error: quizengine.InvalidJSONMessage, Code: "invalid_json", ExpectedFormat: quizengine.ExpectedFormat}
	case errors.Is(err, service.ErrDocumentTooLarge):
		return http.StatusRequestEntityTooLarge, ErrorResponse{Error: err.Error(), Code: "document_too_large"}
	case errors.Is(err, quizengine.ErrNoSelection):
		return http.StatusUnprocessableEntity, ErrorResponse{Error: "Please select an answer", Code: "no_selection"}
	case errors.Is(err, quizengine.ErrChoiceOutOfRange):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "choice_out_of_range"}
	case errors.Is(err, quizengine.ErrFinalQuestion):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "final_question"}
	case errors.Is(err, quizengine.ErrNotFinalQuestion):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "not_final_question"}
	case errors.Is(err, quizengine.ErrReportUnavailable):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "report_unavailable"}
	case errors.Is(err, quizengine.ErrInvalidState):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "invalid_state"}
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"}
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "conflict"}
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "validation_error"}
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "bad_request"}
	case errors.Is(err, apperrors.ErrUnavailable):
		return http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Code: "unavailable"}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "Internal server error", Code: "internal_error"}
	}
}
