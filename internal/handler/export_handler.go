package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/quiz-app/internal/domain/entity"
	"github.com/yourusername/quiz-app/internal/handler/dto"
	"github.com/yourusername/quiz-app/internal/handler/helper"
)

var reportHeaders = []string{"Question", "Question Text", "Your Answer", "Correct Answer"}

// ExportReport выгружает отчет завершенной попытки в CSV или Excel
// GET /api/quiz/report/export?format=csv|xlsx
func (h *QuizHandler) ExportReport(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("Unsupported export format: %s", format), Code: "unsupported_format"})
		return
	}

	report, err := h.session.Report()
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	filename := fmt.Sprintf("quiz_report_%s", h.now().Format("2006-01-02"))
	switch format {
	case "xlsx":
		h.exportXLSX(c, report, filename)
	default:
		h.exportCSV(c, report, filename)
	}
}

// reportSummary - строки сводки над таблицей ошибок
func reportSummary(report *entity.ScoreReport) [][]string {
	results := dto.NewResultsView(report)
	rows := [][]string{
		{"Quiz", helper.SanitizeForExcel(report.Title)},
		{"Score", results.ScoreText},
		{"Percentage", results.PercentageText},
	}
	if results.Perfect {
		rows = append(rows, []string{"Mistakes", results.PerfectMessage})
	}
	return rows
}

func mistakeRow(m entity.Mistake) []string {
	return []string{
		strconv.Itoa(m.QuestionIndex + 1),
		helper.SanitizeForExcel(m.QuestionText),
		helper.SanitizeForExcel(m.ChosenChoiceText),
		helper.SanitizeForExcel(m.CorrectChoiceText),
	}
}

// exportCSV выгружает отчет в CSV с правильным экранированием спецсимволов
func (h *QuizHandler) exportCSV(c *gin.Context, report *entity.ScoreReport, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))
	c.Status(http.StatusOK)

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	for _, row := range reportSummary(report) {
		writer.Write(row)
	}
	writer.Write(nil)
	writer.Write(reportHeaders)
	for _, m := range report.Mistakes {
		writer.Write(mistakeRow(m))
	}
}

// exportXLSX выгружает отчет в Excel с использованием StreamWriter
func (h *QuizHandler) exportXLSX(c *gin.Context, report *entity.ScoreReport, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Report"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		h.log.Error("Failed to create StreamWriter", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create Excel file", Code: "internal_error"})
		return
	}

	rowNum := 1
	writeRow := func(values []string) {
		row := make([]interface{}, len(values))
		for i, v := range values {
			row[i] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := sw.SetRow(cell, row); err != nil {
			h.log.Warn("Failed to write Excel row", "row", rowNum, "error", err)
		}
		rowNum++
	}

	for _, row := range reportSummary(report) {
		writeRow(row)
	}
	rowNum++ // пустая строка между сводкой и таблицей
	writeRow(reportHeaders)
	for _, m := range report.Mistakes {
		writeRow(mistakeRow(m))
	}

	if err := sw.Flush(); err != nil {
		h.log.Error("Failed to flush Excel stream", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create Excel file", Code: "internal_error"})
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.log.Error("Failed to write Excel to response", "error", err)
	}
}
