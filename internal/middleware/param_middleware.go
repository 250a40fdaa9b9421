package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ExtractIntParam создает middleware для извлечения неотрицательного числового параметра URL.
// paramName - имя параметра в URL (например, "index").
// contextKey - ключ, под которым значение будет сохранено в контексте Gin.
func ExtractIntParam(paramName, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param(paramName)
		value, err := strconv.ParseUint(raw, 10, 31)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Invalid %s", paramName),
				"code":  "invalid_param",
			})
			return
		}
		c.Set(contextKey, int(value))
		c.Next()
	}
}
