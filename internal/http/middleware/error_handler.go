package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dkruglov/freemarket-backend/internal/http/response"
	"github.com/dkruglov/freemarket-backend/internal/logger"
	"github.com/dkruglov/freemarket-backend/internal/pkg/apperror"
)

// ErrorHandler переводит ошибки, накопленные обработчиками, в единый
// конверт ответа. Внутренние ошибки маскируются и попадают только в лог.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		if logger.Log != nil && !apperror.IsNotFound(err) {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("request error")
		}

		response.Error(c, err)
	}
}
