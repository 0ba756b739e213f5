package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dkruglov/freemarket-backend/internal/http/handlers/common"
	"github.com/dkruglov/freemarket-backend/internal/http/response"
	"github.com/dkruglov/freemarket-backend/internal/storage"
)

// MediaHandler принимает загрузки файлов: результаты работ по этапам,
// файлы споров и вложения сообщений.
type MediaHandler struct {
	files *storage.FileStorage
}

// NewMediaHandler создаёт новый хэндлер.
func NewMediaHandler(files *storage.FileStorage) *MediaHandler {
	return &MediaHandler{files: files}
}

// Upload обрабатывает POST /media/upload.
// Возвращает относительный путь, который клиент передаёт в file_url.
func (h *MediaHandler) Upload(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "файл обязателен")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "не удалось открыть файл")
		return
	}
	defer f.Close()

	relativePath, size, err := h.files.Save(c.Request.Context(), actor.UserID, fileHeader.Filename, f)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Created(c, gin.H{
		"file_url": relativePath,
		"size":     size,
	})
}
