package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MaxUploadSize bounds every multipart file read into memory.
const MaxUploadSize = 10 << 20

// bindJSON decodes the body into v or answers 400.
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		getLogger(c).Debug("invalid request body", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "Datos inválidos", err.Error())
		return false
	}
	return true
}

func readUpload(fh *multipart.FileHeader) (*models.UploadedFile, error) {
	if fh.Size > MaxUploadSize {
		return nil, utils.BadRequest(fmt.Sprintf("El archivo %s excede el tamaño máximo permitido", fh.Filename))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &models.UploadedFile{Name: fh.Filename, ContentType: contentType, Data: data}, nil
}

// formFile reads an optional multipart file. A missing field yields nil.
func formFile(c *gin.Context, field string) (*models.UploadedFile, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	return readUpload(fh)
}

// formFiles reads every file sent under field.
func formFiles(c *gin.Context, field string) ([]models.UploadedFile, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil
	}
	var out []models.UploadedFile
	for _, fh := range form.File[field] {
		up, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, *up)
	}
	return out, nil
}

func sendFile(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
