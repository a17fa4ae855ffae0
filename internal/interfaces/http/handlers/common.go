// Package handlers holds the gin HTTP handlers for preparation, docking,
// verification, and health endpoints.
package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	apperrors "github.com/arqgene/dockprep/pkg/errors"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps an application error to its HTTP status and writes the
// standard error body.  Internal errors are masked.
func respondError(c *gin.Context, err error) {
	code := apperrors.GetCode(err)
	status := apperrors.HTTPStatus(code)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code.String(), Message: msg})
}

// respondBadRequest is for binding and validation failures at the edge.
func respondBadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Code:    apperrors.ErrCodeBadRequest.String(),
		Message: msg,
	})
}

// saveUpload stores one multipart file into dir and returns its path.
func saveUpload(c *gin.Context, field, dir string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "missing upload field "+field)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "creating upload directory")
	}
	dst := filepath.Join(dir, filepath.Base(fh.Filename))
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "storing upload")
	}
	return dst, nil
}
