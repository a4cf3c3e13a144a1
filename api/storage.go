package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/backend-template/database/pagination"
	apperrors "github.com/kbukum/backend-template/errors"
	"github.com/kbukum/backend-template/logger"
	"github.com/kbukum/backend-template/server"
	"github.com/kbukum/backend-template/storage"
	"github.com/kbukum/backend-template/util"
)

const (
	// multipartMemory is how much of a form is buffered before parts
	// spill to temporary files.
	multipartMemory = 8 << 20
	// multipartOverhead allows for boundaries and the other form fields
	// on top of the file itself.
	multipartOverhead = 1 << 20
)

// StorageHandler exposes the storage gateway.
type StorageHandler struct {
	gateway  *storage.Gateway
	pageSize int
	log      *logger.Logger
}

// ObjectURLResponse is the body of the presigned URL endpoint.
type ObjectURLResponse struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expiresIn"`
}

// List returns the keys under ?prefix=, one page at a time.
func (h *StorageHandler) List(c *gin.Context) {
	params, err := pagination.ParseParams(c.Request.URL.Query(), h.pageSize)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	keys, err := h.gateway.ListObjects(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		server.RespondWithError(c, storage.FromStorage(err))
		return
	}
	page, err := pagination.Slice(keys, params, requestURL(c))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, page)
}

// URL returns a presigned download URL for ?key=.
func (h *StorageHandler) URL(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		server.RespondWithError(c, apperrors.MissingField("key"))
		return
	}
	u, err := h.gateway.ObjectURL(c.Request.Context(), key)
	if err != nil {
		server.RespondWithError(c, storage.FromStorage(err))
		return
	}
	server.RespondOK(c, ObjectURLResponse{Key: key, URL: u, ExpiresIn: int(h.gateway.URLExpiry() / time.Second)})
}

// Delete removes ?key=.
func (h *StorageHandler) Delete(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		server.RespondWithError(c, apperrors.MissingField("key"))
		return
	}
	if err := h.gateway.DeleteObject(c.Request.Context(), key); err != nil {
		server.RespondWithError(c, storage.FromStorage(err))
		return
	}
	server.RespondMessage(c, http.StatusOK, storage.MsgDeleted)
}

// UploadImage stores the multipart "file" part as a public JPEG, optionally
// under the "folder" form value, and returns its public URL.
func (h *StorageHandler) UploadImage(c *gin.Context) {
	limit := h.gateway.MaxUploadSize()
	if c.Request.ContentLength > limit+multipartOverhead {
		server.RespondWithError(c, apperrors.PayloadTooLarge(limit))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			server.RespondWithError(c, apperrors.PayloadTooLarge(limit))
			return
		}
		server.RespondWithError(c, apperrors.Validation("Multipart form parse error.").WithCause(err))
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		server.RespondWithError(c, apperrors.MissingField("file"))
		return
	}
	if fh.Size > limit {
		server.RespondWithError(c, apperrors.PayloadTooLarge(limit))
		return
	}
	f, err := fh.Open()
	if err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}
	defer f.Close()

	u, err := h.gateway.UploadImage(c.Request.Context(), f, util.CleanFolder(c.PostForm("folder")))
	if err != nil {
		server.RespondWithError(c, storage.FromStorage(err))
		return
	}
	h.log.WithContext(c.Request.Context()).Info("Image uploaded", logger.Fields(
		"filename", fh.Filename,
		"size", fh.Size,
		"url", u,
	))
	server.RespondCreated(c, gin.H{"url": u, "message": storage.MsgUploaded})
}
