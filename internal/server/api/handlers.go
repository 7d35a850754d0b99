package api

import (
	"errors"
	"fmt"
	"mime"
	"net/http"

	"fileden/internal/server/core"
	"fileden/internal/server/service"
	"fileden/internal/server/storage"

	"github.com/labstack/echo/v4"
)

// Handler contains the HTTP handlers for the fileden API.
type Handler struct {
	svc   *service.FileService
	store storage.Store
}

// NewHandler creates a new handler with the given dependencies.
func NewHandler(svc *service.FileService, store storage.Store) *Handler {
	return &Handler{svc: svc, store: store}
}

// HandleAuth handles POST /auth.
// Accepts form fields "user_id" and "password"; returns a fresh token.
func (h *Handler) HandleAuth(c echo.Context) error {
	userID := c.FormValue("user_id")
	password := c.FormValue("password")

	token, err := h.svc.Authenticate(userID, password)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

// HandleListFiles handles GET /me.
// Returns all files in the user space, in upload order.
func (h *Handler) HandleListFiles(c echo.Context) error {
	user := currentUser(c)
	return c.JSON(http.StatusOK, echo.Map{
		"user":  user,
		"files": h.svc.ListFiles(user),
	})
}

// HandleUpload handles POST /me.
// Accepts a multipart form with a "file" field; the file is overwritten
// if one with the same name already exists.
func (h *Handler) HandleUpload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "file is required (use form field 'file')",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "failed to read uploaded file",
		})
	}
	defer src.Close()

	mediaType := fileHeader.Header.Get(echo.HeaderContentType)
	if mediaType == "" {
		mediaType = echo.MIMEOctetStream
	}

	f, err := h.svc.Upload(currentUser(c), fileHeader.Filename, mediaType, src)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"name": f.Name, "url": f.URL})
}

// HandleDownload handles GET /f/:id.
// Streams the file bytes with the stored media type; 429 when the traffic
// quota was already exhausted before this call.
func (h *Handler) HandleDownload(c echo.Context) error {
	f, rc, err := h.svc.Download(currentUser(c), c.Param("id"))
	if err != nil {
		return mapServiceError(c, err)
	}
	defer rc.Close()

	setAttachment(c, f.Name)
	return c.Stream(http.StatusOK, f.MediaType, rc)
}

// HandleCreateShare handles GET /f/:id/share.
// Mints a one-time shareable url for the file.
func (h *Handler) HandleCreateShare(c echo.Context) error {
	shareURL, err := h.svc.CreateShare(currentUser(c), c.Param("id"))
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"share_url": shareURL})
}

// HandleShareDownload handles GET /s/:id.
// Unauthenticated; the link is consumed by the first successful call, and
// unknown ids and consumed links are indistinguishable.
func (h *Handler) HandleShareDownload(c echo.Context) error {
	f, rc, err := h.svc.RedeemShare(c.Param("id"))
	if err != nil {
		return mapServiceError(c, err)
	}
	defer rc.Close()

	setAttachment(c, f.Name)
	return c.Stream(http.StatusOK, f.MediaType, rc)
}

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(c echo.Context) error {
	status := "healthy"
	storageStatus := "ok"

	if err := h.store.EnsureDir(); err != nil {
		status = "degraded"
		storageStatus = fmt.Sprintf("error: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  status,
		"storage": storageStatus,
	})
}

// setAttachment sets a Content-Disposition header carrying the stored
// filename without letting the handler pick the response media type.
func setAttachment(c echo.Context, filename string) {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	c.Response().Header().Set(echo.HeaderContentDisposition, disposition)
}

// mapServiceError translates service-layer errors into HTTP responses.
// Token errors never reach here; BearerAuth handles those as 401.
func mapServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "incorrect user_id or password"})
	case errors.Is(err, core.ErrFileNotFound), errors.Is(err, core.ErrShareNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, core.ErrRateLimited):
		return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}
