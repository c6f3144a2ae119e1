package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/akuzmin/shortlinks/internal/middleware"
	"github.com/akuzmin/shortlinks/internal/models"
	"github.com/akuzmin/shortlinks/internal/repository"
	"github.com/akuzmin/shortlinks/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LinkHandler struct {
	service service.LinkService
	baseURL string
	logger  *zap.Logger
}

func NewLinkHandler(service service.LinkService, baseURL string, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{
		service: service,
		baseURL: baseURL,
		logger:  logger,
	}
}

type CreateLinkRequest struct {
	Title  string            `json:"title"`
	URL    string            `json:"url"`
	Status models.LinkStatus `json:"status,omitempty"`
}

type UpdateLinkRequest struct {
	Title  *string            `json:"title,omitempty"`
	Status *models.LinkStatus `json:"status,omitempty"`
}

type LinkResponse struct {
	ID        uuid.UUID         `json:"id"`
	Title     string            `json:"title"`
	TargetURL string            `json:"target_url"`
	ShortCode string            `json:"short_code"`
	ShortURL  string            `json:"short_url"`
	Status    models.LinkStatus `json:"status"`
	Clicks    int64             `json:"clicks"`
	CreatedAt time.Time         `json:"created_at"`
}

type CreateLinkResponse struct {
	Link  LinkResponse   `json:"link"`
	Links []LinkResponse `json:"links"`
}

type LinkListResponse struct {
	Links []LinkResponse `json:"links"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *LinkHandler) toResponse(link *models.Link) LinkResponse {
	return LinkResponse{
		ID:        link.ID,
		Title:     link.Title,
		TargetURL: link.TargetURL,
		ShortCode: link.ShortCode,
		ShortURL:  h.baseURL + "/" + link.ShortCode,
		Status:    link.Status,
		Clicks:    link.Clicks,
		CreatedAt: link.CreatedAt,
	}
}

func (h *LinkHandler) toResponseList(links []models.Link) []LinkResponse {
	out := make([]LinkResponse, 0, len(links))
	for i := range links {
		out = append(out, h.toResponse(&links[i]))
	}
	return out
}

// CreateLink godoc
// @Summary Create a short link
// @Description Create a new shortened URL owned by the authenticated user
// @Tags links
// @Accept json
// @Produce json
// @Param request body CreateLinkRequest true "Link creation request"
// @Success 201 {object} CreateLinkResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/links [post]
func (h *LinkHandler) CreateLink(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", zap.Error(err))
		respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	link, links, err := h.service.CreateLink(c.Request.Context(), &models.CreateLinkInput{
		UserID:    userID,
		Title:     req.Title,
		TargetURL: req.URL,
		Status:    req.Status,
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateLinkResponse{
		Link:  h.toResponse(link),
		Links: h.toResponseList(links),
	})
}

// ListLinks godoc
// @Summary List the user's links
// @Description List all links of the authenticated user in insertion order
// @Tags links
// @Produce json
// @Success 200 {object} LinkListResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/links [get]
func (h *LinkHandler) ListLinks(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	links, err := h.service.ListLinks(c.Request.Context(), userID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, LinkListResponse{Links: h.toResponseList(links)})
}

// UpdateLink godoc
// @Summary Update a link
// @Description Apply a partial update (title and/or status) to the identified link
// @Tags links
// @Accept json
// @Produce json
// @Param id path string true "Link ID"
// @Param request body UpdateLinkRequest true "Fields to update"
// @Success 200 {object} LinkListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/links/{id} [patch]
func (h *LinkHandler) UpdateLink(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	linkID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_link_id", "Link id must be a valid UUID")
		return
	}

	var req UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	// Нераспознанные поля тела запроса сюда не попадают - патч строго типизирован
	links, err := h.service.UpdateLink(c.Request.Context(), userID, linkID, &models.LinkPatch{
		Title:  req.Title,
		Status: req.Status,
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, LinkListResponse{Links: h.toResponseList(links)})
}

// DeleteLink godoc
// @Summary Delete a link
// @Description Remove a link from the authenticated user's collection
// @Tags links
// @Produce json
// @Param id path string true "Link ID"
// @Success 200 {object} LinkListResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/links/{id} [delete]
func (h *LinkHandler) DeleteLink(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	linkID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_link_id", "Link id must be a valid UUID")
		return
	}

	links, err := h.service.RemoveLink(c.Request.Context(), userID, linkID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, LinkListResponse{Links: h.toResponseList(links)})
}

// Redirect godoc
// @Summary Redirect to the target URL
// @Description Resolve a short code to its target URL and count the click
// @Tags links
// @Param code path string true "Short code"
// @Success 307 {object} nil
// @Failure 404 {object} ErrorResponse
// @Router /{code} [get]
func (h *LinkHandler) Redirect(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		respondError(c, http.StatusBadRequest, "missing_code", "Short code is required")
		return
	}

	target, err := h.service.Resolve(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			// Неактивный и несуществующий код дают один и тот же ответ
			respondError(c, http.StatusNotFound, "not_found", "Link not found or inactive")
			return
		}
		h.logger.Error("Failed to resolve short code", zap.String("code", code), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to resolve link")
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, target)
}

// respondServiceError транслирует ошибки ядра в HTTP-статусы
func (h *LinkHandler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrURLRequired),
		errors.Is(err, service.ErrUserIDRequired),
		errors.Is(err, service.ErrInvalidURL),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrEmptyPatch):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, repository.ErrUserNotFound):
		respondError(c, http.StatusNotFound, "user_not_found", "User not found")
	case errors.Is(err, repository.ErrLinkNotFound):
		respondError(c, http.StatusNotFound, "link_not_found", "Link not found")
	case errors.Is(err, service.ErrCodeExhausted), errors.Is(err, repository.ErrCodeExists):
		respondError(c, http.StatusConflict, "code_conflict", service.ErrCodeExhausted.Error())
	default:
		h.logger.Error("Link operation failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: code, Message: message})
}
