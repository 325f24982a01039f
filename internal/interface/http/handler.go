package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/waterbar/waterbar/internal/domain/chat"
	"github.com/waterbar/waterbar/internal/domain/plan"
	"github.com/waterbar/waterbar/internal/domain/shop"
	"github.com/waterbar/waterbar/internal/domain/tracker"
	"github.com/waterbar/waterbar/internal/infra/llm/openai"
	apperrors "github.com/waterbar/waterbar/pkg/errors"
)

// keySuggestion is surfaced verbatim on upstream generation failures so users
// can self-diagnose credential and model-access problems.
const keySuggestion = "Please verify your OpenAI API key has access to the Responses API with the gpt-4.1 model."

// Handler wires the HTTP transport to domain services.
type Handler struct {
	planSvc    plan.Service
	trackerSvc tracker.Service
	chatSvc    chat.Service
	shopSvc    shop.Service
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(planSvc plan.Service, trackerSvc tracker.Service, chatSvc chat.Service, shopSvc shop.Service, logger *slog.Logger) *Handler {
	return &Handler{
		planSvc:    planSvc,
		trackerSvc: trackerSvc,
		chatSvc:    chatSvc,
		shopSvc:    shopSvc,
		logger:     logger.With("component", "http.handler"),
	}
}

// GeneratePlan produces a personalized hydration plan. The endpoint predates
// the /api/v1 surface and keeps its original response bodies so existing
// frontends keep working; errors are written directly instead of going
// through the shared error envelope.
func (h *Handler) GeneratePlan(c *gin.Context) {
	var req plan.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameters"})
		return
	}

	resp, err := h.planSvc.GeneratePlan(c.Request.Context(), req)
	if err != nil {
		h.writePlanError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) writePlanError(c *gin.Context, err error) {
	switch {
	case apperrors.IsCode(err, "invalid_request"):
		h.logger.Warn("plan request rejected", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameters"})

	case apperrors.IsCode(err, "response_invalid"):
		var invalid *plan.ResponseInvalidError
		responseID := ""
		if errors.As(err, &invalid) {
			responseID = invalid.ResponseID
		}
		h.logger.Error("plan response invalid", "responseId", responseID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Error processing hydration plan",
			"details":    "The AI response could not be properly processed.",
			"responseId": responseID,
		})

	default:
		details := errMessage(err)
		errorType := "upstream_error"
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			details = apiErr.Message
			if apiErr.Type != "" {
				errorType = apiErr.Type
			}
		} else if appErr := asAppError(err); appErr != nil && appErr.Err != nil {
			details = appErr.Err.Error()
		}
		h.logger.Error("plan generation failed", "errorType", errorType, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Error generating hydration plan",
			"details":    details,
			"errorType":  errorType,
			"suggestion": keySuggestion,
		})
	}
}

func asAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// ListDrinks returns the drink catalog for the tracking panel.
func (h *Handler) ListDrinks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"drinks": h.trackerSvc.Catalog()})
}

type logDrinkRequest struct {
	UserID    string `json:"userId"`
	DrinkType string `json:"drinkType"`
}

// LogDrink records a consumed drink and returns the updated daily status.
func (h *Handler) LogDrink(c *gin.Context) {
	var req logDrinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	status, err := h.trackerSvc.LogDrink(c.Request.Context(), req.UserID, req.DrinkType)
	if err != nil {
		h.abortTrackerError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// HydrationStatus returns today's progress toward the hydration goal.
func (h *Handler) HydrationStatus(c *gin.Context) {
	status, err := h.trackerSvc.Status(c.Request.Context(), c.Query("userId"))
	if err != nil {
		h.abortTrackerError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// HydrationHistory returns recent daily totals.
func (h *Handler) HydrationHistory(c *gin.Context) {
	limit := 7
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "days must be a positive integer", err))
			return
		}
		limit = parsed
	}

	history, err := h.trackerSvc.History(c.Request.Context(), c.Query("userId"), limit)
	if err != nil {
		h.abortTrackerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

type refillRequest struct {
	UserID string `json:"userId"`
}

// LogRefill records a station visit and returns the updated carbon impact.
func (h *Handler) LogRefill(c *gin.Context) {
	var req refillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	impact, err := h.trackerSvc.LogRefill(c.Request.Context(), req.UserID)
	if err != nil {
		h.abortTrackerError(c, err)
		return
	}
	c.JSON(http.StatusOK, impact)
}

// Impact returns bottle savings and equivalent tree count.
func (h *Handler) Impact(c *gin.Context) {
	impact, err := h.trackerSvc.Impact(c.Request.Context(), c.Query("userId"))
	if err != nil {
		h.abortTrackerError(c, err)
		return
	}
	c.JSON(http.StatusOK, impact)
}

func (h *Handler) abortTrackerError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "tracker_failed"
	if apperrors.IsCode(err, "invalid_input") {
		status = http.StatusBadRequest
		code = "invalid_request"
	}
	if apperrors.IsCode(err, "storage_error") {
		code = "storage_error"
	}
	abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
}

// Chat relays a message to the hydration coach and returns the reply.
func (h *Handler) Chat(c *gin.Context) {
	var req chat.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.chatSvc.Send(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "chat_failed"
		if apperrors.IsCode(err, "invalid_input") {
			status = http.StatusBadRequest
			code = "invalid_request"
		}
		if apperrors.IsCode(err, "llm_error") {
			status = http.StatusBadGateway
			code = "llm_error"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ChatHistory returns the stored transcript for a session.
func (h *Handler) ChatHistory(c *gin.Context) {
	entries, err := h.chatSvc.History(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "chat_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": entries})
}

// ShopHandoff accepts a generated plan and derives product recommendations.
func (h *Handler) ShopHandoff(c *gin.Context) {
	var req shop.Handoff
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	if err := h.shopSvc.Receive(c.Request.Context(), req); err != nil {
		status := http.StatusInternalServerError
		code := "shop_failed"
		if apperrors.IsCode(err, "invalid_input") {
			status = http.StatusBadRequest
			code = "invalid_request"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "received"})
}

// ShopRecommendations returns the latest stored recommendations for a user.
func (h *Handler) ShopRecommendations(c *gin.Context) {
	recs, found, err := h.shopSvc.Recommendations(c.Request.Context(), c.Query("userId"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "shop_failed", errMessage(err), err))
		return
	}
	if !found {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "no recommendations stored", nil))
		return
	}
	c.JSON(http.StatusOK, recs)
}
