package handlers

import (
	"context"
	"net/http"
	"time"
	"traffic-forecast-service/internal/api/dto"
	"traffic-forecast-service/internal/domain"
	"traffic-forecast-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const SessionCookie = "forecast_session"

// Workflow is the controller surface the handlers drive.
type Workflow interface {
	State(ctx context.Context, id string) (*domain.SessionState, error)
	Search(ctx context.Context, id string, in services.SearchInput) (*domain.SessionState, error)
	Select(ctx context.Context, id string, sel services.Selection) (*domain.SessionState, error)
	Reset(ctx context.Context, id string) (*domain.SessionState, error)
}

type WorkflowHandler struct {
	Workflow   Workflow
	SessionTTL time.Duration
	Log        *zap.Logger
}

// sessionID returns the caller's session id, issuing a new cookie when the
// request has none or it is not a UUID.
func (h *WorkflowHandler) sessionID(c *gin.Context) string {
	if raw, err := c.Cookie(SessionCookie); err == nil {
		if id, err := uuid.Parse(raw); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, id, int(h.SessionTTL.Seconds()), "/", "", false, true)
	return id
}

func (h *WorkflowHandler) reply(c *gin.Context, state *domain.SessionState, err error) {
	if err != nil {
		writeWorkflowError(c, h.Log, state, err)
		return
	}
	c.JSON(http.StatusOK, dto.StateResponse{State: state})
}

// State handles GET /api/v1/session.
func (h *WorkflowHandler) State(c *gin.Context) {
	id := h.sessionID(c)
	state, err := h.Workflow.State(c.Request.Context(), id)
	h.reply(c, state, err)
}

// Search handles POST /api/v1/search.
func (h *WorkflowHandler) Search(c *gin.Context) {
	id := h.sessionID(c)

	var req dto.SearchRequest
	if err := decodeStrict(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	state, err := h.Workflow.Search(c.Request.Context(), id, services.SearchInput{
		Start: req.Start,
		End:   req.End,
		Modes: req.Modes,
	})
	h.reply(c, state, err)
}

// Select handles POST /api/v1/select.
func (h *WorkflowHandler) Select(c *gin.Context) {
	id := h.sessionID(c)

	var req dto.SelectRequest
	if err := decodeStrict(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	state, err := h.Workflow.Select(c.Request.Context(), id, services.Selection{
		Start: req.StartIndex,
		End:   req.EndIndex,
	})
	h.reply(c, state, err)
}

// Reset handles POST /api/v1/reset.
func (h *WorkflowHandler) Reset(c *gin.Context) {
	id := h.sessionID(c)
	state, err := h.Workflow.Reset(c.Request.Context(), id)
	h.reply(c, state, err)
}
