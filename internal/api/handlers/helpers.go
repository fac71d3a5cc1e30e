package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"traffic-forecast-service/internal/api/dto"
	"traffic-forecast-service/internal/domain"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func writeError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, dto.ErrorResponse{Error: msg, Code: code})
}

// decodeStrict reads exactly one JSON object with no unknown fields.
func decodeStrict(c *gin.Context, v any) error {
	dec := json.NewDecoder(c.Request.Body)
	defer c.Request.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON object")
	}
	return nil
}

// writeWorkflowError maps workflow errors to a status and code. The session
// state travels with the error so the page can re-render.
func writeWorkflowError(c *gin.Context, log *zap.Logger, state *domain.SessionState, err error) {
	var (
		noMatch *domain.NoMatchError
		noRoute *domain.RouteUnavailableError
		invalid domain.ValidationError
	)

	resp := dto.ErrorResponse{State: state}
	status := http.StatusInternalServerError

	switch {
	case errors.As(err, &noMatch):
		status, resp.Code = http.StatusUnprocessableEntity, "no_match"
		resp.Error = fmt.Sprintf("no place found for %s %q, please try again", noMatch.Role, noMatch.Query)
	case errors.As(err, &noRoute):
		status, resp.Code = http.StatusUnprocessableEntity, "route_unavailable"
		resp.Error = fmt.Sprintf("no route from %q to %q", noRoute.From, noRoute.To)
	case errors.As(err, &invalid):
		status, resp.Code = http.StatusBadRequest, "invalid_input"
		resp.Error = invalid.Error()
	case errors.Is(err, domain.ErrInvalidSelection):
		status, resp.Code = http.StatusBadRequest, "invalid_selection"
		resp.Error = err.Error()
	case errors.Is(err, domain.ErrInvalidTransition):
		status, resp.Code = http.StatusConflict, "invalid_transition"
		resp.Error = err.Error()
	default:
		resp.Code, resp.Error = "internal", "internal server error"
	}

	if status >= http.StatusInternalServerError {
		log.Error("workflow failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	} else {
		log.Info("workflow rejected", zap.String("code", resp.Code), zap.Error(err))
	}

	c.JSON(status, resp)
}
