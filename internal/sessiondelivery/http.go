// Package sessiondelivery manages delivery layer of the till session.
package sessiondelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/beverage-pos/internal/domain"
	"github.com/go-petr/beverage-pos/internal/sessionservice"
	"github.com/go-petr/beverage-pos/pkg/errorspkg"
	"github.com/go-petr/beverage-pos/pkg/jsonresponse"
)

// Service provides session service layer interface needed by the delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package sessiondelivery
type Service interface {
	Apply(ctx context.Context, cmd sessionservice.Command) (sessionservice.View, error)
	View(ctx context.Context) sessionservice.View
}

// Handler facilitates session delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns session handler.
func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

type commandRequest struct {
	Command string `json:"command" binding:"required,command"`
	Text    string `json:"text"`
}

type data struct {
	Session sessionservice.View `json:"session"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

// Get handles http request to read the current session view.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	view := h.service.View(ctx)

	gctx.JSON(http.StatusOK, response{Data: data{Session: view}})
}

// Command handles http request to apply one session command.
func (h *Handler) Command(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req commandRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	cmd := sessionservice.Command{
		Kind: sessionservice.CommandKind(req.Command),
		Text: req.Text,
	}

	view, err := h.service.Apply(ctx, cmd)
	if err != nil {
		// Recoverable input mistakes are session status messages; an
		// error here means the store rejected the settlement commit.
		l.Error().Err(err).Send()

		if errors.Is(err, domain.ErrSettlementFailed) {
			gctx.JSON(http.StatusBadGateway, jsonresponse.Error(err))

			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{Session: view}})
}
