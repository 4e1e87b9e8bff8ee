package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	airdrop "airdrop-service"
	"airdrop-service/internal/domain"
	"airdrop-service/internal/present/rest/presenter"
	"airdrop-service/internal/service"
	"airdrop-service/internal/usecase"
)

type Handler struct {
	register      *usecase.RegisterUsecase
	claim         *usecase.ClaimUsecase
	status        *usecase.StatusUsecase
	signal        *service.SignalService
	signedMessage string
}

func NewHandler(
	register *usecase.RegisterUsecase,
	claim *usecase.ClaimUsecase,
	status *usecase.StatusUsecase,
	signal *service.SignalService,
	signedMessage string,
) *Handler {
	return &Handler{
		register:      register,
		claim:         claim,
		status:        status,
		signal:        signal,
		signedMessage: signedMessage,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/airdrop/check/:identity", h.handleCheck)
	e.POST("/api/v1/airdrop/register", h.handleRegister)
	e.POST("/api/v1/airdrop/claim", h.handleClaim)
	e.GET("/realtime", h.handleRealtime)
}

func (h *Handler) handleCheck(c echo.Context) error {
	ctx := c.Request().Context()

	identity := c.Param("identity")
	if !airdrop.IsIdentity(identity) {
		return presenter.BadRequestMessage(c, "invalid identity")
	}

	status, err := h.status.Status(ctx, identity)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, status)
}

func (h *Handler) handleRegister(c echo.Context) error {
	ctx := c.Request().Context()

	var req airdrop.RegistrationRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if !airdrop.IsIdentity(req.Identity) {
		return presenter.BadRequestMessage(c, "invalid identity")
	}

	err := h.register.Register(ctx, usecase.RegisterInput{
		Identity:      req.Identity,
		Proofs:        req.ActivityProofs,
		Country:       req.Country,
		RequesterIP:   c.RealIP(),
		TermsAccepted: req.TermsAccepted,
	})
	if err != nil {
		return presenter.DomainError(c, err)
	}
	return presenter.Created(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleClaim(c echo.Context) error {
	ctx := c.Request().Context()

	var req airdrop.ClaimRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if !airdrop.IsIdentity(req.Identity) {
		return presenter.BadRequestMessage(c, "invalid identity")
	}
	if !airdrop.IsEvmAddress(req.UserEvmAddress) {
		return presenter.DomainError(c, domain.Functional(domain.CodeInvalidEvmAddress, "invalid evm address"))
	}
	if !airdrop.VerifyAddressOwnership(req.UserEvmAddress, req.UserEvmAddressSignature, h.signedMessage) {
		return presenter.Forbidden(c, "address ownership verification failed")
	}

	result, err := h.claim.Claim(ctx, usecase.ClaimInput{
		Identity:      req.Identity,
		TermsAccepted: req.TermsAccepted,
		Destination:   req.UserEvmAddress,
	})
	if err != nil {
		return presenter.DomainError(c, err)
	}
	return presenter.Created(c, result)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type realtimeRequest struct {
	Type       string   `json:"type"`
	Identities []string `json:"identities"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	// Cancellation is the only shutdown signal: closing the channels could
	// panic a Realtime send still in flight.
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	input := make(chan []string)
	output := make(chan airdrop.Event)

	go h.signal.Realtime(ctx, input, output)

	quit := make(chan struct{}, 1)

	go func() {
		for {
			var req realtimeRequest
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				quit <- struct{}{}
				break
			}

			switch req.Type {
			case "listen":
				select {
				case input <- req.Identities:
				case <-ctx.Done():
					return
				}
				slog.DebugContext(
					ctx, fmt.Sprintf("Socket subscribe: %s", req.Identities),
					slog.String("module", "socket"),
				)
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
