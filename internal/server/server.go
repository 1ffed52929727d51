package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ncecere/completions"
	"github.com/ncecere/completions/registry"
	"github.com/ncecere/completions/transport"
)

// Server exposes the completion client over HTTP.
type Server struct {
	App *fiber.App

	client   *completions.Client
	registry registry.Registry
	logger   zerolog.Logger
}

// errorBody mirrors the error envelope of the upstream API.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// New builds the fiber app. reg may be nil, in which case model names
// are forwarded unchanged.
func New(client *completions.Client, reg registry.Registry, logger zerolog.Logger) *Server {
	s := &Server{
		client:   client,
		registry: reg,
		logger:   logger,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	app.Use(s.requestID, s.accessLog)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Post("/v1/completions", s.createCompletion)

	s.App = app
	return s
}

func (s *Server) requestID(c *fiber.Ctx) error {
	rid := c.Get(transport.RequestIDHeader)
	if rid == "" {
		rid = uuid.NewString()
	}
	c.Locals("rid", rid)
	c.Set(transport.RequestIDHeader, rid)
	return c.Next()
}

// accessLog resolves handler errors itself so the logged status is the
// one sent to the caller.
func (s *Server) accessLog(c *fiber.Ctx) error {
	start := time.Now()
	if err := c.Next(); err != nil {
		if herr := s.handleError(c, err); herr != nil {
			return herr
		}
	}
	s.logger.Info().
		Str("rid", requestIDFrom(c)).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("dur", time.Since(start)).
		Msg("req")
	return nil
}

func requestIDFrom(c *fiber.Ctx) string {
	if v, ok := c.Locals("rid").(string); ok {
		return v
	}
	return ""
}

func (s *Server) createCompletion(c *fiber.Ctx) error {
	var req completions.CreateCompletionRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid_request_error", "invalid JSON body: "+err.Error())
	}
	req.Model = registry.ResolveOrSelf(s.registry, req.Model)

	ctx := transport.WithRequestID(c.UserContext(), requestIDFrom(c))
	res, err := s.client.CreateCompletion(ctx, &req)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// handleError maps client errors onto HTTP answers.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var (
		fe        *fiber.Error
		statusErr *transport.StatusError
		malformed *completions.MalformedResponseError
		transErr  *completions.TransportError
	)
	switch {
	case errors.As(err, &fe):
		return writeError(c, fe.Code, "invalid_request_error", fe.Message)
	case errors.Is(err, completions.ErrInvalidRequest):
		return writeError(c, fiber.StatusBadRequest, "invalid_request_error", err.Error())
	case errors.As(err, &statusErr) && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500:
		return writeError(c, statusErr.StatusCode, "upstream_error", err.Error())
	case errors.As(err, &malformed):
		s.logger.Error().Err(err).Str("rid", requestIDFrom(c)).Str("body", malformed.Body).Msg("malformed upstream response")
		return writeError(c, fiber.StatusBadGateway, "upstream_error", err.Error())
	case errors.As(err, &transErr):
		s.logger.Error().Err(err).Str("rid", requestIDFrom(c)).Msg("upstream unavailable")
		return writeError(c, fiber.StatusBadGateway, "upstream_error", err.Error())
	default:
		s.logger.Error().Err(err).Str("rid", requestIDFrom(c)).Msg("internal error")
		return writeError(c, fiber.StatusInternalServerError, "server_error", http.StatusText(http.StatusInternalServerError))
	}
}

func writeError(c *fiber.Ctx, status int, kind, msg string) error {
	return c.Status(status).JSON(errorBody{Error: errorDetail{Message: msg, Type: kind}})
}
