// Package server exposes the assistant over HTTP with fiber.
//
// Routes:
//
//	GET  /                        minimal chat page
//	POST /api/chat                {"message": "..."} -> {"response": "...", "download": bool}
//	GET  /api/timesheet/download  current timesheet as xlsx
//	GET  /health                  "ok"
package server

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"timekeeper/internal/logging"
	"timekeeper/internal/mail"
)

// Assistant is the conversational backend the server drives.
// *core.Assistant satisfies it.
type Assistant interface {
	Handle(ctx context.Context, message string) string
	WantsDownload(message string) bool
	TimesheetFile(ctx context.Context) (string, error)
}

// Options tune the HTTP layer.
type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// RequestTimeout bounds one chat turn, including the extraction call.
	RequestTimeout time.Duration
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// ChatResponse is the reply of POST /api/chat.
type ChatResponse struct {
	Response string `json:"response"`
	Download bool   `json:"download"`
}

// Server wraps a fiber app around an Assistant. Chat turns are handled one
// at a time.
type Server struct {
	app       *fiber.App
	assistant Assistant
	logger    *zap.Logger
	validate  *validator.Validate
	opts      Options

	mu sync.Mutex // serializes Handle and TimesheetFile
}

// New builds the server and registers routes. A nil logger disables
// request logging.
func New(a Assistant, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		assistant: a,
		logger:    logger,
		validate:  validator.New(),
		opts:      opts,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "timekeeper",
		DisableStartupMessage: true,
		ReadTimeout:           opts.ReadTimeout,
		WriteTimeout:          opts.WriteTimeout,
		ErrorHandler:          s.errorHandler,
	})
	s.app.Use(recover.New())
	s.app.Use(s.requestContext)

	s.app.Get("/", s.index)
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	api := s.app.Group("/api")
	api.Post("/chat", s.chat)
	api.Get("/timesheet/download", s.download)

	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	logging.Server("listening on %s", addr)
	s.logger.Info("HTTP server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Server("shutting down")
	return s.app.ShutdownWithContext(ctx)
}

// requestContext tags each request with an ID, bounds it with the request
// timeout and logs it on completion.
func (s *Server) requestContext(c *fiber.Ctx) error {
	id := c.Get(fiber.HeaderXRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(fiber.HeaderXRequestID, id)
	c.Locals("reqid", id)

	ctx := context.Background()
	if s.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RequestTimeout)
		defer cancel()
	}
	c.SetUserContext(ctx)

	start := time.Now()
	err := c.Next()
	if err != nil {
		// Resolve the status before logging; the error handler runs after us.
		if herr := s.errorHandler(c, err); herr != nil {
			return herr
		}
		err = nil
	}
	s.logger.Info("request",
		zap.String("id", id),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("dur", time.Since(start)),
	)
	return err
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		logging.ServerError("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
		"code":    code,
	})
}

func (s *Server) index(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.SendString(indexHTML)
}

func (s *Server) chat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	req.Message = strings.TrimSpace(req.Message)
	if err := s.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "message is required")
	}

	reqLog := logging.WithRequestID(logging.CategoryServer, requestID(c))
	reqLog.Info("chat turn: %d chars", len(req.Message))

	s.mu.Lock()
	reply := s.assistant.Handle(c.UserContext(), req.Message)
	s.mu.Unlock()

	return c.JSON(ChatResponse{
		Response: reply,
		Download: s.assistant.WantsDownload(req.Message),
	})
}

func (s *Server) download(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.assistant.TimesheetFile(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fiber.NewError(fiber.StatusNotFound, "timesheet not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	c.Attachment(mail.AttachmentName)
	c.Set(fiber.HeaderContentType, mail.AttachmentType)
	return c.Send(data)
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("reqid").(string); ok {
		return id
	}
	return ""
}
