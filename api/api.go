package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/devcamper-api/utils/response"
	"go.uber.org/zap"
)

// minBodyLimit keeps room for the multipart envelope around an upload
const minBodyLimit = 4 * 1024 * 1024

type APIServer struct {
	app           *fiber.App
	listenAddress string
	logger        *zap.Logger
}

// NewAPIServer creates the Fiber app. Every error a handler returns goes
// through response.ErrorHandler.
func NewAPIServer(listenAddress string, maxUpload int64, logger *zap.Logger) *APIServer {
	bodyLimit := int(maxUpload) * 2
	if bodyLimit < minBodyLimit {
		bodyLimit = minBodyLimit
	}

	return &APIServer{
		app: fiber.New(fiber.Config{
			AppName:      "DevCamper API",
			ErrorHandler: response.ErrorHandler(logger),
			BodyLimit:    bodyLimit,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		}),
		listenAddress: listenAddress,
		logger:        logger,
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

// Run listens until the listener fails or Shutdown is called
func (s *APIServer) Run() error {
	s.logger.Info("starting API server", zap.String("address", s.listenAddress))
	return s.app.Listen(s.listenAddress)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *APIServer) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
