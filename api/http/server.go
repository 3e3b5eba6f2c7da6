package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"

	"github.com/artem13815/resumeparser/api/http/presenter"
	"github.com/artem13815/resumeparser/pkg/logger"
)

// Options configures the Fiber application.
type Options struct {
	// MaxUploadBytes is the per-file limit; the request body limit leaves
	// room for multipart framing on top of it.
	MaxUploadBytes int64
	FrontendOrigin string
}

// NewApp builds the Fiber app with middleware and a JSON error handler.
func NewApp(opts Options, log logrus.FieldLogger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "resume-parser",
		BodyLimit:             int(opts.MaxUploadBytes) + 1<<20,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return presenter.Error(c, code, err.Error())
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.Fiber(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: opts.FrontendOrigin,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	return app
}
