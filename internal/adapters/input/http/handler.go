package http

import (
	"github.com/gofiber/fiber/v2"
)

// HTTPHandler struct - Primary/Driving adapter for plain HTTP endpoints
type HTTPHandler struct{}

// New func - Creates new HTTP handler
func New() *HTTPHandler {
	return &HTTPHandler{}
}

// HealthCheck func
func (hdl *HTTPHandler) HealthCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: "ok"})
}
