package exportfiber

import (
	"context"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-gridexport/adapters/exportapi"
)

var _ exportapi.Response = fiberResponse{}

type fiberRequest struct {
	ctx *fiber.Ctx
}

func (req fiberRequest) Context() context.Context {
	if req.ctx == nil {
		return context.Background()
	}
	return req.ctx.UserContext()
}

func (req fiberRequest) Method() string {
	return req.ctx.Method()
}

func (req fiberRequest) Path() string {
	return req.ctx.Path()
}

func (req fiberRequest) Header(name string) string {
	return req.ctx.Get(name)
}

func (req fiberRequest) Query(name string) string {
	return req.ctx.Query(name)
}

type fiberResponse struct {
	ctx *fiber.Ctx
}

func (res fiberResponse) SetHeader(name, value string) {
	res.ctx.Set(name, value)
}

func (res fiberResponse) DelHeader(name string) {
	res.ctx.Response().Header.Del(name)
}

func (res fiberResponse) WriteHeader(status int) {
	res.ctx.Status(status)
}

func (res fiberResponse) Write(data []byte) (int, error) {
	return res.ctx.Write(data)
}

func (res fiberResponse) WriteJSON(status int, payload any) error {
	return res.ctx.Status(status).JSON(payload)
}

// Writer exposes the fasthttp body writer. fasthttp buffers the body until
// the handler returns.
func (res fiberResponse) Writer() (io.Writer, bool) {
	return res.ctx.Response().BodyWriter(), true
}
