package offline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const defaultOriginTimeout = 10 * time.Second

// OriginNetwork fetches shell assets from the PWA origin with the Fiber client.
type OriginNetwork struct {
	origin  string
	timeout time.Duration
}

func NewOriginNetwork(origin string, timeout time.Duration) *OriginNetwork {
	if timeout <= 0 {
		timeout = defaultOriginTimeout
	}
	return &OriginNetwork{origin: strings.TrimRight(origin, "/"), timeout: timeout}
}

func (network *OriginNetwork) Fetch(ctx context.Context, request Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	method := strings.ToUpper(request.Method)
	if method == "" {
		method = fiber.MethodGet
	}

	agent := fiber.AcquireAgent()
	agent.Request().Header.SetMethod(method)
	agent.Request().SetRequestURI(network.origin + request.Path)
	agent.Timeout(network.timeout)
	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return Response{}, fmt.Errorf("prepare %s: %w", request.Path, err)
	}

	response := fiber.AcquireResponse()
	defer fiber.ReleaseResponse(response)
	agent.SetResponse(response)

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return Response{}, fmt.Errorf("fetch %s: %w", request.Path, errors.Join(errs...))
	}

	return Response{
		Status:      status,
		ContentType: string(response.Header.ContentType()),
		Body:        append([]byte(nil), body...),
	}, nil
}
