package client

import (
	"context"
)

type transport interface {
	call(ctx context.Context, method, route string, response any) error
	shutdown()
}
