package api

import (
	"context"
	"errors"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/tf96ctl/internal/protocol"
)

// deviceError maps device-layer failures to HTTP statuses: bad input is
// 400, a chip that answered wrongly or not at all is 502, and a broken
// link is 503.
func deviceError(msg string, err error) error {
	switch protocol.CodeOf(err) {
	case protocol.ErrCodeRange:
		return huma.Error400BadRequest(msg, err)
	case protocol.ErrCodeProtocol:
		return huma.Error502BadGateway(msg, err)
	case protocol.ErrCodeStream:
		return huma.Error503ServiceUnavailable(msg, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return huma.Error503ServiceUnavailable(msg, err)
	}
	return huma.Error500InternalServerError(msg, err)
}

// parseAddr accepts decimal ("15") or prefixed hex ("0x0f").
func parseAddr(s string) (int, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, huma.Error400BadRequest("Invalid register address "+strconv.Quote(s), err)
	}
	return int(v), nil
}
