package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/tf96ctl/internal/api/models"
	"github.com/smazurov/tf96ctl/internal/led"
)

func (s *Server) registerRegisterRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "dump-registers",
		Method:      http.MethodGet,
		Path:        "/api/registers",
		Summary:     "Dump Registers",
		Description: "Read a contiguous register range, 0x00-0x0f by default",
		Tags:        []string{"registers"},
		Errors:      []int{400, 401, 502, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, input *models.RegisterDumpRequest) (*models.RegisterDumpResponse, error) {
		from, err := parseAddr(input.From)
		if err != nil {
			return nil, err
		}
		to, err := parseAddr(input.To)
		if err != nil {
			return nil, err
		}
		regs, err := s.device.DumpRegisters(ctx, from, to)
		if err != nil {
			return nil, deviceError("Failed to dump registers", err)
		}
		return &models.RegisterDumpResponse{Body: models.RegisterDumpData{Registers: regs}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "read-register",
		Method:      http.MethodGet,
		Path:        "/api/registers/{addr}",
		Summary:     "Read Register",
		Tags:        []string{"registers"},
		Errors:      []int{400, 401, 502, 503},
		Security:    withAuth(),
	}, func(_ context.Context, input *models.RegisterPath) (*models.RegisterResponse, error) {
		addr, err := parseAddr(input.Addr)
		if err != nil {
			return nil, err
		}
		v, err := s.device.ReadRegister(addr)
		if err != nil {
			return nil, deviceError(fmt.Sprintf("Failed to read register 0x%02x", addr), err)
		}
		return registerResponse(addr, v), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "write-register",
		Method:      http.MethodPut,
		Path:        "/api/registers/{addr}",
		Summary:     "Write Register",
		Description: "Write a raw register value. No acknowledgment is read from the chip.",
		Tags:        []string{"registers"},
		Errors:      []int{400, 401, 503},
		Security:    withAuth(),
	}, func(_ context.Context, input *models.RegisterWriteRequest) (*models.RegisterResponse, error) {
		addr, err := parseAddr(input.Addr)
		if err != nil {
			return nil, err
		}
		if err := s.device.WriteRegister(addr, input.Body.Value); err != nil {
			return nil, deviceError(fmt.Sprintf("Failed to write register 0x%02x", addr), err)
		}
		return registerResponse(addr, uint32(input.Body.Value)), nil
	})
}

func registerResponse(addr int, v uint32) *models.RegisterResponse {
	return &models.RegisterResponse{Body: led.RegisterValue{
		Address: fmt.Sprintf("0x%02x", addr),
		Value:   v,
		Hex:     fmt.Sprintf("0x%02x", v),
	}}
}
