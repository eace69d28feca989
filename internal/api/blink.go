package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/tf96ctl/internal/api/models"
	"github.com/smazurov/tf96ctl/internal/led"
)

func (s *Server) registerBlinkRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-blink",
		Method:      http.MethodGet,
		Path:        "/api/blink",
		Summary:     "Get Blink State",
		Tags:        []string{"blink"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(_ context.Context, _ *struct{}) (*models.BlinkResponse, error) {
		return blinkResponse(s.device.Blink()), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-blink",
		Method:      http.MethodPut,
		Path:        "/api/blink",
		Summary:     "Set Blink",
		Description: "Start or stop blinking and set its speed. Stopping leaves the chip in its current phase.",
		Tags:        []string{"blink"},
		Errors:      []int{400, 401},
		Security:    withAuth(),
	}, func(_ context.Context, input *models.BlinkRequest) (*models.BlinkResponse, error) {
		if err := s.device.SetBlink(input.Body.Enabled, input.Body.Control); err != nil {
			return nil, deviceError("Failed to set blink", err)
		}
		return blinkResponse(s.device.Blink()), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-phase-addresses",
		Method:      http.MethodPut,
		Path:        "/api/phases/{phase}",
		Summary:     "Set Phase Addresses",
		Description: "Write a pair of hex addresses to the registers of phase 0 (0x02, 0x03) or phase 1 (0x0a, 0x0b)",
		Tags:        []string{"blink"},
		Errors:      []int{400, 401, 503},
		Security:    withAuth(),
	}, func(_ context.Context, input *models.PhaseRequest) (*models.PhaseResponse, error) {
		if err := s.device.SetPhaseAddresses(input.Phase, input.Body.First, input.Body.Second); err != nil {
			return nil, deviceError(fmt.Sprintf("Failed to set phase %d addresses", input.Phase), err)
		}
		regs, _ := led.PhaseRegisters(input.Phase)
		return &models.PhaseResponse{Body: models.PhaseData{
			Phase:     input.Phase,
			Registers: [2]string{fmt.Sprintf("0x%02x", regs[0]), fmt.Sprintf("0x%02x", regs[1])},
		}}, nil
	})
}

func blinkResponse(b led.BlinkState) *models.BlinkResponse {
	return &models.BlinkResponse{Body: models.BlinkData{
		Enabled:      b.Enabled,
		Control:      b.Control,
		HalfPeriodMs: b.HalfPeriod.Milliseconds(),
		Phase:        b.Phase.String(),
	}}
}
