package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/tf96ctl/internal/api/models"
	"github.com/smazurov/tf96ctl/internal/led"
)

func (s *Server) registerPortRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-ports",
		Method:      http.MethodGet,
		Path:        "/api/ports",
		Summary:     "List Ports",
		Description: "Read both enable registers and return the state of every port",
		Tags:        []string{"ports"},
		Errors:      []int{401, 502, 503},
		Security:    withAuth(),
	}, func(_ context.Context, _ *struct{}) (*models.PortsResponse, error) {
		states, err := s.device.PortStates()
		if err != nil {
			return nil, deviceError("Failed to read port states", err)
		}
		return &models.PortsResponse{Body: models.PortsData{Ports: states, Enabled: led.CountEnabled(states)}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-port",
		Method:      http.MethodGet,
		Path:        "/api/ports/{port}",
		Summary:     "Get Port",
		Description: "Read one port's enable state from the chip",
		Tags:        []string{"ports"},
		Errors:      []int{400, 401, 502, 503},
		Security:    withAuth(),
	}, func(_ context.Context, input *models.PortPath) (*models.PortResponse, error) {
		enabled, err := s.device.PortEnabled(input.Port)
		if err != nil {
			return nil, deviceError(fmt.Sprintf("Failed to read port %d", input.Port), err)
		}
		return portResponse(input.Port, enabled)
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-port",
		Method:      http.MethodPut,
		Path:        "/api/ports/{port}",
		Summary:     "Set Port",
		Description: "Enable or disable one port. Other ports sharing the register are left unchanged.",
		Tags:        []string{"ports"},
		Errors:      []int{400, 401, 502, 503},
		Security:    withAuth(),
	}, func(_ context.Context, input *models.PortRequest) (*models.PortResponse, error) {
		if err := s.device.SetPortEnabled(input.Port, input.Body.Enabled); err != nil {
			return nil, deviceError(fmt.Sprintf("Failed to set port %d", input.Port), err)
		}
		return portResponse(input.Port, input.Body.Enabled)
	})
}

func portResponse(port int, enabled bool) (*models.PortResponse, error) {
	reg, bit, err := led.ResolvePort(port)
	if err != nil {
		return nil, deviceError("Invalid port", err)
	}
	return &models.PortResponse{Body: led.PortState{
		Port:     port,
		Register: fmt.Sprintf("0x%02x", reg),
		Bit:      int(bit),
		Enabled:  enabled,
	}}, nil
}
