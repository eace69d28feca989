package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/tf96ctl/internal/api/models"
)

func (s *Server) registerIntensityRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-channels",
		Method:      http.MethodGet,
		Path:        "/api/channels",
		Summary:     "List Channel Levels",
		Description: "Intensities last commanded in this session. The chip has no read-back; -1 means never set.",
		Tags:        []string{"intensity"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(_ context.Context, _ *struct{}) (*models.ChannelsResponse, error) {
		limits := s.device.Limits()
		return &models.ChannelsResponse{Body: models.ChannelsData{
			Levels: s.device.Levels(),
			Limits: models.LimitsData{
				ChannelMin: limits.ChannelMin,
				ChannelMax: limits.ChannelMax,
				MasterMin:  limits.MasterMin,
				MasterMax:  limits.MasterMax,
			},
		}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-channel-intensity",
		Method:      http.MethodPut,
		Path:        "/api/channels/{channel}",
		Summary:     "Set Channel Intensity",
		Tags:        []string{"intensity"},
		Errors:      []int{400, 401, 503},
		Security:    withAuth(),
	}, func(_ context.Context, input *models.ChannelRequest) (*models.ChannelResponse, error) {
		if err := s.device.SetChannelIntensity(input.Channel, input.Body.Intensity); err != nil {
			return nil, deviceError(fmt.Sprintf("Failed to set channel %d", input.Channel), err)
		}
		return &models.ChannelResponse{Body: models.ChannelData{
			Channel:   input.Channel,
			Intensity: input.Body.Intensity,
		}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-master-intensity",
		Method:      http.MethodPut,
		Path:        "/api/master",
		Summary:     "Set Master Intensity",
		Description: "Scale every channel at once",
		Tags:        []string{"intensity"},
		Errors:      []int{400, 401, 503},
		Security:    withAuth(),
	}, func(_ context.Context, input *models.LevelRequest) (*models.LevelResponse, error) {
		if err := s.device.SetMasterIntensity(input.Body.Level); err != nil {
			return nil, deviceError("Failed to set master intensity", err)
		}
		return &models.LevelResponse{Body: models.LevelData{Level: input.Body.Level}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-level",
		Method:      http.MethodPut,
		Path:        "/api/level",
		Summary:     "Set EL Level",
		Description: "Send the auxiliary EL brightness command",
		Tags:        []string{"intensity"},
		Errors:      []int{400, 401, 503},
		Security:    withAuth(),
	}, func(_ context.Context, input *models.LevelRequest) (*models.LevelResponse, error) {
		if err := s.device.SetLevel(input.Body.Level); err != nil {
			return nil, deviceError("Failed to set level", err)
		}
		return &models.LevelResponse{Body: models.LevelData{Level: input.Body.Level}}, nil
	})
}
