package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/tf96ctl/internal/api/models"
	"github.com/smazurov/tf96ctl/internal/led"
)

func (s *Server) registerColorRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "map-color",
		Method:      http.MethodPost,
		Path:        "/api/color/map",
		Summary:     "Map Color",
		Description: "Convert a #rrggbb color to device levels without touching the chip",
		Tags:        []string{"color"},
		Errors:      []int{400, 401},
		Security:    withAuth(),
	}, func(_ context.Context, input *models.ColorMapRequest) (*models.ColorMapResponse, error) {
		c, err := led.ParseHex(input.Body.Color)
		if err != nil {
			return nil, deviceError("Invalid color", err)
		}
		t := led.RGBToDevice(c)
		return &models.ColorMapResponse{Body: models.ColorMapData{
			Color:  c.Hex(),
			Red:    t[0],
			Green:  t[1],
			Blue:   t[2],
			Device: led.DeviceToRGB(t).Hex(),
		}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "list-groups",
		Method:      http.MethodGet,
		Path:        "/api/groups",
		Summary:     "List LED Groups",
		Description: "RGB LED groups with the color of their last commanded levels",
		Tags:        []string{"color"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(_ context.Context, _ *struct{}) (*models.GroupsResponse, error) {
		groups := led.Groups()
		out := make([]models.GroupData, 0, len(groups))
		for _, g := range groups {
			c, err := s.device.GroupColor(g.Name)
			if err != nil {
				return nil, deviceError("Failed to read group color", err)
			}
			out = append(out, models.GroupData{Group: g, Color: c.Hex()})
		}
		return &models.GroupsResponse{Body: models.GroupsData{Groups: out}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-group-color",
		Method:      http.MethodPost,
		Path:        "/api/groups/{group}/color",
		Summary:     "Set Group Color",
		Description: "Apply a color to one LED group, or to every group with \"all\"",
		Tags:        []string{"color"},
		Errors:      []int{400, 401, 503},
		Security:    withAuth(),
	}, func(_ context.Context, input *models.GroupColorRequest) (*models.GroupColorResponse, error) {
		c, err := led.ParseHex(input.Body.Color)
		if err != nil {
			return nil, deviceError("Invalid color", err)
		}
		t, err := s.device.ApplyColor(input.Group, c)
		if err != nil {
			return nil, deviceError("Failed to apply color to "+input.Group, err)
		}
		return &models.GroupColorResponse{Body: models.GroupColorData{
			Group:  input.Group,
			Color:  c.Hex(),
			Levels: t,
		}}, nil
	})
}
