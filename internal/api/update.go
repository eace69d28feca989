package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/tf96ctl/internal/api/models"
	"github.com/smazurov/tf96ctl/internal/updater"
)

// registerUpdateRoutes registers the release check when a checker is configured.
func (s *Server) registerUpdateRoutes() {
	if s.options.UpdateChecker == nil {
		return
	}
	checker := s.options.UpdateChecker

	huma.Register(s.api, huma.Operation{
		OperationID: "check-updates",
		Method:      http.MethodGet,
		Path:        "/api/update/check",
		Summary:     "Check for Updates",
		Description: "Check whether a newer release is published. Nothing is downloaded.",
		Tags:        []string{"update"},
		Errors:      []int{401, 404, 502},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.UpdateCheckResponse, error) {
		info, err := checker.Check(ctx)
		if err != nil {
			var uerr *updater.Error
			if errors.As(err, &uerr) && uerr.Code == updater.ErrCodeNotFound {
				return nil, huma.Error404NotFound(uerr.Message)
			}
			return nil, huma.Error502BadGateway("Update check failed", err)
		}
		return &models.UpdateCheckResponse{Body: models.UpdateCheckData{
			CurrentVersion:  info.CurrentVersion,
			LatestVersion:   info.LatestVersion,
			ReleaseNotes:    info.ReleaseNotes,
			ReleaseURL:      info.ReleaseURL,
			PublishedAt:     info.PublishedAt,
			UpdateAvailable: info.UpdateAvailable,
		}}, nil
	})
}
