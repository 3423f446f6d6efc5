package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mcoot/pokerleague/internal/api/response"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server and storage health",
		Long: `Check server and storage health.

Exits non-zero when the server answers but reports its storage as degraded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.HealthResponse
			err := client.Get(cmd.Context(), "/api/v1/health", &result)

			// A degraded server still sends the health body with its 503
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusServiceUnavailable &&
				json.Unmarshal([]byte(apiErr.Message), &result) == nil && result.Status != "" {
				output(cmd).Print(result)
				return fmt.Errorf("server degraded: %s", result.Storage)
			}
			if err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
