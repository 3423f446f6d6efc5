package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/pokerleague/internal/api/response"
)

func newPlayersCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "players",
		Short: "List players, or search them by name and handle",
		RunE: func(cmd *cobra.Command, args []string) error {
			if search != "" {
				var candidates []response.Candidate
				if err := client.Get(cmd.Context(), "/api/v1/players?q="+url.QueryEscape(search), &candidates); err != nil {
					return err
				}
				output(cmd).Print(candidates)
				return nil
			}

			var players []response.Player
			if err := client.Get(cmd.Context(), "/api/v1/players", &players); err != nil {
				return err
			}
			output(cmd).Print(players)
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Search query")

	return cmd
}

func newStandingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "standings",
		Short: "Show the league table",
		RunE: func(cmd *cobra.Command, args []string) error {
			var totals []response.LeagueTotal
			if err := client.Get(cmd.Context(), "/api/v1/standings", &totals); err != nil {
				return err
			}
			output(cmd).Print(totals)
			return nil
		},
	}
}
