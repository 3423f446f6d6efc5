package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mcoot/pokerleague/internal/api/request"
	"github.com/mcoot/pokerleague/internal/api/response"
	"github.com/mcoot/pokerleague/internal/model"
	"github.com/mcoot/pokerleague/internal/services/roster"
	"github.com/mcoot/pokerleague/internal/services/rostersync"
)

func newRosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Bring an event's entries in line with a player selection (admin)",
	}

	cmd.AddCommand(newRosterSyncCmd())
	cmd.AddCommand(newRosterToggleCmd())

	return cmd
}

func newRosterSyncCmd() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "sync <event-id> [player-id...]",
		Short: "Make the event's entries match exactly the given players",
		Long: `Make the event's entries match exactly the given players. Players not
listed are removed; listed players without an entry are added.

By default the diff is computed here and applied with one bulk add and one
bulk remove. With --remote the server computes and applies it.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID := model.EventID(args[0])
			desired := playerIDs(args[1:])

			if remote {
				var report response.SyncReport
				body := request.SyncRosterRequest{DesiredPlayerIDs: desired}
				if err := client.Put(cmd.Context(), eventPath(eventID)+"/roster", body, &report); err != nil {
					return err
				}
				output(cmd).Print(report)
				return nil
			}

			submitter := rostersync.NewSubmitter(NewHTTPGateway(client, eventID), eventID, cliLogger(cmd))
			report, err := submitter.Submit(cmd.Context(), rostersync.SyncRequest{
				EventID:          eventID,
				DesiredPlayerIDs: desired,
			})
			if err != nil {
				return err
			}
			output(cmd).Print(response.SyncReportFromRostersync(report))
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Let the server compute the diff")

	return cmd
}

func newRosterToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <event-id> <player-id...>",
		Short: "Flip each player's selection, committing every flip straight away",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eventID := model.EventID(args[0])
			gw := NewHTTPGateway(client, eventID)

			entries, err := gw.ListEntries(ctx, eventID)
			if err != nil {
				return err
			}
			entered := make([]model.PlayerID, len(entries))
			for i, e := range entries {
				entered[i] = e.PlayerID
			}

			toggler := rostersync.NewToggler(gw, eventID, roster.NewSelector(entered...), cliLogger(cmd), nil)
			defer toggler.Close()

			pending := make([]*rostersync.Pending, 0, len(args)-1)
			for _, id := range playerIDs(args[1:]) {
				p, err := toggler.Toggle(ctx, id)
				if err != nil {
					return err
				}
				pending = append(pending, p)
			}

			outcomes := make([]rostersync.Outcome, len(pending))
			failed := 0
			for i, p := range pending {
				outcomes[i] = p.Wait()
				if outcomes[i].Reverted {
					failed++
				}
			}
			output(cmd).Print(outcomes)

			if failed > 0 {
				return fmt.Errorf("%d of %d toggles failed", failed, len(outcomes))
			}
			return nil
		},
	}
}

func playerIDs(args []string) []model.PlayerID {
	ids := make([]model.PlayerID, len(args))
	for i, a := range args {
		ids[i] = model.PlayerID(a)
	}
	return ids
}

func cliLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
