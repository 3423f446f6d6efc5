package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mcoot/pokerleague/internal/api/request"
	"github.com/mcoot/pokerleague/internal/api/response"
	"github.com/mcoot/pokerleague/internal/model"
)

func newEntriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "Entry commands for an event night (admin)",
	}

	cmd.AddCommand(newEntriesListCmd())
	cmd.AddCommand(newEntriesAddCmd())
	cmd.AddCommand(newEntriesRemoveCmd())
	cmd.AddCommand(newEntriesRebuyCmd())
	cmd.AddCommand(newEntriesAddonCmd())
	cmd.AddCommand(newEntriesResultCmd())

	return cmd
}

func newEntriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <event-id>",
		Short: "List an event's entries with totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries response.EntriesResponse
			if err := client.Get(cmd.Context(), eventPath(model.EventID(args[0]))+"/entries", &entries); err != nil {
				return err
			}
			output(cmd).Print(entries)
			return nil
		},
	}
}

func newEntriesAddCmd() *cobra.Command {
	var req request.AddEntryRequest
	var playerID string

	cmd := &cobra.Command{
		Use:   "add <event-id>",
		Short: "Enter a player into an event",
		Long: `Enter a player into an event. Use exactly one of:
  --player <id>             an existing player by ID
  --query <handle-or-name>  an existing player by handle or display name
  --name <name> [--handle]  a new player, reusing the one holding --handle if any`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.PlayerID = model.PlayerID(playerID)
			if req.PlayerID == "" && req.Query == "" && req.DisplayName == "" {
				return errors.New("one of --player, --query or --name is required")
			}

			var resp response.AddEntryResponse
			if err := client.Post(cmd.Context(), eventPath(model.EventID(args[0]))+"/entries", req, &resp); err != nil {
				return err
			}
			output(cmd).Print(resp)
			return nil
		},
	}

	cmd.Flags().StringVar(&playerID, "player", "", "Existing player ID")
	cmd.Flags().StringVar(&req.Query, "query", "", "Handle or display name of an existing player")
	cmd.Flags().StringVar(&req.DisplayName, "name", "", "Display name for a new player")
	cmd.Flags().StringVar(&req.Handle, "handle", "", "Handle for a new player")
	cmd.MarkFlagsMutuallyExclusive("player", "query", "name")

	return cmd
}

func newEntriesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <event-id> <entry-id>",
		Short: "Remove an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw := NewHTTPGateway(client, model.EventID(args[0]))
			if err := gw.RemoveEntryByID(cmd.Context(), model.EntryID(args[1])); err != nil {
				return err
			}
			output(cmd).PrintMessage("Entry removed")
			return nil
		},
	}
}

func newEntriesRebuyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuy <event-id> <entry-id>",
		Short: "Record a rebuy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return entryAction(cmd, args, "/rebuy")
		},
	}
}

func newEntriesAddonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "addon <event-id> <entry-id>",
		Short: "Toggle an entry's add-on",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return entryAction(cmd, args, "/addon")
		},
	}
}

func entryAction(cmd *cobra.Command, args []string, suffix string) error {
	gw := NewHTTPGateway(client, model.EventID(args[0]))
	var entry response.Entry
	if err := client.Post(cmd.Context(), gw.entryPath(model.EntryID(args[1]))+suffix, nil, &entry); err != nil {
		return err
	}
	output(cmd).Print(entry)
	return nil
}

func newEntriesResultCmd() *cobra.Command {
	var (
		req   request.RecordResultRequest
		place int
	)

	cmd := &cobra.Command{
		Use:   "result <event-id> <entry-id>",
		Short: "Record an entry's finish place, cash and points",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("place") {
				req.FinishPlace = &place
			}

			gw := NewHTTPGateway(client, model.EventID(args[0]))
			var entry response.Entry
			if err := client.Put(cmd.Context(), gw.entryPath(model.EntryID(args[1]))+"/result", req, &entry); err != nil {
				return err
			}
			output(cmd).Print(entry)
			return nil
		},
	}

	cmd.Flags().IntVar(&place, "place", 0, "Finish place (1 is the winner)")
	cmd.Flags().Float64Var(&req.CashGBP, "cash", 0, "Cash won in pounds")
	cmd.Flags().IntVar(&req.Points, "points", 0, "League points")

	return cmd
}
