package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/pokerleague/internal/api/request"
	"github.com/mcoot/pokerleague/internal/api/response"
	"github.com/mcoot/pokerleague/internal/model"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Event management commands",
	}

	cmd.AddCommand(newEventsListCmd())
	cmd.AddCommand(newEventsCreateCmd())
	cmd.AddCommand(newEventsShowCmd())
	cmd.AddCommand(newEventsResultsCmd())

	return cmd
}

func newEventsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List events, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var events []response.Event
			if err := client.Get(cmd.Context(), "/api/v1/events", &events); err != nil {
				return err
			}
			output(cmd).Print(events)
			return nil
		},
	}
}

func newEventsCreateCmd() *cobra.Command {
	var (
		req  request.CreateEventRequest
		rake float64
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("rake") {
				req.RakeGBP = &rake
			}

			var event response.Event
			if err := client.Post(cmd.Context(), "/api/v1/events", req, &event); err != nil {
				return err
			}
			output(cmd).Print(event)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "Event title")
	cmd.Flags().StringVar(&req.EventDate, "date", "", "Event date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.Venue, "venue", "", "Venue")
	cmd.Flags().Float64Var(&req.BuyInGBP, "buy-in", 0, "Buy-in in pounds")
	cmd.Flags().Float64Var(&rake, "rake", 0, "Rake in pounds")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func newEventsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <event-id>",
		Short: "Show an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var event response.Event
			if err := client.Get(cmd.Context(), eventPath(model.EventID(args[0])), &event); err != nil {
				return err
			}
			output(cmd).Print(event)
			return nil
		},
	}
}

func newEventsResultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "results <event-id>",
		Short: "Show an event's standings and prize pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var results response.ResultsResponse
			if err := client.Get(cmd.Context(), eventPath(model.EventID(args[0]))+"/results", &results); err != nil {
				return err
			}
			output(cmd).Print(results)
			return nil
		},
	}
}
