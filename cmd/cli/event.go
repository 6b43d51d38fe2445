package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gearhead/internal/app"
	eventdomain "gearhead/internal/event/domain"
	eventdto "gearhead/internal/event/dto"
)

var eventDateLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"}

func newEventCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Community events",
	}
	cmd.AddCommand(newEventCreateCommand(opts))
	return cmd
}

func newEventCreateCommand(opts *rootOptions) *cobra.Command {
	req := &eventdto.CreateEventRequest{}
	var eventType, date string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&req.Title, "title", "", "event title")
	cmd.Flags().StringVar(&eventType, "type", string(eventdomain.EventMeet), "MEET, RACE, CRUISE, SHOWOFF, DRIFT, TIME_ATTACK or OFFROAD")
	cmd.Flags().StringVar(&req.Description, "description", "", "description")
	cmd.Flags().StringVar(&date, "date", "", `start time, RFC 3339 or "2006-01-02 15:04" in local time (default now)`)
	cmd.Flags().StringVar(&req.Address.Street, "street", "", "street")
	cmd.Flags().StringVar(&req.Address.Number, "number", "", "street number")
	cmd.Flags().StringVar(&req.Address.Neighborhood, "neighborhood", "", "neighborhood")
	cmd.Flags().StringVar(&req.Address.City, "city", "", "city")
	cmd.Flags().StringVar(&req.Address.State, "state", "", "state, e.g. SP")
	cmd.Flags().StringVar(&req.Address.ZipCode, "zip", "", "zip code")

	cmd.RunE = opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, p *printer) error {
		if _, err := a.Auth.EnsureSession(ctx); err != nil {
			return err
		}

		req.Type = eventdomain.EventType(eventType)
		if date != "" {
			when, err := parseEventDate(date)
			if err != nil {
				return err
			}
			req.EventDate = when
		}

		event, err := a.Events.CreateEvent(ctx, req)
		if err != nil {
			return err
		}
		p.Success("Created %s %q on %s", event.Type, event.Title, event.EventDate)
		return nil
	})
	return cmd
}

func parseEventDate(s string) (time.Time, error) {
	for _, layout := range eventDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date %q", s)
}
