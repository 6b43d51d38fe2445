package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"gearhead/internal/app"
	profiledomain "gearhead/internal/profile/domain"
	profiledto "gearhead/internal/profile/dto"
)

func newProfileCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit your profile",
	}
	cmd.AddCommand(
		newProfileShowCommand(opts),
		newProfileEditCommand(opts),
		newProfileImageCommand(opts, "avatar", "Upload a new profile picture"),
		newProfileImageCommand(opts, "banner", "Upload a new profile banner"),
	)
	return cmd
}

func newProfileShowCommand(opts *rootOptions) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show your profile, from cache when it is fresh",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "always fetch from the server")

	cmd.RunE = opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, p *printer) error {
		if _, err := a.Auth.EnsureSession(ctx); err != nil {
			return err
		}

		var (
			snap profiledomain.Snapshot
			err  error
		)
		if refresh {
			snap, err = a.Profile.Refresh(ctx)
		} else {
			snap, err = a.Profile.Load(ctx)
		}
		if err != nil && snap.Profile == nil {
			return err
		}
		if err != nil {
			p.Warning("Refresh failed, showing the cached profile: %s", describe(err))
		}
		return printProfile(p, snap)
	})
	return cmd
}

func newProfileEditCommand(opts *rootOptions) *cobra.Command {
	var name, bio string
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change your name or bio",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&name, "name", "", "new display name (keeps the current one when omitted)")
	cmd.Flags().StringVar(&bio, "bio", "", "new bio (keeps the current one when omitted)")

	cmd.RunE = opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, p *printer) error {
		if !cmd.Flags().Changed("name") && !cmd.Flags().Changed("bio") {
			return fmt.Errorf("nothing to change, pass --name and/or --bio")
		}
		if _, err := a.Auth.EnsureSession(ctx); err != nil {
			return err
		}

		// The backend replaces both fields, so unchanged ones come from the current profile.
		current, err := a.Profile.Load(ctx)
		if err != nil {
			return err
		}
		req := &profiledto.UpdateProfileRequest{Name: current.Profile.Name, Bio: current.Profile.Bio}
		if cmd.Flags().Changed("name") {
			req.Name = name
		}
		if cmd.Flags().Changed("bio") {
			req.Bio = bio
		}

		snap, err := a.Profile.UpdateNameBio(ctx, req)
		if err != nil {
			return err
		}
		p.Success("Profile updated")
		return printProfile(p, snap)
	})
	return cmd
}

func newProfileImageCommand(opts *rootOptions, kind, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   kind + " <file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, p *printer) error {
		if _, err := a.Auth.EnsureSession(ctx); err != nil {
			return err
		}

		path := cmd.Flags().Arg(0)
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		upload := &profiledto.ImageUpload{
			FileName:    filepath.Base(path),
			ContentType: mime.TypeByExtension(filepath.Ext(path)),
			Content:     f,
		}

		var snap profiledomain.Snapshot
		if kind == "avatar" {
			snap, err = a.Profile.UpdateAvatar(ctx, upload)
		} else {
			snap, err = a.Profile.UpdateBanner(ctx, upload)
		}
		if err != nil {
			return err
		}

		url := snap.Profile.Avatar()
		if kind == "banner" {
			url = snap.Profile.Banner()
		}
		p.Success("New %s: %s", kind, orDash(url))
		return nil
	})
	return cmd
}

func printProfile(p *printer, snap profiledomain.Snapshot) error {
	prof := snap.Profile
	if prof == nil {
		p.Print("No profile loaded yet (%s)", snap.State)
		return nil
	}

	p.Header(prof.Name)
	p.Field("id", prof.ID)
	p.Field("bio", orDash(prof.Bio))
	p.Field("avatar", orDash(prof.Avatar()))
	p.Field("banner", orDash(prof.Banner()))
	p.Field("online", yesNo(prof.IsOnline))
	p.Field("joined", prof.JoinedAt)
	p.Field("stats", fmt.Sprintf("%s, %s, %s",
		plural(prof.Stats.TotalCars, "car"),
		plural(prof.Stats.TotalEvents, "event"),
		plural(prof.Stats.TotalBadges, "badge")))
	if prof.Crew != nil {
		crew := fmt.Sprintf("%s [%s]", prof.Crew.Name, prof.Crew.Tag)
		if prof.Crew.IsLeader {
			crew += " (leader)"
		}
		p.Field("crew", crew)
	}
	p.Field("cache", fmt.Sprintf("%s, captured %s", snap.State, snap.CapturedAt.Format(time.RFC3339)))
	if snap.RevalidationErr != nil {
		p.Warning("Last background refresh failed: %s", describe(snap.RevalidationErr))
	}

	if len(prof.Garage) == 0 {
		return nil
	}
	p.Header("Garage")
	rows := make([][]string, 0, len(prof.Garage))
	for _, car := range prof.Garage {
		rows = append(rows, []string{car.Brand, car.Model, strconv.Itoa(car.Year), orDash(car.Nickname), orDash(car.Specs.Engine)})
	}
	return p.Table([]string{"Brand", "Model", "Year", "Nickname", "Engine"}, rows)
}
