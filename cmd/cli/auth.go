package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"gearhead/internal/app"
	authdomain "gearhead/internal/auth/domain"
	authdto "gearhead/internal/auth/dto"
)

func newLoginCommand(opts *rootOptions) *cobra.Command {
	req := &authdto.LoginRequest{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password (prompted when omitted)")

	cmd.RunE = opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, p *printer) error {
		if req.Password == "" {
			secrets, err := readSecrets(cmd, "Password")
			if err != nil {
				return err
			}
			req.Password = secrets[0]
		}
		user, err := a.Auth.Login(ctx, req)
		if err != nil {
			return err
		}
		p.Success("Signed in as %s", user.Name)
		return nil
	})
	return cmd
}

func newRegisterCommand(opts *rootOptions) *cobra.Command {
	req := &authdto.RegisterRequest{}
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "password, at least 6 characters (prompted when omitted)")
	cmd.Flags().StringVar(&req.ConfirmPassword, "confirm-password", "", "password confirmation (defaults to --password)")
	cmd.Flags().BoolVar(&req.AcceptTerms, "accept-terms", false, "accept the terms of use and privacy policy")

	cmd.RunE = opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, p *printer) error {
		switch {
		case req.Password == "":
			secrets, err := readSecrets(cmd, "Password", "Confirm password")
			if err != nil {
				return err
			}
			req.Password, req.ConfirmPassword = secrets[0], secrets[1]
		case !cmd.Flags().Changed("confirm-password"):
			req.ConfirmPassword = req.Password
		}

		user, err := a.Auth.Register(ctx, req)
		if err != nil {
			return err
		}
		p.Success("Welcome to GEARHEAD, %s", user.Name)
		return nil
	})
	return cmd
}

func newForgotPasswordCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forgot-password <email>",
		Short: "Send a password reset email",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, p *printer) error {
		req := &authdto.ForgotPasswordRequest{Email: cmd.Flags().Arg(0)}
		if err := a.Auth.ForgotPassword(ctx, req); err != nil {
			return err
		}
		p.Success("Password reset link sent to %s", req.Email)
		return nil
	})
	return cmd
}

func newLogoutCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the cached profile",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, p *printer) error {
		if err := a.Auth.Logout(ctx); err != nil {
			return err
		}
		p.Success("Signed out")
		return nil
	})
	return cmd
}

func newWhoamiCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, p *printer) error {
		user, err := a.Auth.EnsureSession(ctx)
		if err != nil {
			return err
		}
		printUser(p, user, a.Identity.CurrentPrincipal().UID)
		return nil
	})
	return cmd
}

func newImpersonateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "impersonate <uid>",
		Short: "Sign in as another user with a custom token (needs service-account credentials)",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, p *printer) error {
		token, err := a.CustomToken(ctx, cmd.Flags().Arg(0))
		if err != nil {
			return err
		}
		user, err := a.Auth.LoginWithCustomToken(ctx, token)
		if err != nil {
			return err
		}
		p.Success("Signed in as %s", user.Name)
		return nil
	})
	return cmd
}

func printUser(p *printer, user *authdomain.SyncedUser, uid string) {
	p.Header(user.Name)
	p.Field("id", user.ID)
	p.Field("email", user.Email)
	p.Field("uid", uid)
	p.Field("avatar", orDash(user.Avatar()))
	p.Field("since", user.CreatedAt)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
