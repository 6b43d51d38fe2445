package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	authUsecase "gearhead/internal/auth/usecase"
	garageUsecase "gearhead/internal/garage/usecase"
	profileUsecase "gearhead/internal/profile/usecase"
	"gearhead/pkg/gateway"
	"gearhead/pkg/identity"
	"gearhead/pkg/validation"
)

type printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
}

func newPrinter(out, errOut io.Writer, noColor bool) *printer {
	return &printer{
		out:       out,
		err:       errOut,
		useColors: !noColor && !color.NoColor,
	}
}

func (p *printer) Success(format string, args ...interface{}) {
	if p.useColors {
		color.New(color.FgGreen).Fprintf(p.out, "✓ "+format+"\n", args...)
	} else {
		fmt.Fprintf(p.out, "[OK] "+format+"\n", args...)
	}
}

func (p *printer) Warning(format string, args ...interface{}) {
	if p.useColors {
		color.New(color.FgYellow).Fprintf(p.err, "⚠ "+format+"\n", args...)
	} else {
		fmt.Fprintf(p.err, "[WARN] "+format+"\n", args...)
	}
}

func (p *printer) Error(format string, args ...interface{}) {
	if p.useColors {
		color.New(color.FgRed).Fprintf(p.err, "✗ "+format+"\n", args...)
	} else {
		fmt.Fprintf(p.err, "[ERROR] "+format+"\n", args...)
	}
}

func (p *printer) Print(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *printer) Header(title string) {
	if p.useColors {
		color.New(color.FgWhite, color.Bold).Fprintf(p.out, "\n%s\n", title)
	} else {
		fmt.Fprintf(p.out, "\n%s\n%s\n", title, strings.Repeat("-", len([]rune(title))))
	}
}

// Field prints an aligned "label: value" line.
func (p *printer) Field(label, value string) {
	if p.useColors {
		label = color.New(color.Faint).Sprint(label)
	}
	fmt.Fprintf(p.out, "  %-10s %s\n", label+":", value)
}

func (p *printer) Table(header []string, rows [][]string) error {
	table := tablewriter.NewTable(p.out,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// describe turns an error into the message shown to the user.
func describe(err error) string {
	var verr *validation.ValidationError
	switch {
	case errors.As(err, &verr):
		return "invalid input: " + verr.Error()
	case errors.Is(err, identity.ErrInvalidCredential),
		errors.Is(err, identity.ErrWrongPassword),
		errors.Is(err, identity.ErrUserNotFound):
		return "wrong email or password"
	case errors.Is(err, identity.ErrEmailInUse):
		return "an account with this email already exists"
	case errors.Is(err, identity.ErrWeakPassword):
		return "password should be at least 6 characters"
	case errors.Is(err, identity.ErrUserDisabled):
		return "this account has been disabled"
	case errors.Is(err, identity.ErrTokenExpired):
		return "your session expired, sign in again"
	case errors.Is(err, authUsecase.ErrNotSignedIn),
		errors.Is(err, profileUsecase.ErrIdentityMissing),
		errors.Is(err, garageUsecase.ErrNotAuthenticated):
		return "not signed in, run `gearhead login` first"
	case errors.Is(err, authUsecase.ErrSessionInvalid):
		return "your session was not set up on the server and has been closed, sign in again"
	case errors.Is(err, gateway.ErrTransport):
		return "could not reach the server: " + err.Error()
	}
	return err.Error()
}
