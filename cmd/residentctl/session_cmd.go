package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/residentdesk/residentdesk/internal/api/validation"
	"github.com/residentdesk/residentdesk/internal/auth"
	"github.com/residentdesk/residentdesk/internal/session"
)

var loginCmd = &cobra.Command{
	Use:     "login <email>",
	Short:   "Sign in and remember the session",
	GroupID: "session",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd)
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		p, err := cli.login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Signed in as %s (%s)\n", p.Email, p.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:     "logout",
	Short:   "Revoke the stored session",
	GroupID: "session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Short:   "Show the signed-in admin",
	GroupID: "session",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := cli.requireAdmin(cmd.Context())
		if err != nil {
			return err
		}
		if cli.json {
			return printJSON(cli.out, toProfileView(p))
		}
		printProfile(cli.out, p)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Follow the session state until interrupted",
	GroupID: "session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.watch(cmd.Context())
	},
}

func (a *app) login(ctx context.Context, email, password string) (*session.Profile, error) {
	if errs := validation.ValidateLoginRequest(validation.LoginRequest{Email: email, Password: password}); len(errs) > 0 {
		return nil, errors.New(errs[0].Message)
	}

	gate := a.newGate()
	defer gate.Close()

	p, err := gate.SignIn(ctx, strings.TrimSpace(email), password)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, auth.ErrInvalidCredentials):
		return nil, errors.New("invalid email or password")
	case errors.Is(err, session.ErrAuthorizationDenied):
		return nil, session.ErrAuthorizationDenied
	default:
		return nil, fmt.Errorf("signing in: %w", err)
	}
}

func (a *app) logout(ctx context.Context) error {
	gate := a.newGate()
	defer gate.Close()

	if err := gate.SignOut(ctx); err != nil {
		return fmt.Errorf("signing out: %w", err)
	}
	return nil
}

// watch prints every gate state until ctx is cancelled. Revocations made by
// other processes arrive through the database listener.
func (a *app) watch(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.db != nil {
		go auth.NewListener(a.db.Pool(), a.svc).Run(ctx)
	}

	gate := a.newGate()
	defer gate.Close()

	if err := gate.Start(ctx); err != nil {
		return err
	}

	states, stop := gate.Watch()
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case st, ok := <-states:
			if !ok {
				return nil
			}
			printState(a.out, st)
		}
	}
}

// readPassword prompts on stderr. Input is hidden when stdin is a terminal;
// otherwise one line is read, so the password can be piped in.
func readPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		return string(b), err
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
