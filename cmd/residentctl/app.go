package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/residentdesk/residentdesk/internal/auth"
	"github.com/residentdesk/residentdesk/internal/config"
	"github.com/residentdesk/residentdesk/internal/database"
	"github.com/residentdesk/residentdesk/internal/issue"
	"github.com/residentdesk/residentdesk/internal/profile"
	"github.com/residentdesk/residentdesk/internal/resident"
	"github.com/residentdesk/residentdesk/internal/session"
)

var errNotSignedIn = errors.New("not signed in as an admin; run `residentctl login` first")

// app holds everything a command needs. Commands never touch residents or
// issues without first passing the session gate.
type app struct {
	db        *database.DB
	svc       *auth.Service
	profiles  profile.Repository
	residents resident.Repository
	issues    issue.Repository
	store     auth.TokenStore
	gateOpts  []session.Option
	out       io.Writer
	json      bool
}

func newApp(ctx context.Context, cfg *config.Config, out io.Writer) (*app, error) {
	tokenPath, err := cfg.TokenPath()
	if err != nil {
		return nil, err
	}

	db, err := database.New(ctx, cfg.DatabaseURL, database.WithApplicationName("residentctl"), database.WithMaxConns(2))
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	pool := db.Pool()
	return &app{
		db:        db,
		svc:       auth.NewService(auth.NewRepository(pool), auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer), cfg.SessionTTL, cfg.BcryptCost),
		profiles:  profile.NewRepository(pool),
		residents: resident.NewRepository(pool),
		issues:    issue.NewRepository(pool),
		store:     auth.NewFileTokenStore(tokenPath),
		gateOpts:  cfg.GateOptions(),
		out:       out,
	}, nil
}

// Close releases the database connection.
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

// newGate returns an unstarted gate over the stored session.
func (a *app) newGate() *session.Gate {
	return session.New(a.svc.NewClient(a.store), a.profiles, a.gateOpts...)
}

// requireAdmin resolves the stored session through the gate and returns the
// signed-in admin. A stored token whose account lost its admin profile is
// revoked by the gate on the way.
func (a *app) requireAdmin(ctx context.Context) (*session.Profile, error) {
	gate := a.newGate()
	defer gate.Close()

	if err := gate.Start(ctx); err != nil {
		return nil, err
	}
	st, err := gate.Wait(ctx)
	if err != nil {
		return nil, err
	}
	if !st.Authenticated() {
		return nil, errNotSignedIn
	}
	return st.Profile, nil
}
