// Package services contains application services for the Daybook client.
// This file defines the authentication service: login, signup, logout and
// the liveness probe.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/daybook/internal/common"
)

// AuthClient is the part of the API client the auth service needs.
type AuthClient interface {
	Login(ctx context.Context, username, password string) (string, error)
	Signup(ctx context.Context, email, username, password string) error
	Ping(ctx context.Context) error
}

// Credentials persists the signed-in user's token.
type Credentials interface {
	Set(ctx context.Context, username, token string) error
	Clear(ctx context.Context) error
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server and persist the token.
//   - Signup: create a new user on the server.
//   - Logout: forget the token locally.
//   - Ping: check server liveness.
type AuthService interface {
	Login(ctx context.Context, username, password string) error
	Signup(ctx context.Context, email, username, password string) error
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
}

type authService struct {
	client AuthClient
	creds  Credentials
}

// NewAuthService constructs an AuthService bound to the API client and the
// credential store.
func NewAuthService(client AuthClient, creds Credentials) AuthService {
	return &authService{client: client, creds: creds}
}

// Login authenticates and saves the issued token.
func (a *authService) Login(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}

	token, err := a.client.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	if err := a.creds.Set(ctx, username, token); err != nil {
		return fmt.Errorf("session saving error: %w", err)
	}
	return nil
}

// Signup registers a new account. It does not sign in.
func (a *authService) Signup(ctx context.Context, email, username, password string) error {
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: invalid email %q", common.ErrorValidation, email)
	}
	if strings.TrimSpace(username) == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}

	if err := a.client.Signup(ctx, email, username, password); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return err
		}
		return fmt.Errorf("signup error: %w", err)
	}
	return nil
}

// Logout clears the local credential. The server keeps no session state.
func (a *authService) Logout(ctx context.Context) error {
	return a.creds.Clear(ctx)
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
