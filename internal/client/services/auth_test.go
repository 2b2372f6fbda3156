package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	LoginToken string
	LoginErr   error
	SignupErr  error
	PingErr    error
	ExportURL  string
	ExportErr  error

	LastLoginUser string
	LastLoginPass string
	LastSignup    [3]string
	PingCalls     int
}

func (f *fakeClient) Login(ctx context.Context, username, password string) (string, error) {
	f.LastLoginUser, f.LastLoginPass = username, password
	return f.LoginToken, f.LoginErr
}

func (f *fakeClient) Signup(ctx context.Context, email, username, password string) error {
	f.LastSignup = [3]string{email, username, password}
	return f.SignupErr
}

func (f *fakeClient) Ping(ctx context.Context) error {
	f.PingCalls++
	return f.PingErr
}

func (f *fakeClient) Export(ctx context.Context) (string, error) {
	return f.ExportURL, f.ExportErr
}

type fakeCreds struct {
	Username, Token string
	SetErr          error
	ClearErr        error
	Cleared         bool
}

func (f *fakeCreds) Set(ctx context.Context, username, token string) error {
	if f.SetErr != nil {
		return f.SetErr
	}
	f.Username, f.Token = username, token
	return nil
}

func (f *fakeCreds) Clear(ctx context.Context) error {
	f.Cleared = true
	f.Username, f.Token = "", ""
	return f.ClearErr
}

func TestLogin_SavesToken(t *testing.T) {
	fc := &fakeClient{LoginToken: "jwt"}
	creds := &fakeCreds{}
	svc := NewAuthService(fc, creds)

	require.NoError(t, svc.Login(context.Background(), "alice", "pw"))
	assert.Equal(t, "alice", fc.LastLoginUser)
	assert.Equal(t, "pw", fc.LastLoginPass)
	assert.Equal(t, "alice", creds.Username)
	assert.Equal(t, "jwt", creds.Token)
}

func TestLogin_RejectsEmptyInput(t *testing.T) {
	svc := NewAuthService(&fakeClient{}, &fakeCreds{})

	err := svc.Login(context.Background(), "  ", "pw")
	require.ErrorIs(t, err, common.ErrorValidation)
	err = svc.Login(context.Background(), "alice", "")
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestLogin_ServerErrorWrapped(t *testing.T) {
	fc := &fakeClient{LoginErr: common.ErrorUnauthorized}
	creds := &fakeCreds{}
	svc := NewAuthService(fc, creds)

	err := svc.Login(context.Background(), "alice", "bad")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
	require.ErrorContains(t, err, "login error")
	assert.Empty(t, creds.Token)
}

func TestLogin_SaveError(t *testing.T) {
	boom := errors.New("disk full")
	svc := NewAuthService(&fakeClient{LoginToken: "jwt"}, &fakeCreds{SetErr: boom})

	err := svc.Login(context.Background(), "alice", "pw")
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "session saving error")
}

func TestSignup(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		user      string
		pass      string
		clientErr error
		wantErr   error
	}{
		{name: "ok", email: "a@b.c", user: "alice", pass: "pw"},
		{name: "bad email", email: "abc", user: "alice", pass: "pw", wantErr: common.ErrorValidation},
		{name: "no user", email: "a@b.c", user: "", pass: "pw", wantErr: common.ErrorValidation},
		{name: "duplicate", email: "a@b.c", user: "alice", pass: "pw", clientErr: common.ErrorAlreadyExists, wantErr: common.ErrorAlreadyExists},
		{name: "transport", email: "a@b.c", user: "alice", pass: "pw", clientErr: common.ErrTransport, wantErr: common.ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{SignupErr: tt.clientErr}
			err := NewAuthService(fc, &fakeCreds{}).Signup(context.Background(), tt.email, tt.user, tt.pass)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, [3]string{tt.email, tt.user, tt.pass}, fc.LastSignup)
		})
	}
}

func TestLogout_ClearsCredentials(t *testing.T) {
	creds := &fakeCreds{Username: "alice", Token: "jwt"}
	svc := NewAuthService(&fakeClient{}, creds)

	require.NoError(t, svc.Logout(context.Background()))
	assert.True(t, creds.Cleared)
	assert.Empty(t, creds.Token)
}

func TestPing_Proxies(t *testing.T) {
	fc := &fakeClient{PingErr: common.ErrTransport}
	svc := NewAuthService(fc, &fakeCreds{})

	require.ErrorIs(t, svc.Ping(context.Background()), common.ErrTransport)
	assert.Equal(t, 1, fc.PingCalls)
}
