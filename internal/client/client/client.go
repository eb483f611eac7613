package client

import (
	"context"

	"github.com/dmitrijs2005/dblook/internal/client/models"
)

// Client is the backend API used by the CLI services.
type Client interface {
	Close() error
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Me(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error
	ListSessions(ctx context.Context) ([]models.SessionMeta, error)
	CreateSession(ctx context.Context, name, dbURL string) (string, error)
	DeleteSession(ctx context.Context, id string) error
	ConnectSession(ctx context.Context, id string) (*models.DatabaseInfo, error)
	DisconnectSession(ctx context.Context, id string) error
	ListTables(ctx context.Context) ([]models.TableInfo, error)
	ListCollections(ctx context.Context, table models.TableRef, idColumn, nameColumn string) ([]models.Collection, error)
	Ping(ctx context.Context) error
}

// TokenSource yields the bearer token for authenticated calls. An empty
// string means there is no token. The auth store satisfies it.
type TokenSource interface {
	Token() string
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func() string

func (f TokenSourceFunc) Token() string { return f() }
