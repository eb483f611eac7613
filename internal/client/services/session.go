package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/dblook/internal/client/client"
	"github.com/dmitrijs2005/dblook/internal/client/models"
	"github.com/dmitrijs2005/dblook/internal/client/store"
	"github.com/dmitrijs2005/dblook/internal/common"
	"github.com/dmitrijs2005/dblook/internal/logging"
)

// SessionService manages the user's database sessions and what is selected
// inside the active one. Every call needs a logged-in user; a token rejected
// by the server resets local state and yields common.ErrSessionExpired.
type SessionService interface {
	Refresh(ctx context.Context) ([]models.SessionMeta, error)
	Create(ctx context.Context, name, dbURL string) (string, error)
	Delete(ctx context.Context, id string) error
	Connect(ctx context.Context, id string) (*models.DatabaseInfo, error)
	Disconnect(ctx context.Context) error
	Active() (models.SessionMeta, bool)
	ListTables(ctx context.Context) ([]models.TableInfo, error)
	ListCollections(ctx context.Context) ([]models.Collection, error)
	SelectTable(ctx context.Context, schema, name string) (models.TableInfo, error)
	SelectCollection(ctx context.Context, key string) (models.Collection, error)
}

// Columns asked for when a table has no detected collections: the distinct
// collection ids, each doubling as its own name.
const (
	CollectionIDColumn   = "collection_id"
	CollectionNameColumn = "collection_id"
)

type sessionService struct {
	client    client.Client
	auth      *store.AuthStore
	selection *store.SelectionStore
	log       logging.Logger
}

func NewSessionService(c client.Client, auth *store.AuthStore, selection *store.SelectionStore, opts ...Option) SessionService {
	o := buildOptions(opts)
	return &sessionService{
		client:    c,
		auth:      auth,
		selection: selection,
		log:       o.log.With("service", "sessions"),
	}
}

func (s *sessionService) requireLogin() error {
	if !s.auth.Snapshot().IsAuthenticated() {
		return common.ErrNotLoggedIn
	}
	return nil
}

// check maps a rejected token to a local reset.
func (s *sessionService) check(ctx context.Context, op string, err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		s.log.Info(ctx, "token rejected, resetting", "op", op)
		s.auth.Reset()
		s.selection.Clear()
		return common.ErrSessionExpired
	}
	return fmt.Errorf("%s error: %w", op, err)
}

// Refresh reloads the session list. An active session that disappeared from
// the list is deselected.
func (s *sessionService) Refresh(ctx context.Context) ([]models.SessionMeta, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	list, err := s.client.ListSessions(ctx)
	if err != nil {
		return nil, s.check(ctx, "list sessions", err)
	}
	s.auth.SetSessions(list)
	dropDanglingActive(s.auth, s.selection)
	return list, nil
}

func (s *sessionService) Create(ctx context.Context, name, dbURL string) (string, error) {
	if err := s.requireLogin(); err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	dbURL = strings.TrimSpace(dbURL)
	if name == "" {
		return "", common.ErrEmptyName
	}
	if dbURL == "" {
		return "", common.ErrEmptyURL
	}

	id, err := s.client.CreateSession(ctx, name, dbURL)
	if err != nil {
		return "", s.check(ctx, "create session", err)
	}

	if _, err := s.Refresh(ctx); err != nil {
		s.log.Warn(ctx, "session list not refreshed", "err", err)
	}
	return id, nil
}

// Delete removes a session on the server. If it was the active one, the
// active pointer is cleared before the session leaves the list.
func (s *sessionService) Delete(ctx context.Context, id string) error {
	if err := s.requireLogin(); err != nil {
		return err
	}

	if err := s.client.DeleteSession(ctx, id); err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return common.ErrSessionNotFound
		}
		return s.check(ctx, "delete session", err)
	}

	state := s.auth.Snapshot()
	if state.ActiveSessionID != nil && *state.ActiveSessionID == id {
		s.auth.Disconnect()
		s.selection.Clear()
	}

	remaining := make([]models.SessionMeta, 0, len(state.Sessions))
	for _, m := range state.Sessions {
		if m.ID != id {
			remaining = append(remaining, m)
		}
	}
	s.auth.SetSessions(remaining)
	return nil
}

// Connect opens the session on the server and makes it the active one.
func (s *sessionService) Connect(ctx context.Context, id string) (*models.DatabaseInfo, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	info, err := s.client.ConnectSession(ctx, id)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return nil, common.ErrSessionNotFound
		}
		return nil, s.check(ctx, "connect session", err)
	}

	prev := s.auth.Snapshot().ActiveSessionID
	if prev == nil || *prev != id {
		s.selection.Clear()
	}
	s.auth.SetActiveSession(&id)

	// picks up last_db_name and last_db_version written by the connect
	if _, err := s.Refresh(ctx); err != nil {
		s.log.Warn(ctx, "session list not refreshed", "err", err)
	}
	return info, nil
}

// Disconnect deselects the active session. The server is told on a best
// effort basis; local state is cleared regardless.
func (s *sessionService) Disconnect(ctx context.Context) error {
	state := s.auth.Snapshot()
	if state.ActiveSessionID == nil {
		return common.ErrNoActiveSession
	}

	if err := s.client.DisconnectSession(ctx, *state.ActiveSessionID); err != nil {
		s.log.Warn(ctx, "server disconnect failed", "session", *state.ActiveSessionID, "err", err)
	}

	s.auth.Disconnect()
	s.selection.Clear()
	return nil
}

// Active returns the metadata of the active session. ok is false when no
// session is active or the active id is not in the list.
func (s *sessionService) Active() (models.SessionMeta, bool) {
	state := s.auth.Snapshot()
	if state.ActiveSessionID == nil {
		return models.SessionMeta{}, false
	}
	return state.FindSession(*state.ActiveSessionID)
}

func (s *sessionService) requireActive() error {
	if err := s.requireLogin(); err != nil {
		return err
	}
	if !s.auth.Snapshot().HasActiveSession() {
		return common.ErrNoActiveSession
	}
	return nil
}

// ListTables lists the vector tables of the active session's database.
func (s *sessionService) ListTables(ctx context.Context) ([]models.TableInfo, error) {
	if err := s.requireActive(); err != nil {
		return nil, err
	}
	tables, err := s.client.ListTables(ctx)
	if err != nil {
		return nil, s.check(ctx, "list tables", err)
	}
	return tables, nil
}

// ListCollections lists the collections of the selected table. Collections
// detected by the table listing are used as is; otherwise the table is asked
// for its distinct collection ids.
func (s *sessionService) ListCollections(ctx context.Context) ([]models.Collection, error) {
	if err := s.requireActive(); err != nil {
		return nil, err
	}
	sel := s.selection.Snapshot().SelectedTable
	if sel == nil {
		return nil, common.ErrNoTableSelected
	}

	tables, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	table, ok := findTable(tables, sel.Schema, sel.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrTableNotFound, sel.String())
	}
	if len(table.Collections) > 0 {
		return table.Collections, nil
	}

	list, err := s.client.ListCollections(ctx, table.Ref(), CollectionIDColumn, CollectionNameColumn)
	if err != nil {
		return nil, s.check(ctx, "list collections", err)
	}
	return list, nil
}

// SelectTable selects a table listed by the server. Without a schema the
// name is looked up in "public" first, then in any schema where it is unique.
// Selecting a table clears the selected collection.
func (s *sessionService) SelectTable(ctx context.Context, schema, name string) (models.TableInfo, error) {
	if err := s.requireActive(); err != nil {
		return models.TableInfo{}, err
	}
	schema, name = strings.TrimSpace(schema), strings.TrimSpace(name)
	if name == "" {
		return models.TableInfo{}, common.ErrEmptyName
	}

	tables, err := s.ListTables(ctx)
	if err != nil {
		return models.TableInfo{}, err
	}
	table, err := resolveTable(tables, schema, name)
	if err != nil {
		return models.TableInfo{}, err
	}

	ref := table.Ref()
	s.selection.SelectTable(&ref)
	return table, nil
}

// SelectCollection selects a collection of the selected table by id or name.
// An empty key clears the collection selection without asking the server.
func (s *sessionService) SelectCollection(ctx context.Context, key string) (models.Collection, error) {
	if err := s.requireActive(); err != nil {
		return models.Collection{}, err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		s.selection.SelectCollection(nil)
		return models.Collection{}, nil
	}

	list, err := s.ListCollections(ctx)
	if err != nil {
		return models.Collection{}, err
	}
	c, ok := models.FindCollection(list, key)
	if !ok {
		return models.Collection{}, fmt.Errorf("%w: %s", common.ErrCollectionNotFound, key)
	}
	s.selection.SelectCollection(&c.ID)
	return c, nil
}

func findTable(tables []models.TableInfo, schema, name string) (models.TableInfo, bool) {
	for _, t := range tables {
		if t.Schema == schema && t.Name == name {
			return t, true
		}
	}
	return models.TableInfo{}, false
}

func resolveTable(tables []models.TableInfo, schema, name string) (models.TableInfo, error) {
	if schema != "" {
		if t, ok := findTable(tables, schema, name); ok {
			return t, nil
		}
		return models.TableInfo{}, fmt.Errorf("%w: %s.%s", common.ErrTableNotFound, schema, name)
	}

	if t, ok := findTable(tables, "public", name); ok {
		return t, nil
	}
	var matches []models.TableInfo
	for _, t := range tables {
		if t.Name == name {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return models.TableInfo{}, fmt.Errorf("%w: %s", common.ErrTableNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return models.TableInfo{}, fmt.Errorf("%w: %s", common.ErrAmbiguousTable, name)
	}
}
