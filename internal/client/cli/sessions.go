package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/dblook/internal/client/client"
	"github.com/dmitrijs2005/dblook/internal/client/models"
	"github.com/dmitrijs2005/dblook/internal/common"
)

// Sessions lists the user's sessions. When the server is unreachable the
// list restored from local state is shown instead.
func (a *App) Sessions(ctx context.Context) error {
	list, err := a.sessionService.Refresh(ctx)
	if errors.Is(err, client.ErrUnavailable) {
		printlnFn("Server unavailable, showing cached sessions")
		list = a.auth.Snapshot().Sessions
	} else if err != nil {
		return err
	}

	if len(list) == 0 {
		printlnFn("No sessions (use 'newsession <name>')")
		return nil
	}

	active := a.auth.Snapshot().ActiveSessionID
	for _, s := range list {
		printlnFn(formatSession(s, active != nil && *active == s.ID))
	}
	return nil
}

func formatSession(s models.SessionMeta, active bool) string {
	marker := " "
	if active {
		marker = "*"
	}
	line := fmt.Sprintf("%s %s  %s  last used %s", marker, s.ID, s.Name, s.LastUsedAt)
	if s.LastDBName != nil {
		line += "  db " + *s.LastDBName
	}
	if s.LastDBVersion != nil {
		line += " (" + *s.LastDBVersion + ")"
	}
	return line
}

// NewSession creates a session: newsession <name>. The database URL is read
// without echo since it usually carries a password.
func (a *App) NewSession(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: newsession <name>")
		return nil
	}

	dbURL, err := getSecret(a.reader, "Enter database URL: ", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(dbURL)

	id, err := a.sessionService.Create(ctx, strings.Join(args, " "), string(dbURL))
	if err != nil {
		return err
	}
	printlnFn("Session created:", id)
	return nil
}

func (a *App) DeleteSession(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: delsession <id>")
		return nil
	}
	if err := a.sessionService.Delete(ctx, args[0]); err != nil {
		return err
	}
	printlnFn("Session deleted:", args[0])
	return nil
}

func (a *App) Connect(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: connect <id>")
		return nil
	}
	info, err := a.sessionService.Connect(ctx, args[0])
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Connected to %s (%s)", info.Database, info.Version))
	return nil
}

func (a *App) Disconnect(ctx context.Context) error {
	if err := a.sessionService.Disconnect(ctx); err != nil {
		return err
	}
	printlnFn("Disconnected")
	return nil
}

// Tables lists the vector tables of the active session's database.
func (a *App) Tables(ctx context.Context) error {
	tables, err := a.sessionService.ListTables(ctx)
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		printlnFn("No tables with vector columns")
		return nil
	}

	selected := a.selection.Snapshot().SelectedTable
	for _, t := range tables {
		printlnFn(formatTable(t, selected != nil && *selected == t.Ref()))
	}
	return nil
}

func formatTable(t models.TableInfo, selected bool) string {
	marker := " "
	if selected {
		marker = "*"
	}
	cols := make([]string, 0, len(t.VectorColumns))
	for _, c := range t.VectorColumns {
		cols = append(cols, c.Name)
	}
	line := fmt.Sprintf("%s %s  vectors: %s", marker, t.Ref().String(), strings.Join(cols, ", "))
	if len(t.Collections) > 0 {
		line += fmt.Sprintf("  collections: %d", len(t.Collections))
	}
	return line
}

// Collections lists the collections of the selected table.
func (a *App) Collections(ctx context.Context) error {
	list, err := a.sessionService.ListCollections(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		printlnFn("No collections in this table")
		return nil
	}

	selected := a.selection.Snapshot().SelectedCollectionID
	for _, c := range list {
		marker := " "
		if selected != nil && *selected == c.ID {
			marker = "*"
		}
		line := fmt.Sprintf("%s %s  %s", marker, c.ID, c.Name)
		if c.DocumentCount > 0 {
			line += fmt.Sprintf("  (%d documents)", c.DocumentCount)
		}
		printlnFn(line)
	}
	return nil
}

// Table selects a table: table [schema.]name. The table must be listed by
// the server.
func (a *App) Table(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: table [schema.]name")
		return nil
	}
	schema, name, found := strings.Cut(args[0], ".")
	if !found {
		schema, name = "", args[0]
	}
	t, err := a.sessionService.SelectTable(ctx, schema, name)
	if err != nil {
		return err
	}
	printlnFn("Selected table", t.Ref().String())
	return nil
}

// Select selects a collection of the selected table by id or name:
// select <collection>. Without an argument the selection is cleared.
func (a *App) Select(ctx context.Context, args []string) error {
	key := strings.Join(args, " ")
	c, err := a.sessionService.SelectCollection(ctx, key)
	if err != nil {
		return err
	}
	if c.ID == "" {
		printlnFn("Collection selection cleared")
	} else {
		printlnFn(fmt.Sprintf("Selected collection %s (%s)", c.Name, c.ID))
	}
	return nil
}

// Status prints connectivity, the outcome of startup restore and the
// current state.
func (a *App) Status(ctx context.Context) error {
	printlnFn("Mode:", string(a.Mode()))

	if r, ok := a.hydration.Report(); ok {
		printlnFn(fmt.Sprintf("Restored at startup: auth %s, selection %s", r.Auth.Status, r.Selection.Status))
	}

	s := a.auth.Snapshot()
	switch {
	case !s.IsAuthenticated():
		printlnFn("Not logged in")
	case s.User != nil:
		printlnFn("User:", s.User.Username)
	}
	printlnFn("Sessions:", len(s.Sessions))

	if active, ok := a.sessionService.Active(); ok {
		printlnFn("Active session:", active.Name, "("+active.ID+")")
	} else if s.ActiveSessionID != nil {
		printlnFn("Active session:", *s.ActiveSessionID, "(not in session list)")
	}

	sel := a.selection.Snapshot()
	if sel.SelectedTable != nil {
		printlnFn("Table:", sel.SelectedTable.String())
	}
	if sel.SelectedCollectionID != nil {
		printlnFn("Collection:", *sel.SelectedCollectionID)
	}
	return nil
}
