package store

import (
	"context"

	"github.com/dmitrijs2005/dblook/internal/client/models"
	"github.com/dmitrijs2005/dblook/internal/client/storage"
)

// SelectionStorageKey is the fixed storage key of the UI-selection store.
const SelectionStorageKey = "database-storage"

// SelectionStore remembers what the user is looking at inside the connected
// database. It is independent of AuthStore: logging out does not clear it.
type SelectionStore struct {
	p *persisted[models.SelectionState]
}

func NewSelectionStore(s storage.Storage, opts ...Option) *SelectionStore {
	return &SelectionStore{
		p: newPersisted(SelectionStorageKey, s, models.SelectionState{}, models.SelectionState.Clone, opts),
	}
}

func (st *SelectionStore) Snapshot() models.SelectionState {
	return st.p.snapshot()
}

func (st *SelectionStore) SelectCollection(id *string) {
	st.p.update(func(s *models.SelectionState) { s.SelectedCollectionID = cloneStr(id) })
}

// SelectTable switches table. The collection filter belongs to the previous
// table, so it is dropped in the same transition.
func (st *SelectionStore) SelectTable(t *models.TableRef) {
	st.p.update(func(s *models.SelectionState) {
		s.SelectedTable = nil
		if t != nil {
			ref := *t
			s.SelectedTable = &ref
		}
		s.SelectedCollectionID = nil
	})
}

// Clear drops every selection.
func (st *SelectionStore) Clear() {
	st.p.update(func(s *models.SelectionState) { *s = models.SelectionState{} })
}

// Restore bulk-applies a state read back from storage, without writing through.
func (st *SelectionStore) Restore(state models.SelectionState) {
	st.p.restore(state)
}

// Forget deletes the persisted record without touching the in-memory state.
func (st *SelectionStore) Forget(ctx context.Context) error {
	return st.p.forget(ctx)
}

func (st *SelectionStore) Subscribe(fn func(models.SelectionState)) (unsubscribe func()) {
	return st.p.subscribe(fn)
}
