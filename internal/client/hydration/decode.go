package hydration

import (
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/dblook/internal/client/models"
)

var (
	errNoState = errors.New("record has no state object")
	errNoToken = errors.New("record has no token")
)

// authRecord mirrors the persisted auth envelope. State is a pointer so a
// record without a state object is rejected rather than read as defaults.
type authRecord struct {
	State *struct {
		Token           *string              `json:"token"`
		User            *models.User         `json:"user"`
		Sessions        []models.SessionMeta `json:"sessions"`
		ActiveSessionID *string              `json:"activeSessionId"`
	} `json:"state"`
}

// decodeAuth extracts the restorable auth fields. It returns errNoToken when
// the record is well formed but carries no usable token.
func decodeAuth(raw []byte) (models.AuthState, error) {
	var rec authRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return models.AuthState{}, err
	}
	if rec.State == nil {
		return models.AuthState{}, errNoState
	}
	if rec.State.Token == nil || *rec.State.Token == "" {
		return models.AuthState{}, errNoToken
	}

	sessions := rec.State.Sessions
	if sessions == nil {
		sessions = []models.SessionMeta{}
	}
	return models.AuthState{
		Token:           rec.State.Token,
		User:            rec.State.User,
		Sessions:        sessions,
		ActiveSessionID: rec.State.ActiveSessionID,
	}, nil
}

type selectionRecord struct {
	State *models.SelectionState `json:"state"`
}

func decodeSelection(raw []byte) (models.SelectionState, error) {
	var rec selectionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return models.SelectionState{}, err
	}
	if rec.State == nil {
		return models.SelectionState{}, errNoState
	}
	return *rec.State, nil
}
