package service

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// IDList is a list of record ids decoded leniently: elements may be numbers or
// numeric strings, anything else is dropped the same way unknown ids are.
type IDList []uint

func (l *IDList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ids := make(IDList, 0, len(raw))
	for _, r := range raw {
		if id, ok := parseRawID(r); ok {
			ids = append(ids, id)
		}
	}
	*l = ids
	return nil
}

func parseRawID(r json.RawMessage) (uint, bool) {
	var n uint64
	if err := json.Unmarshal(r, &n); err == nil {
		return uint(n), n > 0
	}
	var s string
	if err := json.Unmarshal(r, &s); err == nil {
		return parseID(s)
	}
	return 0, false
}

func parseID(s string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// ParseIDs converts form values to ids, dropping anything that is not a positive integer.
func ParseIDs(values []string) IDList {
	ids := make(IDList, 0, len(values))
	for _, v := range values {
		if id, ok := parseID(v); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Field is a JSON field that remembers whether its key was present.
// An explicit null counts as present with the zero value.
type Field[T any] struct {
	Value T
	Set   bool
}

// Some returns a present field holding v.
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.Value = zero
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

// CreateFolderRequest is the body accepted when creating a folder.
type CreateFolderRequest struct {
	Name string `json:"name" validate:"required,max=100" example:"Icebreakers"`
}

// CreateGameRequest is the body accepted when creating a game.
type CreateGameRequest struct {
	Name            string `json:"name" validate:"required,max=200" example:"Two Truths and a Lie"`
	Description     string `json:"description"`
	Materials       string `json:"materials"`
	NumberOfPlayers string `json:"number_of_players" validate:"required,max=50" example:"5-10 players"`
	Time            string `json:"time" validate:"required,max=50" example:"15 minutes"`
	VideoLink       string `json:"video_link" validate:"max=200"`
	FolderIDs       IDList `json:"folder_ids" swaggertype:"array,integer"`
}

func (r *CreateGameRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Materials = strings.TrimSpace(r.Materials)
	r.NumberOfPlayers = strings.TrimSpace(r.NumberOfPlayers)
	r.Time = strings.TrimSpace(r.Time)
	r.VideoLink = strings.TrimSpace(r.VideoLink)
}

// UpdateGameRequest is a partial update. Only keys present in the body are applied.
type UpdateGameRequest struct {
	Name            Field[string] `json:"name" swaggertype:"string"`
	Description     Field[string] `json:"description" swaggertype:"string"`
	Materials       Field[string] `json:"materials" swaggertype:"string"`
	NumberOfPlayers Field[string] `json:"number_of_players" swaggertype:"string"`
	Time            Field[string] `json:"time" swaggertype:"string"`
	VideoLink       Field[string] `json:"video_link" swaggertype:"string"`
	FolderIDs       Field[IDList] `json:"folder_ids" swaggertype:"array,integer"`
}
