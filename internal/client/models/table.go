package models

import "strings"

// VectorColumn is a pgvector column of a browsable table.
type VectorColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Collection groups the rows of a table by a collection id, as LangChain's
// pgvector store does.
type Collection struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DocumentCount int64  `json:"document_count,omitempty"`
	Type          string `json:"type,omitempty"`
}

// TableInfo is one table of the connected database that holds vector columns.
type TableInfo struct {
	Schema        string         `json:"schema"`
	Name          string         `json:"name"`
	VectorColumns []VectorColumn `json:"vector_columns"`
	Collections   []Collection   `json:"collections"`
}

// Ref returns the table's schema-qualified reference.
func (t TableInfo) Ref() TableRef {
	return TableRef{Schema: t.Schema, Name: t.Name}
}

// FindCollection looks a collection up by id first, then by name ignoring case.
func FindCollection(list []Collection, key string) (Collection, bool) {
	for _, c := range list {
		if c.ID == key {
			return c, true
		}
	}
	for _, c := range list {
		if strings.EqualFold(c.Name, key) {
			return c, true
		}
	}
	return Collection{}, false
}
