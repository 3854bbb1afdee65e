// Package recordstore persists structured recipe records. Two backends are
// available: a hosted Airtable table and a local sqlite database. Both flatten
// the typed record into displayable text fields and can map rows back.
package recordstore
