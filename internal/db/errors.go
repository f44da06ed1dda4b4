package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	ErrKeyExists   = errors.New("db: key already exists")
)

// Op constants name the table operation for error context.
const (
	OpPing             = "PING"
	OpInsertDocument   = "INSERT documents"
	OpGetDocuments     = "SELECT documents"
	OpCountDocuments   = "COUNT documents"
	OpCountPostings    = "COUNT inverted_index"
	OpPostingsForTerms = "SELECT inverted_index"
	OpWriteIndex       = "INSERT inverted_index+document_embeddings"
	OpListEmbeddings   = "SELECT document_embeddings"
	OpGet              = "GET"
	OpSet              = "SET"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
