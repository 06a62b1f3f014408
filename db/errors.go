package db

import (
	"errors"
	"fmt"
)

var (
	ErrStoreNotInitialized = errors.New("store not initialized")
	ErrAlreadyInitialized  = errors.New("store already initialized")
)

// StatementError is returned when the store fails to prepare or run a
// statement. Index is the position of the failing statement within a batch,
// and is 0 for single statements.
type StatementError struct {
	Index int
	Err   error
}

func NewStatementError(index int, err error) *StatementError {
	return &StatementError{Index: index, Err: err}
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement %d: %v", e.Index, e.Err)
}

func (e *StatementError) Unwrap() error { return e.Err }

// TransactionError is returned when a batch transaction can't begin or commit.
type TransactionError struct {
	Op  string
	Err error
}

func NewTransactionError(op string, err error) *TransactionError {
	return &TransactionError{Op: op, Err: err}
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

const (
	CodeStoreNotInitialized = "store_not_initialized"
	CodeStatement           = "statement"
	CodeTransaction         = "transaction"
	CodeInternal            = "internal"
)

// Code returns a stable code describing the kind of error.
func Code(err error) string {
	var se *StatementError
	var te *TransactionError
	switch {
	case errors.Is(err, ErrStoreNotInitialized):
		return CodeStoreNotInitialized
	case errors.As(err, &te):
		return CodeTransaction
	case errors.As(err, &se):
		return CodeStatement
	}
	return CodeInternal
}
