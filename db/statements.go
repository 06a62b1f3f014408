package db

// StatementSet provides dialect specific statements over a demo table with
// the columns id, name (unique), score, active and tags.
type StatementSet interface {
	CreateTable(table string) Statement
	DropTable(table string) Statement
	Insert(table string, name string, score float64, active bool, tags any) Statement
	SelectByName(table, name string) Statement
	SelectAll(table string) Statement
	Count(table string) Statement
}

// ReturningStatementSet is implemented by dialects that support
// insert ... returning.
type ReturningStatementSet interface {
	// InsertReturning inserts a row, and returns its name and score.
	InsertReturning(table string, name string, score float64, active bool, tags any) Statement
}
