package stmts

import (
	"fmt"

	"github.com/a-h/sqlbridge/db"
)

type SQLite struct {
}

func (ss SQLite) isReturningStatementSet() db.ReturningStatementSet {
	return ss
}

func (ss SQLite) isStatementSet() db.StatementSet {
	return ss
}

func (SQLite) CreateTable(table string) db.Statement {
	return db.NewStatement(fmt.Sprintf(`create table if not exists %s (id integer primary key, name text not null unique, score real, active boolean, tags text);`, quote(table)))
}

func (SQLite) DropTable(table string) db.Statement {
	return db.NewStatement(fmt.Sprintf(`drop table if exists %s;`, quote(table)))
}

func (SQLite) Insert(table string, name string, score float64, active bool, tags any) db.Statement {
	return db.NewStatement(fmt.Sprintf(`insert into %s (name, score, active, tags) values (?, ?, ?, ?);`, quote(table)), name, score, active, tags)
}

func (SQLite) InsertReturning(table string, name string, score float64, active bool, tags any) db.Statement {
	return db.NewStatement(fmt.Sprintf(`insert into %s (name, score, active, tags) values (?, ?, ?, ?) returning name, score;`, quote(table)), name, score, active, tags)
}

func (SQLite) SelectByName(table, name string) db.Statement {
	return db.NewStatement(fmt.Sprintf(`select id, name, score, active, tags from %s where name = ?;`, quote(table)), name)
}

func (SQLite) SelectAll(table string) db.Statement {
	return db.NewStatement(fmt.Sprintf(`select id, name, score, active, tags from %s order by id;`, quote(table)))
}

func (SQLite) Count(table string) db.Statement {
	return db.NewStatement(fmt.Sprintf(`select count(*) from %s;`, quote(table)))
}
