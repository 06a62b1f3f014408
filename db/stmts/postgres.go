package stmts

import (
	"fmt"

	"github.com/a-h/sqlbridge/db"
)

type Postgres struct {
}

func (ps Postgres) isReturningStatementSet() db.ReturningStatementSet {
	return ps
}

func (ps Postgres) isStatementSet() db.StatementSet {
	return ps
}

func (Postgres) CreateTable(table string) db.Statement {
	return db.NewStatement(fmt.Sprintf(`create table if not exists %s (id bigserial primary key, name text not null unique, score double precision, active boolean, tags text);`, quote(table)))
}

func (Postgres) DropTable(table string) db.Statement {
	return db.NewStatement(fmt.Sprintf(`drop table if exists %s;`, quote(table)))
}

func (Postgres) Insert(table string, name string, score float64, active bool, tags any) db.Statement {
	return db.NewStatement(fmt.Sprintf(`insert into %s (name, score, active, tags) values ($1, $2, $3, $4);`, quote(table)), name, score, active, tags)
}

func (Postgres) InsertReturning(table string, name string, score float64, active bool, tags any) db.Statement {
	return db.NewStatement(fmt.Sprintf(`insert into %s (name, score, active, tags) values ($1, $2, $3, $4) returning name, score;`, quote(table)), name, score, active, tags)
}

func (Postgres) SelectByName(table, name string) db.Statement {
	return db.NewStatement(fmt.Sprintf(`select id, name, score, active, tags from %s where name = $1;`, quote(table)), name)
}

func (Postgres) SelectAll(table string) db.Statement {
	return db.NewStatement(fmt.Sprintf(`select id, name, score, active, tags from %s order by id;`, quote(table)))
}

func (Postgres) Count(table string) db.Statement {
	return db.NewStatement(fmt.Sprintf(`select count(*) from %s;`, quote(table)))
}
