package stmts

import (
	"fmt"
	"strings"

	"github.com/a-h/sqlbridge/db"
)

type MySQL struct {
}

func (ms MySQL) isStatementSet() db.StatementSet {
	return ms
}

func (MySQL) CreateTable(table string) db.Statement {
	return db.NewStatement(fmt.Sprintf("create table if not exists %s (id bigint auto_increment primary key, name varchar(255) not null unique, score double, active boolean, tags text);", backtick(table)))
}

func (MySQL) DropTable(table string) db.Statement {
	return db.NewStatement(fmt.Sprintf("drop table if exists %s;", backtick(table)))
}

func (MySQL) Insert(table string, name string, score float64, active bool, tags any) db.Statement {
	return db.NewStatement(fmt.Sprintf("insert into %s (name, score, active, tags) values (?, ?, ?, ?);", backtick(table)), name, score, active, tags)
}

func (MySQL) SelectByName(table, name string) db.Statement {
	return db.NewStatement(fmt.Sprintf("select id, name, score, active, tags from %s where name = ?;", backtick(table)), name)
}

func (MySQL) SelectAll(table string) db.Statement {
	return db.NewStatement(fmt.Sprintf("select id, name, score, active, tags from %s order by id;", backtick(table)))
}

func (MySQL) Count(table string) db.Statement {
	return db.NewStatement(fmt.Sprintf("select count(*) from %s;", backtick(table)))
}

func backtick(identifier string) string {
	return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
}
