package store

import (
	"strconv"
	"strings"
)

// dialect captures the few differences between the supported SQL engines.
type dialect struct {
	name         string
	numbered     bool // $1, $2 placeholders instead of ?
	createTables []string
}

var (
	sqliteDialect = dialect{
		name: "sqlite",
		createTables: []string{
			`CREATE TABLE IF NOT EXISTS runs (
				id TEXT PRIMARY KEY,
				status TEXT NOT NULL,
				message TEXT NOT NULL DEFAULT '',
				started_at INTEGER NOT NULL,
				finished_at INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE TABLE IF NOT EXISTS run_steps (
				run_id TEXT NOT NULL,
				seq INTEGER NOT NULL,
				name TEXT NOT NULL,
				status TEXT NOT NULL,
				attempts INTEGER NOT NULL,
				message TEXT NOT NULL DEFAULT '',
				started_at INTEGER NOT NULL,
				finished_at INTEGER NOT NULL,
				PRIMARY KEY (run_id, seq)
			)`,
		},
	}
	mysqlDialect = dialect{
		name: "mysql",
		createTables: []string{
			`CREATE TABLE IF NOT EXISTS runs (
				id VARCHAR(36) PRIMARY KEY,
				status VARCHAR(16) NOT NULL,
				message TEXT NOT NULL,
				started_at BIGINT NOT NULL,
				finished_at BIGINT NOT NULL DEFAULT 0
			)`,
			`CREATE TABLE IF NOT EXISTS run_steps (
				run_id VARCHAR(36) NOT NULL,
				seq INT NOT NULL,
				name VARCHAR(64) NOT NULL,
				status VARCHAR(16) NOT NULL,
				attempts INT NOT NULL,
				message TEXT NOT NULL,
				started_at BIGINT NOT NULL,
				finished_at BIGINT NOT NULL,
				PRIMARY KEY (run_id, seq)
			)`,
		},
	}
	postgresDialect = dialect{
		name:     "postgres",
		numbered: true,
		createTables: []string{
			`CREATE TABLE IF NOT EXISTS runs (
				id VARCHAR(36) PRIMARY KEY,
				status VARCHAR(16) NOT NULL,
				message TEXT NOT NULL DEFAULT '',
				started_at BIGINT NOT NULL,
				finished_at BIGINT NOT NULL DEFAULT 0
			)`,
			`CREATE TABLE IF NOT EXISTS run_steps (
				run_id VARCHAR(36) NOT NULL,
				seq INT NOT NULL,
				name VARCHAR(64) NOT NULL,
				status VARCHAR(16) NOT NULL,
				attempts INT NOT NULL,
				message TEXT NOT NULL DEFAULT '',
				started_at BIGINT NOT NULL,
				finished_at BIGINT NOT NULL,
				PRIMARY KEY (run_id, seq)
			)`,
		},
	}
)

// rebind rewrites ? placeholders for engines that number them.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
