/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package store is the engine facade original_source's DatabaseManager
// plays, rebuilt on gorm.io/gorm with the sqlite driver (database/gorm
// provides the Driver/Config plumbing this mirrors, scaled down to the
// single sqlite dialect this daemon needs). All
// mutating and reading calls share one mutex, matching DatabaseManager's
// dbMutex, with SetMaxOpenConns(1) as a second line of defense against the
// driver handing out a second connection under us.
package store

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sabouaram/xmldbserver/internal/xerrors"
)

// identPattern restricts table/column names taken from untrusted XML
// element names to a safe identifier shape before they are spliced into
// SQL text, since gorm has no portable placeholder for identifiers. The
// spliced names are double-quoted, so SQL keywords such as "order" work
// as table or column names.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store is the single-writer facade around the embedded sqlite database.
type Store struct {
	mu sync.Mutex
	db *gorm.DB
}

// Open creates (if absent) and opens the sqlite file at path, pinning the
// connection pool to one connection so a single *sql.DB never hands out a
// second concurrent connection underneath the mutex above it.
func Open(path string) (*Store, xerrors.Error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, xerrors.CodeStoreOpen.Error(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, xerrors.CodeStoreOpen.Error(err)
	}
	sqlDB.SetMaxOpenConns(1)

	return &Store{db: db}, nil
}

// Close releases the underlying sqlite connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func validIdent(name string) bool {
	return identPattern.MatchString(name)
}

// TableExists reports whether name is a known table, mirroring
// DatabaseManager::isExistTable's sqlite_master lookup.
func (s *Store) TableExists(name string) (bool, xerrors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	err := s.db.Raw(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?`, name,
	).Scan(&count).Error
	if err != nil {
		return false, xerrors.CodeStoreQuery.Error(err)
	}
	return count > 0, nil
}

// CreateTable builds the table named name: a main table gets
// `uuid TEXT PRIMARY KEY NOT NULL` plus one TEXT NOT NULL column per
// property; a non-main table gets one
// TEXT NOT NULL column per property plus a nullable uuid with a foreign
// key back to mainTable.
func (s *Store) CreateTable(name string, properties []string, isMainTable bool, mainTable string) xerrors.Error {
	if !validIdent(name) {
		return xerrors.CodeStorePrepare.Errorf("invalid table name %q", name)
	}
	for _, p := range properties {
		if !validIdent(p) {
			return xerrors.CodeStorePrepare.Errorf("invalid column name %q", p)
		}
	}
	if !isMainTable && !validIdent(mainTable) {
		return xerrors.CodeStorePrepare.Errorf("invalid main table name %q", mainTable)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS \"%s\" (", name)

	if isMainTable {
		b.WriteString("uuid TEXT PRIMARY KEY NOT NULL")
		for _, p := range properties {
			fmt.Fprintf(&b, " , \"%s\" TEXT NOT NULL ", p)
		}
		b.WriteString(");")
	} else {
		for _, p := range properties {
			fmt.Fprintf(&b, "\"%s\" TEXT NOT NULL , ", p)
		}
		fmt.Fprintf(&b, "uuid TEXT ,FOREIGN KEY (uuid) REFERENCES \"%s\" (uuid));", mainTable)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Exec(b.String()).Error; err != nil {
		return xerrors.CodeStoreExec.Error(err)
	}
	return nil
}

// Insert writes one row into table, binding uuid as the first positional
// parameter followed by values in the order names lists them, mirroring
// DatabaseManager::insertIntoTable's prepared statement.
func (s *Store) Insert(uuid string, names, values []string, table string) xerrors.Error {
	if !validIdent(table) {
		return xerrors.CodeStorePrepare.Errorf("invalid table name %q", table)
	}
	for _, n := range names {
		if !validIdent(n) {
			return xerrors.CodeStorePrepare.Errorf("invalid column name %q", n)
		}
	}

	var cols strings.Builder
	cols.WriteString("uuid")
	for _, n := range names {
		cols.WriteString(", \"")
		cols.WriteString(n)
		cols.WriteString("\"")
	}

	var placeholders strings.Builder
	placeholders.WriteString("?")
	for range names {
		placeholders.WriteString(",?")
	}

	query := fmt.Sprintf("INSERT INTO \"%s\" (%s) VALUES (%s);", table, cols.String(), placeholders.String())

	args := make([]interface{}, 0, len(values)+1)
	args = append(args, uuid)
	for _, v := range values {
		args = append(args, v)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Exec(query, args...).Error; err != nil {
		return xerrors.CodeStoreExec.Error(err)
	}
	return nil
}

// tableNames lists every table the catalog knows about, mirroring
// DatabaseManager::getAllTableNames. Caller must hold s.mu.
func (s *Store) tableNames() ([]string, error) {
	rows, err := s.db.Raw(`SELECT name FROM sqlite_master WHERE type='table';`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DumpTable renders every row of table as XML, the literal text "NULL"
// standing in for a SQL NULL, matching
// DatabaseManager::fetchTableDataAsXML.
func (s *Store) DumpTable(table string) (string, xerrors.Error) {
	if !validIdent(table) {
		return "", xerrors.CodeStorePrepare.Errorf("invalid table name %q", table)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dumpTableLocked(table)
}

func (s *Store) dumpTableLocked(table string) (string, xerrors.Error) {
	rows, err := s.db.Raw(fmt.Sprintf("SELECT * FROM \"%s\";", table)).Rows()
	if err != nil {
		return "", xerrors.CodeStoreQuery.Error(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return "", xerrors.CodeStoreQuery.Error(err)
	}
	if len(cols) < 1 {
		return fmt.Sprintf("<%s />\n", table), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<%s>\n", table)

	scanDest := make([]interface{}, len(cols))
	scanVals := make([]*string, len(cols))
	for i := range scanVals {
		scanDest[i] = &scanVals[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanDest...); err != nil {
			return "", xerrors.CodeStoreQuery.Error(err)
		}
		for i, col := range cols {
			val := "NULL"
			if scanVals[i] != nil {
				val = *scanVals[i]
			}
			fmt.Fprintf(&b, "    <%s>%s</%s>\n", col, val, col)
		}
	}
	if err := rows.Err(); err != nil {
		return "", xerrors.CodeStoreQuery.Error(err)
	}

	fmt.Fprintf(&b, "</%s>\n", table)
	return b.String(), nil
}

// DumpAll renders every table in the catalog, wrapped in <database>...
// </database>, mirroring DatabaseManager::fetchAllTablesAsXML.
func (s *Store) DumpAll() (string, xerrors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := s.tableNames()
	if err != nil {
		return "", xerrors.CodeStoreQuery.Error(err)
	}

	var b strings.Builder
	b.WriteString("<database>\n")
	for _, name := range names {
		section, xerr := s.dumpTableLocked(name)
		if xerr != nil {
			return "", xerr
		}
		b.WriteString(section)
	}
	b.WriteString("</database>\n")
	return b.String(), nil
}
