/*
 * EM2200 - Resolution trace database
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
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

package trace

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fatih/structs"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

const tableName = "resolution"

// One traced operation.
type Entry struct {
	Sequence  int64  // Order recorded.
	Processor int    // Processor that did the operation.
	Operation string // LBU, LBE, CALL, TVA or RESOLVE.
	Address   string // Virtual address given.
	Target    string // Virtual address of final bank.
	Status    string // Status bits.
	Real      string // Absolute address when formed.
	Fault     string // Fatal condition.
}

// Trace store, entries are batched and written in one transaction.
type Store struct {
	mu        sync.Mutex
	db        *sql.DB
	fileName  string
	entries   []Entry
	sequence  int64
	batchSize int
	enabled   map[string]bool
}

var (
	storeMu  sync.Mutex
	current  *Store
	exitOnce sync.Once
)

// Create a trace database. If name is empty one is generated in dir.
func Create(dir, name string) (*Store, error) {
	if name == "" {
		name = "em2200_trace_" + xid.New().String()
	}
	fileName := filepath.Join(dir, name+".sqlite3")
	if _, err := os.Stat(fileName); err == nil {
		return nil, fmt.Errorf("trace file %s already exists", fileName)
	}

	db, err := sql.Open("sqlite3", fileName)
	if err != nil {
		return nil, err
	}
	s := &Store{
		db:        db,
		fileName:  fileName,
		batchSize: 1000,
		enabled:   map[string]bool{},
	}
	columns := strings.Join(structs.Names(Entry{}), ", \n\t")
	if _, err := db.Exec("CREATE TABLE " + tableName + " (\n\t" + columns + "\n);"); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Open existing trace database for reading.
func Open(fileName string) (*Store, error) {
	if _, err := os.Stat(fileName); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", fileName)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, fileName: fileName, enabled: map[string]bool{}}, nil
}

// File holding the trace.
func (s *Store) FileName() string {
	return s.fileName
}

// Enable tracing of an operation, ALL enables every operation.
func (s *Store) Enable(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled[strings.ToUpper(op)] = true
}

func (s *Store) traced(op string) bool {
	return s.enabled["ALL"] || s.enabled[op]
}

// Add entry, flushing when the batch is full.
func (s *Store) Record(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.traced(entry.Operation) {
		return nil
	}
	s.sequence++
	entry.Sequence = s.sequence
	s.entries = append(s.entries, entry)
	if len(s.entries) >= s.batchSize {
		return s.flush()
	}
	return nil
}

// Write buffered entries.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flush()
}

func (s *Store) flush() error {
	if len(s.entries) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	names := structs.Names(Entry{})
	holders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	stmt, err := tx.Prepare("INSERT INTO " + tableName + " VALUES (" + holders + ")")
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, entry := range s.entries {
		if _, err := stmt.Exec(structs.Values(entry)...); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	s.entries = nil
	return tx.Commit()
}

// Read up to limit entries in order, limit <= 0 reads all. Operation
// filters by operation when not empty.
func (s *Store) Entries(operation string, limit int) ([]Entry, error) {
	if err := s.Flush(); err != nil {
		return nil, err
	}
	query := "SELECT " + strings.Join(structs.Names(Entry{}), ", ") + " FROM " + tableName
	args := []any{}
	if operation != "" {
		query += " WHERE Operation = ?"
		args = append(args, strings.ToUpper(operation))
	}
	query += " ORDER BY Sequence"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Entry{}
	for rows.Next() {
		var e Entry
		err := rows.Scan(&e.Sequence, &e.Processor, &e.Operation, &e.Address,
			&e.Target, &e.Status, &e.Real, &e.Fault)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// Count of entries by operation and status.
type Count struct {
	Operation string
	Status    string
	Count     int
}

// Summarize entries. Faults are counted under their fault text.
func (s *Store) Summary() ([]Count, error) {
	if err := s.Flush(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT Operation,
		CASE WHEN Fault != '' THEN Fault ELSE Status END AS Result, COUNT(*)
		FROM ` + tableName + ` GROUP BY Operation, Result ORDER BY Operation, Result`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Count{}
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Operation, &c.Status, &c.Count); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// Flush and close.
func (s *Store) Close() error {
	err := s.Flush()
	if cerr := s.db.Close(); err == nil {
		err = cerr
	}
	return err
}

// Make store the one Record writes to. The current store is closed on exit.
func Start(s *Store) {
	storeMu.Lock()
	defer storeMu.Unlock()
	current = s
	exitOnce.Do(func() { atexit.Register(closeCurrent) })
}

func detach() *Store {
	storeMu.Lock()
	defer storeMu.Unlock()
	s := current
	current = nil
	return s
}

// Stop recording, closing the current store.
func Stop() error {
	s := detach()
	if s == nil {
		return errors.New("trace not started")
	}
	return s.Close()
}

// Exit hook, a store already stopped is not closed again.
func closeCurrent() {
	if s := detach(); s != nil {
		_ = s.Close()
	}
}

// Record entry in the current store, if any.
func Record(entry Entry) {
	storeMu.Lock()
	s := current
	storeMu.Unlock()
	if s == nil {
		return
	}
	_ = s.Record(entry)
}

// Current store, nil if not tracing.
func Current() *Store {
	storeMu.Lock()
	defer storeMu.Unlock()
	return current
}
