package score

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store keeps finished performances in sqlite.
type Store struct {
	db *sql.DB
}

// Open opens or creates the score database at path and migrates it to the
// latest schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if nil != err {
		return nil, fmt.Errorf("unable to open score db: %w", err)
	}
	if err := migrateUp(db); nil != err {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if nil != err {
		return fmt.Errorf("unable to read migrations: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if nil != err {
		return fmt.Errorf("unable to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if nil != err {
		return fmt.Errorf("unable to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	// m is not closed, that would close db.
	if err := m.Up(); nil != err && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("[migrate] "+format, v...)
}

func (migrateLogger) Verbose() bool { return false }

func (s *Store) Close() error {
	if nil == s.db {
		return nil
	}
	return s.db.Close()
}

// Save stores one performance and returns its id.
func (s *Store) Save(sum string, bpm float64, played time.Time, scorer Scorer) (string, error) {
	data, err := json.Marshal(compactEvents(scorer.Events()))
	if nil != err {
		return "", fmt.Errorf("unable to marshal events: %w", err)
	}
	summary := scorer.Summary()
	id := xid.New().String()
	_, err = s.db.Exec(
		"insert into scores(id, sum, bpm, played, max_combo, mean_ms, stddev_ms, events) values(?, ?, ?, ?, ?, ?, ?, ?)",
		id, sum, bpm, played.UnixNano(), summary.MaxCombo, summary.MeanMs, summary.StdDevMs, data,
	)
	if nil != err {
		return "", fmt.Errorf("unable to save score: %w", err)
	}
	return id, nil
}

// Load returns every stored performance for sum, oldest first.
func (s *Store) Load(sum string) ([]History, error) {
	rows, err := s.db.Query(
		"select id, sum, bpm, played, max_combo, mean_ms, stddev_ms, events from scores where sum = ? order by played",
		sum,
	)
	if nil != err {
		return nil, fmt.Errorf("unable to load scores: %w", err)
	}
	defer rows.Close()

	histories := []History{}
	for rows.Next() {
		var h History
		var played int64
		var data []byte
		if err := rows.Scan(&h.ID, &h.Sum, &h.BPM, &played, &h.MaxCombo, &h.MeanMs, &h.StdDevMs, &data); nil != err {
			return nil, fmt.Errorf("unable to scan score: %w", err)
		}
		var evs []EventsCompact
		if err := json.Unmarshal(data, &evs); nil != err {
			log.Println("unable to unmarshal event history", h.ID, err)
			continue
		}
		h.Played = time.Unix(0, played)
		h.Events = uncompactEvents(evs)
		histories = append(histories, h)
	}
	return histories, rows.Err()
}
