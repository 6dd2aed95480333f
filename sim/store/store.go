// Package store persists simulation report frames to SQLite so runs can
// be inspected and joined with standard tools afterwards.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/Bogdasayen/prostata-exploration/sim"
	"github.com/Bogdasayen/prostata-exploration/sim/illness"
	"github.com/Bogdasayen/prostata-exploration/sim/prostate"
)

// Store wraps the SQLite handle for one output file.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the output database and initialises the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS person_time (
		state     TEXT NOT NULL,
		ext_grade INTEGER NOT NULL,
		dx        TEXT NOT NULL,
		psa_ge3   INTEGER NOT NULL,
		cohort    REAL NOT NULL,
		age       REAL NOT NULL,
		pt        REAL NOT NULL,
		utility   REAL NOT NULL
	);
	CREATE TABLE IF NOT EXISTS events (
		state     TEXT NOT NULL,
		ext_grade INTEGER NOT NULL,
		dx        TEXT NOT NULL,
		psa_ge3   INTEGER NOT NULL,
		cohort    REAL NOT NULL,
		event     TEXT NOT NULL,
		age       REAL NOT NULL,
		n         INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS prevalence (
		state     TEXT NOT NULL,
		ext_grade INTEGER NOT NULL,
		dx        TEXT NOT NULL,
		psa_ge3   INTEGER NOT NULL,
		cohort    REAL NOT NULL,
		age       REAL NOT NULL,
		n         INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS costs (
		item   TEXT NOT NULL,
		cohort REAL NOT NULL,
		age    REAL NOT NULL,
		cost   REAL NOT NULL
	);
	CREATE TABLE IF NOT EXISTS life_histories (
		id        INTEGER NOT NULL,
		state     TEXT NOT NULL,
		ext_grade INTEGER NOT NULL,
		dx        TEXT NOT NULL,
		event     TEXT NOT NULL,
		begin_age REAL NOT NULL,
		end_age   REAL NOT NULL,
		year      REAL NOT NULL,
		psa       REAL NOT NULL
	);
	CREATE TABLE IF NOT EXISTS columns (
		report TEXT NOT NULL,
		field  TEXT NOT NULL,
		row    INTEGER NOT NULL,
		value  REAL NOT NULL
	);
	CREATE TABLE IF NOT EXISTS illness_person_time (
		state TEXT NOT NULL, age REAL NOT NULL, pt REAL NOT NULL
	);
	CREATE TABLE IF NOT EXISTS illness_events (
		state TEXT NOT NULL, event TEXT NOT NULL, age REAL NOT NULL, n INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS illness_prevalence (
		state TEXT NOT NULL, age REAL NOT NULL, n INTEGER NOT NULL
	);`
	_, err := s.db.Exec(schema)
	return err
}

// WriteCancer inserts a cancer-model result bundle inside one
// transaction.
func (s *Store) WriteCancer(res *prostate.Results) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, row := range res.Summary.PersonTime {
		if _, err := tx.Exec(
			`INSERT INTO person_time (state, ext_grade, dx, psa_ge3, cohort, age, pt, utility) VALUES (?,?,?,?,?,?,?,?)`,
			row.State.State.String(), int(row.State.ExtGrade), row.State.Dx.String(),
			boolToInt(row.State.PSAGe3), row.State.Cohort, row.Age, row.PersonTime, row.Utility,
		); err != nil {
			return err
		}
	}
	for _, row := range res.Summary.Events {
		if _, err := tx.Exec(
			`INSERT INTO events (state, ext_grade, dx, psa_ge3, cohort, event, age, n) VALUES (?,?,?,?,?,?,?,?)`,
			row.State.State.String(), int(row.State.ExtGrade), row.State.Dx.String(),
			boolToInt(row.State.PSAGe3), row.State.Cohort, prostate.EventName(row.Event), row.Age, row.N,
		); err != nil {
			return err
		}
	}
	for _, row := range res.Summary.Prevalence {
		if _, err := tx.Exec(
			`INSERT INTO prevalence (state, ext_grade, dx, psa_ge3, cohort, age, n) VALUES (?,?,?,?,?,?,?)`,
			row.State.State.String(), int(row.State.ExtGrade), row.State.Dx.String(),
			boolToInt(row.State.PSAGe3), row.State.Cohort, row.Age, row.N,
		); err != nil {
			return err
		}
	}
	for _, row := range res.Costs {
		if _, err := tx.Exec(
			`INSERT INTO costs (item, cohort, age, cost) VALUES (?,?,?,?)`,
			row.Key.Item, row.Key.Cohort, row.Age, row.Cost,
		); err != nil {
			return err
		}
	}
	for _, lh := range res.LifeHistories {
		if _, err := tx.Exec(
			`INSERT INTO life_histories (id, state, ext_grade, dx, event, begin_age, end_age, year, psa) VALUES (?,?,?,?,?,?,?,?,?)`,
			lh.ID, lh.State.String(), int(lh.ExtGrade), lh.Dx.String(),
			prostate.EventName(lh.Event), lh.Begin, lh.End, lh.Year, lh.PSA,
		); err != nil {
			return err
		}
	}
	if err := writeColumns(tx, "parameters", res.Parameters); err != nil {
		return err
	}
	if err := writeColumns(tx, "psa_records", res.PSARecords); err != nil {
		return err
	}
	return tx.Commit()
}

// WriteIllness inserts an illness-death report bundle.
func (s *Store) WriteIllness(frames sim.Frames[illness.State, sim.MessageKind]) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, row := range frames.PersonTime {
		if _, err := tx.Exec(
			`INSERT INTO illness_person_time (state, age, pt) VALUES (?,?,?)`,
			row.State.String(), row.Age, row.PersonTime,
		); err != nil {
			return err
		}
	}
	for _, row := range frames.Events {
		if _, err := tx.Exec(
			`INSERT INTO illness_events (state, event, age, n) VALUES (?,?,?,?)`,
			row.State.String(), illness.EventName(row.Event), row.Age, row.N,
		); err != nil {
			return err
		}
	}
	for _, row := range frames.Prevalence {
		if _, err := tx.Exec(
			`INSERT INTO illness_prevalence (state, age, n) VALUES (?,?,?)`,
			row.State.String(), row.Age, row.N,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func writeColumns(tx *sql.Tx, report string, r *sim.SimpleReport) error {
	for _, field := range r.Fields() {
		for i, v := range r.Column(field) {
			if _, err := tx.Exec(
				`INSERT INTO columns (report, field, row, value) VALUES (?,?,?,?)`,
				report, field, i, v,
			); err != nil {
				return err
			}
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
