package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"webcivil-assist/lib/caserecord"
	configlibsql "webcivil-assist/lib/configutil/libsql"
	"webcivil-assist/lib/timezone"
)

//go:embed schema.sql
var Schema string

var ErrNoSession = errors.New("no session in journal")

// Journal keeps every closed record of a session so the output can be
// rebuilt after a crash.
type Journal struct {
	db *sql.DB
}

// SessionInfo describes a journaled session.
type SessionInfo struct {
	ID        string
	Input     string
	StartedAt time.Time
	Records   int
}

// Open opens the journal at dsn, creating the schema when needed. dsn is a
// file path, ":memory:" or a libsql url.
func Open(ctx context.Context, dsn string) (Journal, error) {
	db, err := configlibsql.Open(dsn)
	if err != nil {
		return Journal{}, fmt.Errorf("journal: open %s: %w", dsn, err)
	}

	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return Journal{}, fmt.Errorf("journal: create schema: %w", err)
	}
	return Journal{db: db}, nil
}

func (j Journal) Close() error {
	return j.db.Close()
}

// BeginSession registers a session reading from input.
func (j Journal) BeginSession(ctx context.Context, id, input string) error {
	_, err := j.db.ExecContext(
		ctx,
		"insert into session(id, input, started_at) values (?, ?, ?)",
		id, input, timezone.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("journal: begin session %s: %w", id, err)
	}
	return nil
}

type storedResult struct {
	Value  string `json:"v"`
	Source string `json:"s"`
}

func encode(rec caserecord.Record) (string, error) {
	fields := map[string]storedResult{}
	for _, f := range caserecord.Fields() {
		res := rec.Result(f)
		if !res.Present() {
			continue
		}
		fields[f.String()] = storedResult{Value: res.Value, Source: res.Source.String()}
	}
	out, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func decode(fields string) (caserecord.Record, error) {
	var stored map[string]storedResult
	if err := json.Unmarshal([]byte(fields), &stored); err != nil {
		return caserecord.Record{}, err
	}
	var rec caserecord.Record
	for name, res := range stored {
		f, ok := caserecord.ParseField(name)
		if !ok {
			continue
		}
		rec.Fill(f, res.Value, caserecord.ParseSource(res.Source))
	}
	return rec, nil
}

// Append stores the record at position seq of the session. Appending the
// same position twice keeps the latest record.
func (j Journal) Append(ctx context.Context, sessionID string, seq int, rec caserecord.Record) error {
	fields, err := encode(rec)
	if err != nil {
		return err
	}
	_, err = j.db.ExecContext(
		ctx,
		`insert into record(session_id, seq, index_number, fields) values (?, ?, ?, ?)
		on conflict(session_id, seq) do update set index_number = excluded.index_number, fields = excluded.fields`,
		sessionID, seq, rec.Value(caserecord.IndexNumber), fields,
	)
	if err != nil {
		return fmt.Errorf("journal: append %s#%d: %w", sessionID, seq, err)
	}
	return nil
}

// Records returns the records of a session in the order they were appended.
func (j Journal) Records(ctx context.Context, sessionID string) ([]caserecord.Record, error) {
	rows, err := j.db.QueryContext(
		ctx,
		"select seq, fields from record where session_id = ? order by seq",
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []caserecord.Record
	for rows.Next() {
		var (
			seq    int
			fields string
		)
		if err := rows.Scan(&seq, &fields); err != nil {
			return nil, err
		}
		rec, err := decode(fields)
		if err != nil {
			slog.WarnContext(ctx, "failed to decode journaled record", "session", sessionID, "seq", seq, "err", err)
			continue
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// LatestSession returns the most recently started session.
func (j Journal) LatestSession(ctx context.Context) (SessionInfo, error) {
	row := j.db.QueryRowContext(
		ctx,
		`select s.id, s.input, s.started_at, (select count(*) from record r where r.session_id = s.id)
		from session s
		order by s.started_at desc, s.rowid desc
		limit 1`,
	)

	var (
		info      SessionInfo
		startedAt int64
	)
	err := row.Scan(&info.ID, &info.Input, &startedAt, &info.Records)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionInfo{}, ErrNoSession
	}
	if err != nil {
		return SessionInfo{}, err
	}
	info.StartedAt = time.UnixMilli(startedAt).In(timezone.Location)
	return info, nil
}
