package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/soaringjerry/Informa/internal/config"
	"github.com/soaringjerry/Informa/internal/logger"
	"github.com/soaringjerry/Informa/internal/models"
	"github.com/soaringjerry/Informa/internal/services"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"

	memoryPath = ":memory:"
)

var (
	_ services.SurveyStore = (*Store)(nil)
	_ services.ExportStore = (*Store)(nil)
)

// Store persists submissions in SQLite or Postgres through one pooled sqlx.DB.
type Store struct {
	db     *sqlx.DB
	driver string
	log    *logger.Logger
}

// NormalizeDriver maps accepted driver spellings to a registered driver name.
func NormalizeDriver(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "pgx", "postgres", "postgresql":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", name)
	}
}

// SQLiteDSN builds a go-sqlite3 DSN with foreign keys enforced.
func SQLiteDSN(path string) string {
	if path == memoryPath {
		return "file::memory:?_foreign_keys=on"
	}
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", path)
}

// Open connects, pings and migrates the configured database.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}
	driver, err := NormalizeDriver(cfg.DBDriver)
	if err != nil {
		return nil, err
	}
	dsn, dialect := cfg.DBDSN, "postgres"
	if driver == DriverSQLite {
		dialect = "sqlite"
		path := strings.TrimSpace(cfg.SQLitePath)
		if path == "" {
			return nil, errors.New("sqlite path required")
		}
		if path != memoryPath {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		dsn = SQLiteDSN(path)
	} else if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("INFORMA_DB_DSN or DATABASE_URL required for postgres")
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite && cfg.SQLitePath == memoryPath {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
		db.SetMaxIdleConns(cfg.DBMaxOpenConns)
		db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if err := RunMigrations(ctx, db, dialect, cfg.MigrationsDir); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("database ready", "driver", driver, "target", redactDSN(dsn))
	return &Store{db: db, driver: driver, log: log}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Driver() string { return s.driver }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type submissionRow struct {
	ID        int64          `db:"id"`
	SurveyID  string         `db:"survey_id"`
	Name      string         `db:"name"`
	Team      string         `db:"team"`
	Timestamp time.Time      `db:"timestamp"`
	ExtraNeed sql.NullString `db:"extra_need"`
}

func (r submissionRow) model() models.Submission {
	return models.Submission{
		ID:        r.ID,
		SurveyID:  r.SurveyID,
		Name:      r.Name,
		Team:      r.Team,
		Timestamp: r.Timestamp.UTC(),
		ExtraNeed: r.ExtraNeed.String,
		Responses: []models.Response{},
	}
}

type responseRow struct {
	ID              int64          `db:"id"`
	SurveyID        string         `db:"survey_id"`
	ReportName      string         `db:"report_name"`
	PageName        string         `db:"page_name"`
	FulfillsPurpose string         `db:"fulfills_purpose"`
	Purpose         sql.NullString `db:"purpose"`
}

func (r responseRow) model() models.Response {
	return models.Response{
		ID:              r.ID,
		SurveyID:        r.SurveyID,
		ReportName:      r.ReportName,
		PageName:        r.PageName,
		FulfillsPurpose: models.FulfillsPurpose(r.FulfillsPurpose),
		Purpose:         r.Purpose.String,
	}
}

type flatRow struct {
	SurveyID        string         `db:"survey_id"`
	Name            string         `db:"name"`
	Team            string         `db:"team"`
	Timestamp       time.Time      `db:"timestamp"`
	ReportName      string         `db:"report_name"`
	PageName        string         `db:"page_name"`
	FulfillsPurpose string         `db:"fulfills_purpose"`
	Purpose         sql.NullString `db:"purpose"`
}

// CreateSubmission inserts the submission and its responses in one
// transaction; on failure nothing is left behind.
func (s *Store) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var id int64
		q := tx.Rebind(`INSERT INTO survey_results (survey_id, name, team, timestamp, extra_need)
			VALUES (?, ?, ?, ?, ?) RETURNING id`)
		if err := tx.QueryRowxContext(ctx, q, sub.SurveyID, sub.Name, sub.Team, sub.Timestamp.UTC(), nullIfEmpty(sub.ExtraNeed)).Scan(&id); err != nil {
			return fmt.Errorf("insert survey_results: %w", err)
		}
		sub.ID = id
		ins := tx.Rebind(`INSERT INTO survey_responses (survey_id, report_name, page_name, fulfills_purpose, purpose)
			VALUES (?, ?, ?, ?, ?) RETURNING id`)
		for i := range sub.Responses {
			r := &sub.Responses[i]
			if err := tx.QueryRowxContext(ctx, ins, sub.SurveyID, r.ReportName, r.PageName, string(r.FulfillsPurpose), nullIfEmpty(r.Purpose)).Scan(&r.ID); err != nil {
				return fmt.Errorf("insert survey_responses %s/%s: %w", r.ReportName, r.PageName, err)
			}
			r.SurveyID = sub.SurveyID
		}
		return nil
	})
}

// ListSubmissions returns all submissions newest first, each with its
// responses in insertion order.
func (s *Store) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	var rows []submissionRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, survey_id, name, team, timestamp, extra_need
		FROM survey_results ORDER BY timestamp DESC, id DESC`); err != nil {
		return nil, fmt.Errorf("select survey_results: %w", err)
	}
	var resp []responseRow
	if err := s.db.SelectContext(ctx, &resp, `SELECT id, survey_id, report_name, page_name, fulfills_purpose, purpose
		FROM survey_responses ORDER BY id`); err != nil {
		return nil, fmt.Errorf("select survey_responses: %w", err)
	}
	bySurvey := make(map[string][]models.Response, len(rows))
	for _, r := range resp {
		bySurvey[r.SurveyID] = append(bySurvey[r.SurveyID], r.model())
	}
	out := make([]models.Submission, 0, len(rows))
	for _, row := range rows {
		sub := row.model()
		if rs, ok := bySurvey[row.SurveyID]; ok {
			sub.Responses = rs
		}
		out = append(out, sub)
	}
	return out, nil
}

func (s *Store) GetSubmission(ctx context.Context, surveyID string) (*models.Submission, error) {
	var row submissionRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT id, survey_id, name, team, timestamp, extra_need
		FROM survey_results WHERE survey_id = ?`), surveyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select survey_results: %w", err)
	}
	var resp []responseRow
	if err := s.db.SelectContext(ctx, &resp, s.db.Rebind(`SELECT id, survey_id, report_name, page_name, fulfills_purpose, purpose
		FROM survey_responses WHERE survey_id = ? ORDER BY id`), surveyID); err != nil {
		return nil, fmt.Errorf("select survey_responses: %w", err)
	}
	sub := row.model()
	for _, r := range resp {
		sub.Responses = append(sub.Responses, r.model())
	}
	return &sub, nil
}

// DeleteSubmission removes the submission; responses go with it through the
// foreign key cascade.
func (s *Store) DeleteSubmission(ctx context.Context, surveyID string) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM survey_results WHERE survey_id = ?`), surveyID); err != nil {
		return fmt.Errorf("delete survey_results: %w", err)
	}
	return nil
}

func (s *Store) ListFlatResponses(ctx context.Context) ([]models.FlatResponse, error) {
	var rows []flatRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT sr.survey_id, sr.name, sr.team, sr.timestamp,
			resp.report_name, resp.page_name, resp.fulfills_purpose, resp.purpose
		FROM survey_results sr
		JOIN survey_responses resp ON resp.survey_id = sr.survey_id
		ORDER BY sr.timestamp DESC, sr.id DESC, resp.id`); err != nil {
		return nil, fmt.Errorf("select flat responses: %w", err)
	}
	out := make([]models.FlatResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.FlatResponse{
			SurveyID:        r.SurveyID,
			Name:            r.Name,
			Team:            r.Team,
			Timestamp:       r.Timestamp.UTC(),
			ReportName:      r.ReportName,
			PageName:        r.PageName,
			FulfillsPurpose: models.FulfillsPurpose(r.FulfillsPurpose),
			Purpose:         r.Purpose.String,
		})
	}
	return out, nil
}

func (s *Store) ListExtraNeeds(ctx context.Context) ([]models.Submission, error) {
	var rows []submissionRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, survey_id, name, team, timestamp, extra_need
		FROM survey_results
		WHERE extra_need IS NOT NULL AND TRIM(extra_need) <> ''
		ORDER BY timestamp DESC, id DESC`); err != nil {
		return nil, fmt.Errorf("select extra needs: %w", err)
	}
	out := make([]models.Submission, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *Store) Stats(ctx context.Context) (*models.Stats, error) {
	st := &models.Stats{Teams: []string{}}
	if err := s.db.GetContext(ctx, &st.TotalSurveys, `SELECT COUNT(*) FROM survey_results`); err != nil {
		return nil, fmt.Errorf("count survey_results: %w", err)
	}
	if err := s.db.GetContext(ctx, &st.TotalResponses, `SELECT COUNT(*) FROM survey_responses`); err != nil {
		return nil, fmt.Errorf("count survey_responses: %w", err)
	}
	if err := s.db.SelectContext(ctx, &st.Teams, `SELECT DISTINCT team FROM survey_results ORDER BY team`); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}
	var counts []struct {
		FulfillsPurpose string `db:"fulfills_purpose"`
		N               int    `db:"n"`
	}
	if err := s.db.SelectContext(ctx, &counts, `SELECT fulfills_purpose, COUNT(*) AS n
		FROM survey_responses GROUP BY fulfills_purpose`); err != nil {
		return nil, fmt.Errorf("count verdicts: %w", err)
	}
	for _, c := range counts {
		switch models.FulfillsPurpose(c.FulfillsPurpose) {
		case models.FulfillsYes:
			st.FulfillsPurposeStats.Si = c.N
		case models.FulfillsNo:
			st.FulfillsPurposeStats.No = c.N
		}
	}
	return st, nil
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// redactDSN hides the password of URL-style DSNs. Key/value DSNs are not
// logged at all.
func redactDSN(dsn string) string {
	if strings.HasPrefix(dsn, "file:") {
		return dsn
	}
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return "[redacted]"
	}
	return u.Redacted()
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
