package catalogue

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"cinehub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

type ListQuery struct {
	Q      string // keyword search in title/actors
	Type   string // "movie", "series", ...
	Limit  int
	Offset int
}

const recordColumns = `id, imdb_id, title, year, rated, released, runtime, genre,
	director, writer, actors, plot, language, country, awards, poster,
	ratings, metascore, imdb_rating, imdb_votes, type, dvd, total_seasons,
	box_office, production, website, response`

// Save upserts one decoded record. Entries with a known imdb id conflict on
// it and keep their original row (and therefore their public uuid).
func (r *Repo) Save(ctx context.Context, rec models.AudiovisualRecord) error {
	ratingsJSON, err := json.Marshal(rec.Ratings)
	if err != nil {
		return fmt.Errorf("marshal ratings for %s: %w", rec.ID, err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO audiovisuals (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(imdb_id) DO UPDATE SET
		  title = excluded.title,
		  year = excluded.year,
		  rated = excluded.rated,
		  released = excluded.released,
		  runtime = excluded.runtime,
		  genre = excluded.genre,
		  director = excluded.director,
		  writer = excluded.writer,
		  actors = excluded.actors,
		  plot = excluded.plot,
		  language = excluded.language,
		  country = excluded.country,
		  awards = excluded.awards,
		  poster = excluded.poster,
		  ratings = excluded.ratings,
		  metascore = excluded.metascore,
		  imdb_rating = excluded.imdb_rating,
		  imdb_votes = excluded.imdb_votes,
		  type = excluded.type,
		  dvd = excluded.dvd,
		  total_seasons = excluded.total_seasons,
		  box_office = excluded.box_office,
		  production = excluded.production,
		  website = excluded.website,
		  response = excluded.response
	`,
		rec.ID, nullStr(rec.ImdbID), nullStr(rec.Title), nullStr(rec.Year),
		nullStr(rec.Rated), nullStr(rec.Released), nullStr(rec.Runtime),
		nullStr(rec.Genre), nullStr(rec.Director), nullStr(rec.Writer),
		nullStr(rec.Actors), nullStr(rec.Plot), nullStr(rec.Language),
		nullStr(rec.Country), nullStr(rec.Awards), nullStr(rec.Poster),
		string(ratingsJSON), nullInt(rec.Metascore), nullFloat(rec.ImdbRating),
		nullStr(rec.ImdbVotes), nullStr(rec.Type), nullStr(rec.DVD),
		nullStr(rec.TotalSeasons), nullStr(rec.BoxOffice),
		nullStr(rec.Production), nullStr(rec.Website), rec.Response,
	)
	if err != nil {
		return fmt.Errorf("upsert audiovisual %s: %w", rec.ID, err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.AudiovisualRecord, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM audiovisuals
		WHERE id = ?
	`, id)

	rec, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get audiovisual by id: %w", err)
	}
	return rec, nil
}

func (r *Repo) GetByImdbID(ctx context.Context, imdbID string) (*models.AudiovisualRecord, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM audiovisuals
		WHERE imdb_id = ?
	`, imdbID)

	rec, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get audiovisual by imdb id: %w", err)
	}
	return rec, nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	var total int
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.AudiovisualRecord, error) {
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.AudiovisualRecord, 0, q.Limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM audiovisuals
		WHERE id = ?
	`, id)
	if err != nil {
		return false, fmt.Errorf("delete audiovisual: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	baseSelect := `SELECT ` + recordColumns + ` FROM audiovisuals`
	if countOnly {
		baseSelect = `SELECT COUNT(*) FROM audiovisuals`
	}

	var where []string
	var args []any

	if strings.TrimSpace(q.Q) != "" {
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(actors) LIKE ?)")
		kw := "%" + strings.ToLower(strings.TrimSpace(q.Q)) + "%"
		args = append(args, kw, kw)
	}

	if strings.TrimSpace(q.Type) != "" {
		where = append(where, "LOWER(type) = ?")
		args = append(args, strings.ToLower(strings.TrimSpace(q.Type)))
	}

	sqlStr := baseSelect
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		sqlStr += " ORDER BY created_at DESC, title ASC"
		sqlStr += " LIMIT ? OFFSET ?"
		limit := q.Limit
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		args = append(args, limit, offset)
	}

	return sqlStr, args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*models.AudiovisualRecord, error) {
	var (
		rec          models.AudiovisualRecord
		imdbID       sql.NullString
		title        sql.NullString
		year         sql.NullString
		rated        sql.NullString
		released     sql.NullString
		runtime      sql.NullString
		genre        sql.NullString
		director     sql.NullString
		writer       sql.NullString
		actors       sql.NullString
		plot         sql.NullString
		language     sql.NullString
		country      sql.NullString
		awards       sql.NullString
		poster       sql.NullString
		ratingsJSON  sql.NullString
		metascore    sql.NullInt64
		imdbRating   sql.NullFloat64
		imdbVotes    sql.NullString
		avType       sql.NullString
		dvd          sql.NullString
		totalSeasons sql.NullString
		boxOffice    sql.NullString
		production   sql.NullString
		website      sql.NullString
	)

	if err := row.Scan(
		&rec.ID, &imdbID, &title, &year, &rated, &released, &runtime, &genre,
		&director, &writer, &actors, &plot, &language, &country, &awards,
		&poster, &ratingsJSON, &metascore, &imdbRating, &imdbVotes, &avType,
		&dvd, &totalSeasons, &boxOffice, &production, &website, &rec.Response,
	); err != nil {
		return nil, err
	}

	rec.ImdbID = strPtr(imdbID)
	rec.Title = strPtr(title)
	rec.Year = strPtr(year)
	rec.Rated = strPtr(rated)
	rec.Released = strPtr(released)
	rec.Runtime = strPtr(runtime)
	rec.Genre = strPtr(genre)
	rec.Director = strPtr(director)
	rec.Writer = strPtr(writer)
	rec.Actors = strPtr(actors)
	rec.Plot = strPtr(plot)
	rec.Language = strPtr(language)
	rec.Country = strPtr(country)
	rec.Awards = strPtr(awards)
	rec.Poster = strPtr(poster)
	rec.ImdbVotes = strPtr(imdbVotes)
	rec.Type = strPtr(avType)
	rec.DVD = strPtr(dvd)
	rec.TotalSeasons = strPtr(totalSeasons)
	rec.BoxOffice = strPtr(boxOffice)
	rec.Production = strPtr(production)
	rec.Website = strPtr(website)

	if metascore.Valid {
		v := int(metascore.Int64)
		rec.Metascore = &v
	}
	if imdbRating.Valid {
		v := imdbRating.Float64
		rec.ImdbRating = &v
	}
	if ratingsJSON.Valid && ratingsJSON.String != "" && ratingsJSON.String != "null" {
		if err := json.Unmarshal([]byte(ratingsJSON.String), &rec.Ratings); err != nil {
			return nil, fmt.Errorf("unmarshal stored ratings: %w", err)
		}
	}

	return &rec, nil
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
