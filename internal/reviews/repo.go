package reviews

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cinehub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Create(ctx context.Context, userID, audiovisualID string, rating int, text string) (*models.Review, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO reviews (user_id, audiovisual_id, rating, text)
		VALUES (?, ?, ?, ?)
	`, userID, audiovisualID, rating, text)
	if err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, audiovisual_id, rating, text, timestamp
		FROM reviews
		WHERE id = ?
	`, id)

	var review models.Review
	var text sql.NullString
	var ts time.Time
	if err := row.Scan(&review.ID, &review.UserID, &review.AudiovisualID, &review.Rating, &text, &ts); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	review.Text = text.String
	review.Timestamp = ts
	return &review, nil
}

func (r *Repo) ListByAudiovisual(ctx context.Context, audiovisualID string, limit, offset int) ([]models.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, audiovisual_id, rating, text, timestamp
		FROM reviews
		WHERE audiovisual_id = ?
		ORDER BY timestamp DESC
		LIMIT ? OFFSET ?
	`, audiovisualID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	out := make([]models.Review, 0, limit)
	for rows.Next() {
		var review models.Review
		var text sql.NullString
		var ts time.Time

		if err := rows.Scan(&review.ID, &review.UserID, &review.AudiovisualID, &review.Rating, &text, &ts); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}

		review.Text = text.String
		review.Timestamp = ts
		out = append(out, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id int64, userID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM reviews
		WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete review: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

// AverageForAudiovisual computes the aggregate rating of one catalogue
// entry. Returns nil when no reviews exist.
func (r *Repo) AverageForAudiovisual(ctx context.Context, audiovisualID string) (*models.Rating, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT AVG(rating), COUNT(*)
		FROM reviews
		WHERE audiovisual_id = ?
	`, audiovisualID)

	var avg sql.NullFloat64
	var count int
	if err := row.Scan(&avg, &count); err != nil {
		return nil, fmt.Errorf("scan average: %w", err)
	}
	if !avg.Valid || count == 0 {
		return nil, nil
	}
	return &models.Rating{Rating: avg.Float64, Count: count}, nil
}

// AveragesFor computes aggregates for many entries in one query. Entries
// without reviews are absent from the result map.
func (r *Repo) AveragesFor(ctx context.Context, audiovisualIDs []string) (map[string]models.Rating, error) {
	out := make(map[string]models.Rating, len(audiovisualIDs))
	if len(audiovisualIDs) == 0 {
		return out, nil
	}

	placeholders := make([]byte, 0, 2*len(audiovisualIDs))
	args := make([]any, 0, len(audiovisualIDs))
	for i, id := range audiovisualIDs {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args = append(args, id)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT audiovisual_id, AVG(rating), COUNT(*)
		FROM reviews
		WHERE audiovisual_id IN (`+string(placeholders)+`)
		GROUP BY audiovisual_id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("averages query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var avg float64
		var count int
		if err := rows.Scan(&id, &avg, &count); err != nil {
			return nil, fmt.Errorf("scan average row: %w", err)
		}
		out[id] = models.Rating{Rating: avg, Count: count}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
