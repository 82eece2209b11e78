package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VectorResult struct {
	ProductID string
	ASIN      string
	URL       string
	Title     string
	Brand     string
	ImageURL  string
	Content   string
	Score     float64
}

// VectorRepository stores chunk embeddings in product_vectors (pgvector).
type VectorRepository struct {
	DB *pgxpool.Pool
}

func (r *VectorRepository) Save(ctx context.Context, p StoredProduct, content string, embedding []float32) error {
	// Postgres rejects invalid UTF-8 in text columns.
	validContent := strings.ToValidUTF8(content, "")

	_, err := r.DB.Exec(ctx, `
		INSERT INTO product_vectors
		(id, product_id, asin, url, title, brand, image_url, content, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, uuid.New(), p.ID, p.ASIN, p.URL, p.Title, p.Brand, p.Image, validContent, vectorLiteral(embedding))

	return err
}

// SearchSimilar returns chunks by cosine similarity above minScore. brand,
// when set, restricts results with ILIKE.
func (r *VectorRepository) SearchSimilar(ctx context.Context, embedding []float32, minScore float64, limit int, brand string) ([]VectorResult, error) {
	query, params := similarQuery(embedding, minScore, limit, brand)

	rows, err := r.DB.Query(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []VectorResult
	for rows.Next() {
		var v VectorResult
		if err := rows.Scan(&v.ProductID, &v.ASIN, &v.URL, &v.Title, &v.Brand, &v.ImageURL, &v.Content, &v.Score); err != nil {
			return nil, err
		}
		results = append(results, v)
	}
	return results, rows.Err()
}

func similarQuery(embedding []float32, minScore float64, limit int, brand string) (string, []any) {
	params := []any{vectorLiteral(embedding), minScore, limit}
	where := "1 - (embedding <=> $1) > $2"
	if brand != "" {
		where += " AND brand ILIKE $4"
		params = append(params, "%"+brand+"%")
	}

	query := `
		SELECT product_id, asin, url, title, brand, image_url, content, 1 - (embedding <=> $1) AS score
		FROM product_vectors
		WHERE ` + where + `
		ORDER BY score DESC
		LIMIT $3`
	return query, params
}

// vectorLiteral formats an embedding as "[v1,v2,...]" for pgvector.
func vectorLiteral(embedding []float32) string {
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
