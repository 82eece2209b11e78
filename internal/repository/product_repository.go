package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"catalogstudio/internal/model"
)

// StoredProduct is a scraped product row awaiting or past embedding.
type StoredProduct struct {
	ID      string
	ASIN    string
	URL     string
	Title   string
	Brand   string
	Image   string
	Content string
}

// ProductRepository keeps scraped products in scraped_products, keyed by
// source URL. sync_status 'S' marks rows that still need embedding.
type ProductRepository struct {
	DB *sql.DB
}

func (r *ProductRepository) Save(ctx context.Context, p model.ScrapedProduct, content string) error {
	raw, err := json.Marshal(p.RawData)
	if err != nil {
		return fmt.Errorf("encode raw data: %w", err)
	}

	var exists bool
	err = r.DB.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM scraped_products WHERE url = $1)", p.URL).Scan(&exists)
	if err != nil {
		return err
	}

	if exists {
		_, err = r.DB.ExecContext(ctx, `
			UPDATE scraped_products
			SET asin = $1, title = $2, brand = $3, image_url = $4, raw_data = $5, content = $6, sync_status = 'S'
			WHERE url = $7
		`, p.ASIN, p.Title, p.Brand, firstImage(p), string(raw), content, p.URL)
	} else {
		_, err = r.DB.ExecContext(ctx, `
			INSERT INTO scraped_products
			(id, asin, url, title, brand, image_url, raw_data, content, sync_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'S')
		`, uuid.New().String(), p.ASIN, p.URL, p.Title, p.Brand, firstImage(p), string(raw), content)
	}

	return err
}

func (r *ProductRepository) ListPending(ctx context.Context) ([]StoredProduct, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, asin, url, title, brand, image_url, content
		FROM scraped_products
		WHERE sync_status = 'S'
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []StoredProduct
	for rows.Next() {
		var p StoredProduct
		if err := rows.Scan(&p.ID, &p.ASIN, &p.URL, &p.Title, &p.Brand, &p.Image, &p.Content); err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	return list, rows.Err()
}

func (r *ProductRepository) MarkAsProcessed(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE scraped_products
		SET sync_status = 'N'
		WHERE id = $1
	`, id)
	return err
}

func firstImage(p model.ScrapedProduct) string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
