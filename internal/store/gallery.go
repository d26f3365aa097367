package store

import (
	"context"
	"errors"
	"fmt"
)

func scanGalleryItem(s scanner) (g GalleryItem, err error) {
	err = s.Scan(&g.Id, &g.ImageURL, &g.Category, &g.Caption, &g.CreatedAt)
	return
}

func (d *DB) ListGallery(ctx context.Context, category string) ([]GalleryItem, error) {
	stmt, args := d.stmts[queryGallery], []any{}
	if category != "" {
		stmt, args = d.stmts[queryGalleryByCategory], []any{category}
	}

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("list gallery: %w", err)
	}
	defer rows.Close()

	items := []GalleryItem{}
	for rows.Next() {
		g, err := scanGalleryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gallery item: %w", err)
		}
		items = append(items, g)
	}
	return items, rows.Err()
}

func (d *DB) GetGalleryItem(ctx context.Context, id int64) (GalleryItem, error) {
	g, err := scanGalleryItem(d.stmts[queryGalleryItem].QueryRowContext(ctx, id))
	if err != nil {
		return GalleryItem{}, fmt.Errorf("get gallery item %d: %w", id, notFound(err))
	}
	return g, nil
}

func (d *DB) CreateGalleryItem(ctx context.Context, g *GalleryItem) error {
	if g.ImageURL == "" {
		return errors.New("create gallery item: image url is required")
	}
	g.CreatedAt = d.now()
	id, err := d.insert(ctx, queryAddGalleryItem, g.ImageURL, g.Category, g.Caption, g.CreatedAt)
	if err != nil {
		return fmt.Errorf("create gallery item: %w", err)
	}
	g.Id = id
	return nil
}

func (d *DB) DeleteGalleryItem(ctx context.Context, id int64) error {
	if err := d.execOne(ctx, queryDeleteGalleryItem, id); err != nil {
		return fmt.Errorf("delete gallery item %d: %w", id, err)
	}
	return nil
}
