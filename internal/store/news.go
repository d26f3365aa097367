package store

import (
	"context"
	"fmt"
)

func scanNews(s scanner) (n News, err error) {
	err = s.Scan(&n.Id, &n.Title, &n.Content, &n.Category, &n.ImageURL, &n.CreatedAt)
	return
}

// ListNews returns news items newest first. An empty category lists all of
// them.
func (d *DB) ListNews(ctx context.Context, category string) ([]News, error) {
	stmt, args := d.stmts[queryNews], []any{}
	if category != "" {
		stmt, args = d.stmts[queryNewsByCategory], []any{category}
	}

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	defer rows.Close()

	items := []News{}
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

func (d *DB) GetNews(ctx context.Context, id int64) (News, error) {
	n, err := scanNews(d.stmts[queryNewsItem].QueryRowContext(ctx, id))
	if err != nil {
		return News{}, fmt.Errorf("get news %d: %w", id, notFound(err))
	}
	return n, nil
}

func (d *DB) CreateNews(ctx context.Context, n *News) error {
	n.CreatedAt = d.now()
	id, err := d.insert(ctx, queryAddNews, n.Title, n.Content, n.Category, n.ImageURL, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("create news: %w", err)
	}
	n.Id = id
	return nil
}

func (d *DB) UpdateNews(ctx context.Context, n *News) error {
	if err := d.execOne(ctx, queryUpdateNews, n.Title, n.Content, n.Category, n.ImageURL, n.Id); err != nil {
		return fmt.Errorf("update news %d: %w", n.Id, err)
	}
	return nil
}

func (d *DB) DeleteNews(ctx context.Context, id int64) error {
	if err := d.execOne(ctx, queryDeleteNews, id); err != nil {
		return fmt.Errorf("delete news %d: %w", id, err)
	}
	return nil
}
