package store

import (
	"context"
	"fmt"
)

func scanMember(s scanner) (m Member, err error) {
	err = s.Scan(&m.Id, &m.Name, &m.Position, &m.Email, &m.Phone, &m.Bio, &m.ImageURL, &m.CreatedAt)
	return
}

func (d *DB) ListMembers(ctx context.Context) ([]Member, error) {
	rows, err := d.stmts[queryMembers].QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (d *DB) GetMember(ctx context.Context, id int64) (Member, error) {
	m, err := scanMember(d.stmts[queryMember].QueryRowContext(ctx, id))
	if err != nil {
		return Member{}, fmt.Errorf("get member %d: %w", id, notFound(err))
	}
	return m, nil
}

func (d *DB) CreateMember(ctx context.Context, m *Member) error {
	m.CreatedAt = d.now()
	id, err := d.insert(ctx, queryAddMember, m.Name, m.Position, m.Email, m.Phone, m.Bio, m.ImageURL, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("create member: %w", err)
	}
	m.Id = id
	return nil
}

func (d *DB) UpdateMember(ctx context.Context, m *Member) error {
	err := d.execOne(ctx, queryUpdateMember, m.Name, m.Position, m.Email, m.Phone, m.Bio, m.ImageURL, m.Id)
	if err != nil {
		return fmt.Errorf("update member %d: %w", m.Id, err)
	}
	return nil
}

func (d *DB) DeleteMember(ctx context.Context, id int64) error {
	if err := d.execOne(ctx, queryDeleteMember, id); err != nil {
		return fmt.Errorf("delete member %d: %w", id, err)
	}
	return nil
}
