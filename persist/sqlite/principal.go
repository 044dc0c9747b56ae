package sqlite

import (
	"context"
	"time"

	"github.com/catalogdb/grantee/types"
)

func (s *Store) InsertPrincipal(policy types.PrincipalPolicy) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO principals (name, kind) VALUES (?, ?)`, policy.Name, policy.Kind); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO principal_changes (name, kind, method) VALUES (?, ?, ?)`,
		policy.Name, policy.Kind, types.PersistInsert); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) RemovePrincipal(name string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM principals WHERE name = ?`, name); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO principal_changes (name, kind, method) VALUES (?, ?, ?)`,
		name, types.UserKind, types.PersistDelete); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) ListPrincipals() ([]types.PrincipalPolicy, error) {
	rows, err := s.db.Query(`SELECT name, kind FROM principals`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	policies := make([]types.PrincipalPolicy, 0)
	for rows.Next() {
		var p types.PrincipalPolicy
		if err := rows.Scan(&p.Name, &p.Kind); err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

func (s *Store) WatchPrincipals(ctx context.Context) (<-chan types.PrincipalPolicyChange, error) {
	changes := make(chan types.PrincipalPolicyChange)

	go func() {
		defer close(changes)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		var lastID int64
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			rows, err := s.db.Query(
				`SELECT id, name, kind, method FROM principal_changes WHERE id > ? ORDER BY id`, lastID)
			if err != nil {
				continue
			}
			for rows.Next() {
				var change types.PrincipalPolicyChange
				if err := rows.Scan(&lastID, &change.Name, &change.Kind, &change.Method); err != nil {
					continue
				}
				select {
				case changes <- change:
				case <-ctx.Done():
					rows.Close()
					return
				}
			}
			rows.Close()
		}
	}()

	return changes, nil
}
