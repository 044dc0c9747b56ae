package sqlite

import (
	"context"
	"time"

	"github.com/catalogdb/grantee/types"
)

func (s *Store) InsertRoleGrant(policy types.RoleGrantPolicy) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR IGNORE INTO role_grants (grantee, role) VALUES (?, ?)`,
		policy.Grantee, policy.Role); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO role_grant_changes (grantee, role, method) VALUES (?, ?, ?)`,
		policy.Grantee, policy.Role, types.PersistInsert); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) RemoveRoleGrant(policy types.RoleGrantPolicy) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM role_grants WHERE grantee = ? AND role = ?`,
		policy.Grantee, policy.Role); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO role_grant_changes (grantee, role, method) VALUES (?, ?, ?)`,
		policy.Grantee, policy.Role, types.PersistDelete); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) ListRoleGrants() ([]types.RoleGrantPolicy, error) {
	rows, err := s.db.Query(`SELECT grantee, role FROM role_grants`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	policies := make([]types.RoleGrantPolicy, 0)
	for rows.Next() {
		var p types.RoleGrantPolicy
		if err := rows.Scan(&p.Grantee, &p.Role); err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

func (s *Store) WatchRoleGrants(ctx context.Context) (<-chan types.RoleGrantPolicyChange, error) {
	changes := make(chan types.RoleGrantPolicyChange)

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
				`SELECT id, grantee, role, method FROM role_grant_changes WHERE id > ? ORDER BY id`, lastID)
			if err != nil {
				continue
			}
			for rows.Next() {
				var change types.RoleGrantPolicyChange
				if err := rows.Scan(&lastID, &change.Grantee, &change.Role, &change.Method); err != nil {
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
