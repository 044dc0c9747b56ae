package sqlite

import (
	"context"
	"time"

	"github.com/catalogdb/grantee/types"
)

func (s *Store) UpsertGrant(policy types.GrantPolicy) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	key := policy.Object.Key
	if _, err := tx.Exec(`
		INSERT INTO grants (grantee, db_id, object_id, object_type, name, owner, privileges)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (grantee, db_id, object_id, object_type)
		DO UPDATE SET name = excluded.name, owner = excluded.owner, privileges = excluded.privileges`,
		policy.Grantee, key.DBID, key.ObjectID, key.ObjectType,
		policy.Object.Name, policy.Object.Owner, policy.Object.Privileges); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO grant_changes (grantee, db_id, object_id, object_type, name, owner, privileges, method)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		policy.Grantee, key.DBID, key.ObjectID, key.ObjectType,
		policy.Object.Name, policy.Object.Owner, policy.Object.Privileges, types.PersistUpdate); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) RemoveGrant(grantee string, key types.DBObjectKey) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM grants WHERE grantee = ? AND db_id = ? AND object_id = ? AND object_type = ?`,
		grantee, key.DBID, key.ObjectID, key.ObjectType); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO grant_changes (grantee, db_id, object_id, object_type, name, owner, privileges, method)
		VALUES (?, ?, ?, ?, '', 0, 0, ?)`,
		grantee, key.DBID, key.ObjectID, key.ObjectType, types.PersistDelete); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) ListGrants() ([]types.GrantPolicy, error) {
	rows, err := s.db.Query(`SELECT grantee, db_id, object_id, object_type, name, owner, privileges FROM grants`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	policies := make([]types.GrantPolicy, 0)
	for rows.Next() {
		var p types.GrantPolicy
		if err := rows.Scan(&p.Grantee, &p.Object.Key.DBID, &p.Object.Key.ObjectID, &p.Object.Key.ObjectType,
			&p.Object.Name, &p.Object.Owner, &p.Object.Privileges); err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

func (s *Store) WatchGrants(ctx context.Context) (<-chan types.GrantPolicyChange, error) {
	changes := make(chan types.GrantPolicyChange)

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

			rows, err := s.db.Query(`
				SELECT id, grantee, db_id, object_id, object_type, name, owner, privileges, method
				FROM grant_changes WHERE id > ? ORDER BY id`, lastID)
			if err != nil {
				continue
			}
			for rows.Next() {
				var change types.GrantPolicyChange
				if err := rows.Scan(&lastID, &change.Grantee, &change.Object.Key.DBID, &change.Object.Key.ObjectID,
					&change.Object.Key.ObjectType, &change.Object.Name, &change.Object.Owner,
					&change.Object.Privileges, &change.Method); err != nil {
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
