package store

import "context"

// AuditEntry is a single row from the audit_log table, surfaced by the
// supplemented AuditLog admin operation.
type AuditEntry struct {
	ID         int64
	Timestamp  string
	EntityType string
	EntityID   string
	Action     string
	Field      string
	OldValue   string
	NewValue   string
	InstanceID string
}

// ListAuditLog returns the most recent audit entries, optionally
// filtered to a single entity, newest first, capped at limit.
func (s *Store) ListAuditLog(ctx context.Context, entityType, entityID string, limit int) ([]AuditEntry, error) {
	query := "SELECT id, timestamp, entity_type, entity_id, action, field, old_value, new_value, instance_id FROM audit_log"
	args := []any{}
	if entityType != "" {
		query += " WHERE entity_type = ?"
		args = append(args, entityType)
		if entityID != "" {
			query += " AND entity_id = ?"
			args = append(args, entityID)
		}
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.EntityType, &e.EntityID, &e.Action, &e.Field, &e.OldValue, &e.NewValue, &e.InstanceID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
