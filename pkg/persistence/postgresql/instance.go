package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/persistence"
)

// InstanceRepository handles run ledger database operations.
type InstanceRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewInstanceRepository creates a new ledger repository.
func NewInstanceRepository(db *sql.DB, logger *slog.Logger) *InstanceRepository {
	return &InstanceRepository{db: db, logger: logger}
}

// Create inserts a new ledger entry.
func (r *InstanceRepository) Create(ctx context.Context, instance *models.WorkflowInstance) error {
	triggerDataJSON, logsJSON, err := marshalInstanceFields(instance)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO workflow_instances (id, workflow_id, status, trigger_type,
			trigger_data, logs, error_message, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.ExecContext(ctx, query,
		instance.ID,
		instance.WorkflowID,
		instance.Status,
		instance.TriggerType,
		triggerDataJSON,
		logsJSON,
		instance.Error,
		instance.StartedAt,
		instance.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create instance: %w", err)
	}

	return nil
}

// GetByID retrieves an instance by its ID. Returns nil without error when
// no instance matches.
func (r *InstanceRepository) GetByID(ctx context.Context, id string) (*models.WorkflowInstance, error) {
	query := `
		SELECT
			id
		  , workflow_id
		  , status
		  , trigger_type
		  , trigger_data
		  , logs
		  , error_message
		  , started_at
		  , completed_at
		FROM workflow_instances
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

	instance, err := r.scanInstance(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan instance: %w", err)
	}

	return instance, nil
}

// Update overwrites an existing ledger entry.
func (r *InstanceRepository) Update(ctx context.Context, instance *models.WorkflowInstance) error {
	triggerDataJSON, logsJSON, err := marshalInstanceFields(instance)
	if err != nil {
		return err
	}

	query := `
		UPDATE workflow_instances
		SET status = $2, trigger_type = $3, trigger_data = $4, logs = $5,
			error_message = $6, started_at = $7, completed_at = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		instance.ID,
		instance.Status,
		instance.TriggerType,
		triggerDataJSON,
		logsJSON,
		instance.Error,
		instance.StartedAt,
		instance.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update instance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.NewInstanceError("Update", instance.ID, persistence.ErrInstanceNotFound)
	}

	return nil
}

// ListByWorkflow returns up to limit instances for the workflow, most
// recent first.
func (r *InstanceRepository) ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.WorkflowInstance, error) {
	if limit <= 0 {
		limit = persistence.DefaultInstanceLimit
	}

	query := `
		SELECT
			id
		  , workflow_id
		  , status
		  , trigger_type
		  , trigger_data
		  , logs
		  , error_message
		  , started_at
		  , completed_at
		FROM workflow_instances
		WHERE workflow_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, workflowID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query instances: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	instances := make([]*models.WorkflowInstance, 0)

	for rows.Next() {
		instance, err := r.scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan instance: %w", err)
		}

		instances = append(instances, instance)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating instances: %w", err)
	}

	return instances, nil
}

// DeleteByWorkflow removes every ledger entry belonging to the workflow.
func (r *InstanceRepository) DeleteByWorkflow(ctx context.Context, workflowID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM workflow_instances WHERE workflow_id = $1`, workflowID)
	if err != nil {
		return fmt.Errorf("failed to delete instances for workflow %s: %w", workflowID, err)
	}

	return nil
}

func (r *InstanceRepository) scanInstance(scanner interface {
	Scan(dest ...any) error
}) (*models.WorkflowInstance, error) {
	var (
		instance                  models.WorkflowInstance
		triggerDataJSON, logsJSON []byte
		errorMessage              sql.NullString
	)

	err := scanner.Scan(
		&instance.ID,
		&instance.WorkflowID,
		&instance.Status,
		&instance.TriggerType,
		&triggerDataJSON,
		&logsJSON,
		&errorMessage,
		&instance.StartedAt,
		&instance.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	instance.Error = errorMessage.String

	if triggerDataJSON != nil {
		err := json.Unmarshal(triggerDataJSON, &instance.TriggerData)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger data: %w", err)
		}
	}

	if logsJSON != nil {
		err := json.Unmarshal(logsJSON, &instance.Logs)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution logs: %w", err)
		}
	}

	return &instance, nil
}

func marshalInstanceFields(instance *models.WorkflowInstance) (triggerData, logs []byte, err error) {
	triggerData, err = json.Marshal(instance.TriggerData)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal trigger data: %w", err)
	}

	logs, err = json.Marshal(instance.Logs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal execution logs: %w", err)
	}

	return triggerData, logs, nil
}
