package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create workflows table. The graph columns hold serialized
			-- JSON owned by the application, not the database.
			CREATE TABLE workflows (
				id UUID PRIMARY KEY,
				name VARCHAR(100) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				nodes TEXT NOT NULL DEFAULT '',
				edges TEXT NOT NULL DEFAULT '',
				flow_path TEXT NOT NULL DEFAULT '',
				graph_hash VARCHAR(64) NOT NULL DEFAULT '',
				published BOOLEAN NOT NULL DEFAULT FALSE,
				sub_account_id VARCHAR(255) NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflows_sub_account_id ON workflows(sub_account_id);
			CREATE INDEX idx_workflows_updated_at ON workflows(updated_at);
		`,
		2: `
			-- Create workflow_instances table (the run ledger).
			CREATE TABLE workflow_instances (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				status VARCHAR(50) NOT NULL,
				trigger_type VARCHAR(255) NOT NULL DEFAULT '',
				trigger_data JSONB DEFAULT '{}',
				logs JSONB DEFAULT '[]',
				error_message TEXT,
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_workflow_instances_workflow_id ON workflow_instances(workflow_id);
			CREATE INDEX idx_workflow_instances_status ON workflow_instances(status);
			CREATE INDEX idx_workflow_instances_started_at ON workflow_instances(started_at);
		`,
	}
}
