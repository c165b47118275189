// Package engine executes published workflows along their compiled flow
// path and records every run in the instance ledger.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/cascadehq/cascade/pkg/eventbus"
	"github.com/cascadehq/cascade/pkg/events"
	"github.com/cascadehq/cascade/pkg/graph"
	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/otelhelper"
	"github.com/cascadehq/cascade/pkg/persistence"
	"github.com/cascadehq/cascade/pkg/services"
)

// ErrWorkflowNotPublished is returned when execution is requested for an
// unpublished workflow. No ledger entry is created in that case.
var ErrWorkflowNotPublished = services.ErrWorkflowNotPublished

// nodeError marks a node outcome as fatal for the run.
type nodeError struct {
	nodeID string
	err    error
}

func (e *nodeError) Error() string {
	return fmt.Sprintf("node %s failed: %v", e.nodeID, e.err)
}

func (e *nodeError) Unwrap() error {
	return e.err
}

// Engine runs workflows. One engine serves any number of concurrent runs;
// all per-run state lives in the ledger entry.
type Engine struct {
	persistence   persistence.Persistence
	logger        *slog.Logger
	clock         clockwork.Clock
	publisher     eventbus.EventPublisher
	contacts      ContactSink
	notifications NotificationSink
	httpClient    Doer
	tracer        trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock injects the clock used for wait nodes.
func WithClock(clock clockwork.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithPublisher injects the lifecycle event publisher.
func WithPublisher(publisher eventbus.EventPublisher) Option {
	return func(e *Engine) { e.publisher = publisher }
}

// WithContactSink injects the contact sink.
func WithContactSink(sink ContactSink) Option {
	return func(e *Engine) { e.contacts = sink }
}

// WithNotificationSink injects the notification sink.
func WithNotificationSink(sink NotificationSink) Option {
	return func(e *Engine) { e.notifications = sink }
}

// WithHTTPClient injects the client used by webhook actions.
func WithHTTPClient(client Doer) Option {
	return func(e *Engine) { e.httpClient = client }
}

// WithTracer enables per-run and per-node tracing.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) { e.tracer = tracer }
}

// NewEngine creates an engine with real-clock and log-only defaults.
func NewEngine(p persistence.Persistence, logger *slog.Logger, opts ...Option) *Engine {
	engine := &Engine{
		persistence: p,
		logger:      logger,
		clock:       clockwork.NewRealClock(),
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		tracer:      noop.NewTracerProvider().Tracer("cascade.engine"),
	}

	for _, opt := range opts {
		opt(engine)
	}

	if engine.contacts == nil {
		engine.contacts = &LogContactSink{Logger: logger}
	}

	if engine.notifications == nil {
		engine.notifications = &LogNotificationSink{Logger: logger}
	}

	return engine
}

// Execute runs a published workflow synchronously and returns its ledger
// entry. The entry is persisted through every status transition, so a
// crash mid-run leaves a running record rather than nothing.
func (e *Engine) Execute(ctx context.Context, workflowID, triggerType string, triggerData map[string]any) (*models.WorkflowInstance, error) {
	ctx, span := e.startSpan(ctx, "workflow.execute",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.TriggerTypeKey, triggerType),
	)
	defer span.End()

	workflow, err := e.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workflow %s: %w", workflowID, err)
	}

	if workflow == nil {
		err := persistence.NewWorkflowError("Execute", workflowID, persistence.ErrWorkflowNotFound)
		otelhelper.SetError(span, err)

		return nil, err
	}

	if !workflow.Published {
		otelhelper.SetError(span, ErrWorkflowNotPublished)

		return nil, ErrWorkflowNotPublished
	}

	instanceID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate instance ID: %w", err)
	}

	instance := &models.WorkflowInstance{
		ID:          instanceID.String(),
		WorkflowID:  workflowID,
		Status:      models.InstanceStatusPending,
		TriggerType: triggerType,
		TriggerData: triggerData,
		Logs:        []models.ExecutionLogEntry{},
		StartedAt:   e.clock.Now().UTC(),
	}

	err = e.persistence.InstanceRepository().Create(ctx, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to create instance: %w", err)
	}

	e.publishEvent(ctx, workflowID, events.RunStarted{
		BaseEvent:   events.NewBaseEvent(events.RunStartedEvent, workflowID),
		InstanceID:  instance.ID,
		TriggerType: triggerType,
		TriggerData: triggerData,
	})

	e.run(ctx, workflow, instance)

	err = e.persistence.InstanceRepository().Update(ctx, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to persist instance result: %w", err)
	}

	duration := e.clock.Now().UTC().Sub(instance.StartedAt)

	if instance.Status == models.InstanceStatusFailed {
		e.publishEvent(ctx, workflowID, events.RunFailed{
			BaseEvent:  events.NewBaseEvent(events.RunFailedEvent, workflowID),
			InstanceID: instance.ID,
			Error:      instance.Error,
			Duration:   duration,
		})
	} else {
		e.publishEvent(ctx, workflowID, events.RunCompleted{
			BaseEvent:  events.NewBaseEvent(events.RunCompletedEvent, workflowID),
			InstanceID: instance.ID,
			Duration:   duration,
		})
	}

	return instance, nil
}

// run drives the instance from pending to a terminal state. Panics inside
// node execution are contained to the run and recorded as a failure.
func (e *Engine) run(ctx context.Context, workflow *models.Workflow, instance *models.WorkflowInstance) {
	logger := e.logger.With("workflow_id", workflow.ID, "instance_id", instance.ID)

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "Run panicked", "panic", r)
			e.finish(instance, fmt.Errorf("run panicked: %v", r))
		}
	}()

	instance.Status = models.InstanceStatusRunning

	err := e.persistence.InstanceRepository().Update(ctx, instance)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to persist running status", "error", err)
	}

	nodes, err := models.ParseNodes(workflow.Nodes)
	if err != nil {
		e.finish(instance, fmt.Errorf("invalid workflow graph: %w", err))

		return
	}

	// An empty path (no trigger node) completes with no log entries.
	flowPath := e.flowPath(workflow, nodes)

	nodesByID := make(map[string]models.Node, len(nodes))
	for _, node := range nodes {
		nodesByID[node.ID] = node
	}

	logger.InfoContext(ctx, "Starting run", "path_length", len(flowPath))

	for _, nodeID := range flowPath {
		node, found := nodesByID[nodeID]
		if !found {
			// A stale cached path can reference a deleted node.
			e.appendLog(instance, models.ExecutionLogEntry{
				NodeID:  nodeID,
				Status:  models.LogStatusSkipped,
				Message: "node no longer exists",
			})
			e.persistLogs(ctx, logger, instance)

			continue
		}

		err := e.executeNode(ctx, workflow, instance, node)

		// Flush the log array after every node so a crash mid-run loses
		// at most the in-flight node's entries.
		e.persistLogs(ctx, logger, instance)

		if err != nil {
			logger.ErrorContext(ctx, "Node failed", "node_id", node.ID, "error", err)
			e.finish(instance, &nodeError{nodeID: node.ID, err: err})

			return
		}
	}

	e.finish(instance, nil)
	logger.InfoContext(ctx, "Run completed", "logs", len(instance.Logs))
}

// flowPath returns the execution order. The cached path is only trusted
// when its graph hash matches the stored graph; otherwise the path is
// recomputed from the live nodes and edges.
func (e *Engine) flowPath(workflow *models.Workflow, nodes []models.Node) []string {
	if workflow.GraphHash != "" && workflow.GraphHash == graph.Hash(workflow.Nodes, workflow.Edges) {
		cached, err := models.ParseFlowPath(workflow.FlowPath)
		if err == nil && len(cached) > 0 {
			return cached
		}
	}

	edges, err := models.ParseEdges(workflow.Edges)
	if err != nil {
		return []string{}
	}

	return graph.ComputeFlowPath(nodes, edges)
}

func (e *Engine) finish(instance *models.WorkflowInstance, err error) {
	now := e.clock.Now().UTC()
	instance.CompletedAt = &now

	if err != nil {
		instance.Status = models.InstanceStatusFailed
		instance.Error = err.Error()

		return
	}

	instance.Status = models.InstanceStatusCompleted
}

// executeNode appends a started entry, runs the node, then appends the
// outcome entry. A returned error is fatal for the run.
func (e *Engine) executeNode(ctx context.Context, workflow *models.Workflow, instance *models.WorkflowInstance, node models.Node) error {
	ctx, span := e.startSpan(ctx, "workflow.node.execute",
		attribute.String(otelhelper.InstanceIDKey, instance.ID),
		attribute.String(otelhelper.NodeIDKey, node.ID),
		attribute.String(otelhelper.NodeKindKey, string(node.Kind())),
	)
	defer span.End()

	e.appendLog(instance, models.ExecutionLogEntry{
		NodeID:   node.ID,
		NodeKind: node.Kind(),
		Status:   models.LogStatusStarted,
	})

	started := e.clock.Now()

	status, message, data, err := e.dispatch(ctx, workflow, instance, node)
	if err != nil {
		otelhelper.SetError(span, err, attribute.String(otelhelper.NodeIDKey, node.ID))
		e.appendLog(instance, models.ExecutionLogEntry{
			NodeID:   node.ID,
			NodeKind: node.Kind(),
			Status:   models.LogStatusFailed,
			Message:  err.Error(),
		})
		e.publishNodeEvent(ctx, workflow.ID, instance.ID, node, models.LogStatusFailed, started)

		return err
	}

	e.appendLog(instance, models.ExecutionLogEntry{
		NodeID:   node.ID,
		NodeKind: node.Kind(),
		Status:   status,
		Message:  message,
		Data:     data,
	})
	e.publishNodeEvent(ctx, workflow.ID, instance.ID, node, status, started)

	return nil
}

// dispatch executes the kind-specific behavior. The type switch is
// exhaustive over the closed content set.
func (e *Engine) dispatch(ctx context.Context, workflow *models.Workflow, instance *models.WorkflowInstance, node models.Node) (models.LogStatus, string, map[string]any, error) {
	switch content := node.Data.Content.(type) {
	case models.TriggerContent:
		return models.LogStatusCompleted, fmt.Sprintf("Workflow triggered via %s", content.TriggerType), nil, nil

	case models.ConditionContent:
		// Both branches stay on the compiled path; the evaluation is
		// recorded but never halts the run.
		passed := evaluateCondition(content.Config, instance.TriggerData)

		return models.LogStatusCompleted, "Condition evaluated", map[string]any{"passed": passed}, nil

	case models.WaitContent:
		if content.Config == nil || content.Config.Delay() <= 0 {
			return models.LogStatusCompleted, "No delay configured", nil, nil
		}

		delay := content.Config.Delay()

		select {
		case <-e.clock.After(delay):
			return models.LogStatusCompleted, fmt.Sprintf("Waited %s", delay), nil, nil
		case <-ctx.Done():
			return "", "", nil, ctx.Err()
		}

	case models.EmailContent:
		to := ""
		if content.Config != nil {
			to = content.Config.To
		}

		return models.LogStatusCompleted, fmt.Sprintf("Email queued to %s", to), nil, nil

	case models.NotificationContent:
		notification := Notification{SubAccountID: workflow.SubAccountID}
		if content.Config != nil {
			notification.Message = content.Config.Message
			notification.UserID = content.Config.UserID
		}

		if err := e.notifications.Notify(ctx, notification); err != nil {
			return "", "", nil, fmt.Errorf("notification failed: %w", err)
		}

		return models.LogStatusCompleted, "Notification sent", nil, nil

	case models.ActionContent:
		return e.dispatchAction(ctx, workflow, instance, content)

	default:
		return "", "", nil, fmt.Errorf("unsupported node content %T", content)
	}
}

func (e *Engine) dispatchAction(ctx context.Context, workflow *models.Workflow, instance *models.WorkflowInstance, content models.ActionContent) (models.LogStatus, string, map[string]any, error) {
	switch content.ActionType {
	case models.ActionCreateContact:
		name, _ := instance.TriggerData["name"].(string)
		email, _ := instance.TriggerData["email"].(string)

		if name == "" || email == "" {
			return models.LogStatusSkipped, "Trigger data has no contact name or email", nil, nil
		}

		contact := Contact{Name: name, Email: email, SubAccountID: workflow.SubAccountID}
		if err := e.contacts.CreateContact(ctx, contact); err != nil {
			return "", "", nil, fmt.Errorf("contact creation failed: %w", err)
		}

		return models.LogStatusCompleted, fmt.Sprintf("Contact %s created", email), nil, nil

	case models.ActionWebhook:
		return e.executeWebhook(ctx, instance, content.Config)

	case models.ActionUpdateContact, models.ActionMovePipelineStage,
		models.ActionSendEmail, models.ActionSendNotification:
		return models.LogStatusCompleted, fmt.Sprintf("Action %s executed", content.ActionType), nil, nil

	default:
		return "", "", nil, fmt.Errorf("unsupported action type %q", content.ActionType)
	}
}

func (e *Engine) executeWebhook(ctx context.Context, instance *models.WorkflowInstance, config *models.ActionConfig) (models.LogStatus, string, map[string]any, error) {
	if config == nil || config.WebhookURL == "" {
		return "", "", nil, errors.New("webhook action has no URL configured")
	}

	method := config.WebhookMethod
	if method == "" {
		method = http.MethodPost
	}

	body := []byte(config.WebhookBody)
	if len(body) == 0 {
		payload, err := json.Marshal(instance.TriggerData)
		if err != nil {
			return "", "", nil, fmt.Errorf("failed to encode webhook payload: %w", err)
		}

		body = payload
	}

	req, err := http.NewRequestWithContext(ctx, method, config.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to build webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	for key, value := range config.WebhookHeaders {
		req.Header.Set(key, value)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", "", nil, fmt.Errorf("webhook request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", "", nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return models.LogStatusCompleted, fmt.Sprintf("Webhook %s %s returned %d", method, config.WebhookURL, resp.StatusCode),
		map[string]any{"statusCode": resp.StatusCode}, nil
}

func (e *Engine) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otelhelper.StartSpan(ctx, e.tracer, name, attrs...)
}

func (e *Engine) appendLog(instance *models.WorkflowInstance, entry models.ExecutionLogEntry) {
	entry.Timestamp = e.clock.Now().UTC()
	instance.Logs = append(instance.Logs, entry)
}

// persistLogs writes the instance back mid-run. Best effort; the terminal
// update after the run still carries the full array.
func (e *Engine) persistLogs(ctx context.Context, logger *slog.Logger, instance *models.WorkflowInstance) {
	if err := e.persistence.InstanceRepository().Update(ctx, instance); err != nil {
		logger.WarnContext(ctx, "Failed to persist run log", "error", err)
	}
}

func (e *Engine) publishEvent(ctx context.Context, workflowID string, event eventbus.Event) {
	if e.publisher == nil {
		return
	}

	if err := e.publisher.Publish(ctx, workflowID, event); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func (e *Engine) publishNodeEvent(ctx context.Context, workflowID, instanceID string, node models.Node, status models.LogStatus, started time.Time) {
	if e.publisher == nil {
		return
	}

	e.publishEvent(ctx, workflowID, events.NodeExecuted{
		BaseEvent:  events.NewBaseEvent(events.NodeExecutedEvent, workflowID),
		InstanceID: instanceID,
		NodeID:     node.ID,
		NodeKind:   node.Kind(),
		Status:     status,
		DurationMs: e.clock.Now().Sub(started).Milliseconds(),
	})
}

// evaluateCondition applies the configured operator to the trigger data
// field. An absent config or unknown field evaluates against the empty
// string.
func evaluateCondition(config *models.ConditionConfig, triggerData map[string]any) bool {
	if config == nil {
		return true
	}

	value := ""
	if raw, ok := triggerData[config.Field]; ok {
		value = fmt.Sprintf("%v", raw)
	}

	switch config.Operator {
	case models.OperatorEquals:
		return value == config.Value
	case models.OperatorNotEquals:
		return value != config.Value
	case models.OperatorContains:
		return strings.Contains(value, config.Value)
	case models.OperatorNotContains:
		return !strings.Contains(value, config.Value)
	case models.OperatorGreaterThan:
		left, err1 := strconv.ParseFloat(value, 64)
		right, err2 := strconv.ParseFloat(config.Value, 64)

		return err1 == nil && err2 == nil && left > right
	case models.OperatorLessThan:
		left, err1 := strconv.ParseFloat(value, 64)
		right, err2 := strconv.ParseFloat(config.Value, 64)

		return err1 == nil && err2 == nil && left < right
	case models.OperatorIsEmpty:
		return value == ""
	case models.OperatorIsNotEmpty:
		return value != ""
	default:
		return true
	}
}
