package types

import "time"

// ActionType enumerates the side effects the orchestrator can request from
// the CRM collaborator.
type ActionType string

const (
	ActionAddTag            ActionType = "add_tag"
	ActionRemoveTag         ActionType = "remove_tag"
	ActionUpdateCustomField ActionType = "update_custom_field"
	ActionTriggerWorkflow   ActionType = "trigger_workflow"
)

// Action is one outbound side effect. Actions are emitted in order per
// contact and delivered best-effort with retry; the local state commit they
// describe is already authoritative.
type Action struct {
	Type       ActionType `json:"type"`
	ContactID  string     `json:"contact_id"`
	Tag        string     `json:"tag,omitempty"`
	FieldID    string     `json:"field_id,omitempty"`
	FieldValue string     `json:"field_value,omitempty"`
	WorkflowID string     `json:"workflow_id,omitempty"`
}

// AddTag builds an add_tag action.
func AddTag(contactID, tag string) Action {
	return Action{Type: ActionAddTag, ContactID: contactID, Tag: tag}
}

// RemoveTag builds a remove_tag action.
func RemoveTag(contactID, tag string) Action {
	return Action{Type: ActionRemoveTag, ContactID: contactID, Tag: tag}
}

// UpdateCustomField builds an update_custom_field action.
func UpdateCustomField(contactID, fieldID, value string) Action {
	return Action{Type: ActionUpdateCustomField, ContactID: contactID, FieldID: fieldID, FieldValue: value}
}

// TriggerWorkflow builds a trigger_workflow action.
func TriggerWorkflow(contactID, workflowID string) Action {
	return Action{Type: ActionTriggerWorkflow, ContactID: contactID, WorkflowID: workflowID}
}

// InboundMessage is the webhook-shaped payload delivered by the CRM. The
// orchestrator is agnostic to the transport that carried it.
type InboundMessage struct {
	ContactID string    `json:"contact_id"`
	Text      string    `json:"text"`
	Tags      []string  `json:"tags,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
