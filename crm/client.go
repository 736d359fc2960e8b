package crm

import (
	"context"
	"fmt"

	"github.com/jorgeai/leadflow/types"
)

// Client is the outbound CRM surface. Implementations must be safe for
// concurrent use.
type Client interface {
	AddTag(ctx context.Context, contactID, tag string) error
	RemoveTag(ctx context.Context, contactID, tag string) error
	UpdateCustomField(ctx context.Context, contactID, field, value string) error
	TriggerWorkflow(ctx context.Context, contactID, workflowID string) error
}

// Execute dispatches one action to the client.
func Execute(ctx context.Context, c Client, a types.Action) error {
	switch a.Type {
	case types.ActionAddTag:
		return c.AddTag(ctx, a.ContactID, a.Tag)
	case types.ActionRemoveTag:
		return c.RemoveTag(ctx, a.ContactID, a.Tag)
	case types.ActionUpdateCustomField:
		return c.UpdateCustomField(ctx, a.ContactID, a.FieldID, a.FieldValue)
	case types.ActionTriggerWorkflow:
		return c.TriggerWorkflow(ctx, a.ContactID, a.WorkflowID)
	default:
		return types.NewError(types.ErrInvalidRequest,
			fmt.Sprintf("unknown action type %q", a.Type)).WithContact(a.ContactID)
	}
}

// NopClient discards every action. Useful for development and tests.
type NopClient struct{}

func (NopClient) AddTag(context.Context, string, string) error { return nil }

func (NopClient) RemoveTag(context.Context, string, string) error { return nil }

func (NopClient) UpdateCustomField(context.Context, string, string, string) error { return nil }

func (NopClient) TriggerWorkflow(context.Context, string, string) error { return nil }
