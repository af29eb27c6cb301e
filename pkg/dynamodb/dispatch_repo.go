package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/savaki/christine-bot/pkg/models"
)

// ErrNotFound is returned when no record exists for an event
var ErrNotFound = errors.New("dispatch record not found")

// DispatchRepository keeps one record per Slack event_id so that a
// re-delivered event is answered at most once.
type DispatchRepository struct {
	client    API
	tableName string
	ttl       time.Duration
}

// NewDispatchRepository creates a new dispatch repository
func NewDispatchRepository(client API, tableName string, ttl time.Duration) *DispatchRepository {
	return &DispatchRepository{
		client:    client,
		tableName: tableName,
		ttl:       ttl,
	}
}

// Claim stores a claimed record for the event. It returns false when the
// event_id was already claimed by an earlier delivery.
func (r *DispatchRepository) Claim(ctx context.Context, dispatchID string, event models.InboundEvent) (bool, error) {
	rec := models.NewDispatchRecord(dispatchID, event, r.ttl)

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return false, fmt.Errorf("marshal dispatch record: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &r.tableName,
		Item:                item,
		ConditionExpression: stringPtr("attribute_not_exists(event_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, fmt.Errorf("put item: %w", err)
	}

	return true, nil
}

// Record writes the final status of a dispatch onto its claimed record.
// Skipped events, duplicates and events without an id leave the table
// untouched; none of them hold a claim.
func (r *DispatchRepository) Record(ctx context.Context, outcome models.Outcome) error {
	switch {
	case outcome.Event.EventID == "":
		return nil
	case outcome.Status == models.StatusSkipped, outcome.Status == models.StatusDuplicate:
		return nil
	}

	updateExpr := "SET #status = :status, #reason = :reason, #error = :error"
	exprAttrNames := map[string]string{
		"#status": "status",
		"#reason": "reason",
		"#error":  "error",
	}
	exprAttrVals := map[string]types.AttributeValue{
		":status":     &types.AttributeValueMemberS{Value: outcome.Status},
		":reason":     &types.AttributeValueMemberS{Value: outcome.Reason},
		":error":      &types.AttributeValueMemberS{Value: outcome.ErrorString()},
		":dispatchId": &types.AttributeValueMemberS{Value: outcome.DispatchID},
	}

	// Add completed_at if status is terminal
	if models.IsTerminal(outcome.Status) {
		updateExpr += ", completed_at = :now"
		exprAttrVals[":now"] = &types.AttributeValueMemberS{
			Value: time.Now().Format(time.RFC3339Nano),
		}
	}

	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: &r.tableName,
		Key: map[string]types.AttributeValue{
			"event_id": &types.AttributeValueMemberS{Value: outcome.Event.EventID},
		},
		UpdateExpression:          &updateExpr,
		ConditionExpression:       stringPtr("dispatch_id = :dispatchId"),
		ExpressionAttributeNames:  exprAttrNames,
		ExpressionAttributeValues: exprAttrVals,
	})
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}

	return nil
}

// GetByEventID retrieves the record for a Slack event_id
func (r *DispatchRepository) GetByEventID(ctx context.Context, eventID string) (*models.DispatchRecord, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &r.tableName,
		Key: map[string]types.AttributeValue{
			"event_id": &types.AttributeValueMemberS{Value: eventID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, eventID)
	}

	var rec models.DispatchRecord
	if err := attributevalue.UnmarshalMap(result.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal dispatch record: %w", err)
	}

	return &rec, nil
}

// Helper functions
func stringPtr(s string) *string {
	return &s
}
