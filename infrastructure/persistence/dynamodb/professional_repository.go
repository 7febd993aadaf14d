// Package dynamodb stores directory records in a single DynamoDB table.
package dynamodb

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"profnet/application/ports"
	"profnet/domain/core/entities"
	pkgerrors "profnet/pkg/errors"
)

const (
	entityType  = "PROFESSIONAL"
	metadataKey = "METADATA"
)

// Client is the subset of the DynamoDB API the repository uses.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// professionalItem is the stored shape of a record. The record fields are
// inlined next to the key attributes.
type professionalItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	SearchText string `dynamodbav:"SearchText"`
	entities.Professional
}

// ProfessionalRepository implements ports.ProfessionalRepository on DynamoDB.
// Listing walks the table with a filtered scan; the order is the table's scan
// order, which is stable while the table is unchanged.
type ProfessionalRepository struct {
	client    Client
	tableName string
	logger    *zap.Logger
}

var _ ports.ProfessionalRepository = (*ProfessionalRepository)(nil)

// NewProfessionalRepository creates a new ProfessionalRepository
func NewProfessionalRepository(client Client, tableName string, logger *zap.Logger) *ProfessionalRepository {
	return &ProfessionalRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func professionalKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "PROFESSIONAL#" + id},
		"SK": &types.AttributeValueMemberS{Value: metadataKey},
	}
}

// Save creates or replaces a record.
func (r *ProfessionalRepository) Save(ctx context.Context, p *entities.Professional) error {
	if p == nil {
		return pkgerrors.NewValidationError("professional cannot be nil")
	}
	if err := p.Validate(); err != nil {
		return err
	}

	item := professionalItem{
		PK:           "PROFESSIONAL#" + p.ID,
		SK:           metadataKey,
		EntityType:   entityType,
		SearchText:   p.SearchText(),
		Professional: *p,
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal professional: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to save professional", zap.String("id", p.ID), zap.Error(err))
		return pkgerrors.NewDatabaseError("save professional", err)
	}
	return nil
}

// GetByID loads one record.
func (r *ProfessionalRepository) GetByID(ctx context.Context, id string) (*entities.Professional, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       professionalKey(id),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get professional", err)
	}
	if len(result.Item) == 0 {
		return nil, pkgerrors.NewProfessionalNotFoundError(id)
	}

	var item professionalItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal professional: %w", err)
	}
	p := item.Professional
	return &p, nil
}

// List returns up to limit records after skipping skip.
func (r *ProfessionalRepository) List(ctx context.Context, limit, skip int) ([]*entities.Professional, error) {
	filter := expression.Name("EntityType").Equal(expression.Value(entityType))
	return r.scan(ctx, filter, limit, skip, nil)
}

// All returns every record.
func (r *ProfessionalRepository) All(ctx context.Context) ([]*entities.Professional, error) {
	return r.List(ctx, 0, 0)
}

// Search filters on the stored lowercase search text.
func (r *ProfessionalRepository) Search(ctx context.Context, q string, limit int) ([]*entities.Professional, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	filter := expression.Name("EntityType").Equal(expression.Value(entityType))
	if q != "" {
		filter = filter.And(expression.Name("SearchText").Contains(q))
	}
	return r.scan(ctx, filter, limit, 0, func(p *entities.Professional) bool {
		return p.Matches(q)
	})
}

// scan pages through the table until limit matching records past skip have
// been collected. A non-positive limit collects everything.
func (r *ProfessionalRepository) scan(ctx context.Context, filter expression.ConditionBuilder, limit, skip int, keep func(*entities.Professional) bool) ([]*entities.Professional, error) {
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan expression: %w", err)
	}

	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	result := make([]*entities.Professional, 0)
	seen := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			r.logger.Error("Failed to scan professionals", zap.Error(err))
			return nil, pkgerrors.NewDatabaseError("scan professionals", err)
		}

		for _, raw := range page.Items {
			var item professionalItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Skipping malformed professional item", zap.Error(err))
				continue
			}
			p := item.Professional
			if keep != nil && !keep(&p) {
				continue
			}
			seen++
			if seen <= skip {
				continue
			}
			result = append(result, &p)
			if limit > 0 && len(result) >= limit {
				return result, nil
			}
		}
	}
	return result, nil
}
