package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"titlechain/domain/core/entities"
	pkgerrors "titlechain/pkg/errors"
)

const (
	actEntityType = "ACT"
	actSortKey    = "METADATA"
)

// Client is the subset of the DynamoDB API the act repository uses
type Client interface {
	dynamodb.ScanAPIClient
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// ActRepository reads notarial acts from the firm's record table.
// Items are keyed PK=ACT#<numero_acte>, SK=METADATA.
type ActRepository struct {
	client    Client
	tableName string
	logger    *zap.Logger
}

// NewActRepository creates a new ActRepository
func NewActRepository(client Client, tableName string, logger *zap.Logger) *ActRepository {
	return &ActRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// actItem represents the DynamoDB item structure for an act
type actItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	entities.Act
}

func actKey(numero string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("ACT#%s", entities.NormalizeNumber(numero))},
		"SK": &types.AttributeValueMemberS{Value: actSortKey},
	}
}

// List implements ports.ActRepository. The whole table is scanned page by
// page and filtered to act items.
func (r *ActRepository) List(ctx context.Context) ([]entities.Act, error) {
	filter := expression.Name("EntityType").Equal(expression.Value(actEntityType))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan expression: %w", err)
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var acts []entities.Act
	pages := 0
	paginator := dynamodb.NewScanPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("scan acts", err)
		}
		pages++

		for _, raw := range page.Items {
			var item actItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Skipping malformed act item", zap.Error(err))
				continue
			}
			if item.Act.Validate() != nil {
				r.logger.Warn("Skipping act item without numero", zap.String("pk", item.PK))
				continue
			}
			acts = append(acts, item.Act)
		}
	}

	r.logger.Debug("Scanned acts",
		zap.String("table", r.tableName),
		zap.Int("pages", pages),
		zap.Int("acts", len(acts)),
	)
	return acts, nil
}

// FindByNumber implements ports.ActRepository
func (r *ActRepository) FindByNumber(ctx context.Context, numero string) (entities.Act, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       actKey(numero),
	})
	if err != nil {
		return entities.Act{}, pkgerrors.NewDatabaseError("get act", err)
	}
	if result.Item == nil {
		return entities.Act{}, pkgerrors.NewNotFoundError("act " + numero)
	}

	var item actItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return entities.Act{}, fmt.Errorf("failed to unmarshal act: %w", err)
	}
	return item.Act, nil
}

// PutAct writes one act item. Only the seeding tool writes to the table.
func (r *ActRepository) PutAct(ctx context.Context, act entities.Act) error {
	if err := act.Validate(); err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(actItem{
		PK:         fmt.Sprintf("ACT#%s", act.Number()),
		SK:         actSortKey,
		EntityType: actEntityType,
		Act:        act,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal act: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("put act", err)
	}
	return nil
}
