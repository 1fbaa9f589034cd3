package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"titlechain/domain/core/entities"
	pkgerrors "titlechain/pkg/errors"
)

// fakeClient stores items by PK and serves scans one item per page
type fakeClient struct {
	items    []map[string]types.AttributeValue
	scans    []*dynamodb.ScanInput
	scanErr  error
	getCalls int
}

func (f *fakeClient) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scans = append(f.scans, in)
	if f.scanErr != nil {
		return nil, f.scanErr
	}

	start := 0
	if in.ExclusiveStartKey != nil {
		pk := in.ExclusiveStartKey["PK"].(*types.AttributeValueMemberS).Value
		for i, item := range f.items {
			if item["PK"].(*types.AttributeValueMemberS).Value == pk {
				start = i + 1
			}
		}
	}
	if start >= len(f.items) {
		return &dynamodb.ScanOutput{}, nil
	}

	item := f.items[start]
	out := &dynamodb.ScanOutput{}
	if item["EntityType"].(*types.AttributeValueMemberS).Value == actEntityType {
		out.Items = []map[string]types.AttributeValue{item}
	}
	if start+1 < len(f.items) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{"PK": item["PK"], "SK": item["SK"]}
	}
	return out, nil
}

func (f *fakeClient) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.getCalls++
	pk := in.Key["PK"].(*types.AttributeValueMemberS).Value
	for _, item := range f.items {
		if item["PK"].(*types.AttributeValueMemberS).Value == pk {
			return &dynamodb.GetItemOutput{Item: item}, nil
		}
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (f *fakeClient) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.items = append(f.items, in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func seededRepo(t *testing.T, acts ...entities.Act) (*ActRepository, *fakeClient) {
	t.Helper()
	client := &fakeClient{}
	repo := NewActRepository(client, "acts", zap.NewNop())
	for _, act := range acts {
		require.NoError(t, repo.PutAct(context.Background(), act))
	}
	return repo, client
}

func TestActRepository_PutActWritesKeys(t *testing.T) {
	_, client := seededRepo(t, entities.Act{ID: "r1", NumeroActe: "100", Acheteurs: []string{"A"}})

	require.Len(t, client.items, 1)
	item := client.items[0]
	assert.Equal(t, "ACT#100", item["PK"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "METADATA", item["SK"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "ACT", item["EntityType"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "100", item["NumeroActe"].(*types.AttributeValueMemberS).Value)
}

func TestActRepository_PutActRejectsBlankNumero(t *testing.T) {
	repo, client := seededRepo(t)

	err := repo.PutAct(context.Background(), entities.Act{})
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Empty(t, client.items)
}

func TestActRepository_ListFollowsPages(t *testing.T) {
	repo, client := seededRepo(t,
		entities.Act{NumeroActe: "100", NumerosActesAnterieurs: []string{"50"}},
		entities.Act{NumeroActe: "50"},
	)
	client.items = append(client.items, map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: "DOSSIER#1"},
		"SK":         &types.AttributeValueMemberS{Value: "METADATA"},
		"EntityType": &types.AttributeValueMemberS{Value: "DOSSIER"},
	})

	acts, err := repo.List(context.Background())
	require.NoError(t, err)

	require.Len(t, acts, 2)
	assert.Equal(t, "100", acts[0].NumeroActe)
	assert.Equal(t, []string{"50"}, acts[0].NumerosActesAnterieurs)
	assert.Equal(t, "50", acts[1].NumeroActe)

	assert.Len(t, client.scans, 3)
	assert.Equal(t, "acts", aws.ToString(client.scans[0].TableName))
	assert.NotNil(t, client.scans[0].FilterExpression)
}

func TestActRepository_ListError(t *testing.T) {
	repo, client := seededRepo(t)
	client.scanErr = errors.New("throttled")

	_, err := repo.List(context.Background())
	require.Error(t, err)
	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.ErrorTypeDatabase, appErr.Type)
}

func TestActRepository_FindByNumber(t *testing.T) {
	repo, _ := seededRepo(t, entities.Act{ID: "r1", NumeroActe: "100", Vendeurs: []string{"V"}})

	act, err := repo.FindByNumber(context.Background(), "100")
	require.NoError(t, err)
	assert.Equal(t, "r1", act.ID)
	assert.Equal(t, []string{"V"}, act.Vendeurs)

	_, err = repo.FindByNumber(context.Background(), "404")
	assert.True(t, pkgerrors.IsNotFound(err))
}
