package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the slice of the DynamoDB client the backend needs.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoBackend stores each record as one item: PK DEVICE#<id>, SK RECORD#<name>.
type DynamoBackend struct {
	client    DynamoAPI
	tableName string
	deviceID  string
	now       func() time.Time
}

func NewDynamoDBClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

func NewDynamoBackend(client DynamoAPI, tableName, deviceID string) *DynamoBackend {
	return &DynamoBackend{client: client, tableName: tableName, deviceID: deviceID, now: time.Now}
}

func (d *DynamoBackend) key(name string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("DEVICE#%s", d.deviceID)},
		"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("RECORD#%s", name)},
	}
}

func (d *DynamoBackend) Get(ctx context.Context, name string) ([]byte, bool, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.tableName),
		Key:            d.key(name),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, false, nil
	}
	payload, ok := out.Item["payload"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, false, fmt.Errorf("record %s: payload attribute missing", name)
	}
	return []byte(payload.Value), true, nil
}

func (d *DynamoBackend) Put(ctx context.Context, name string, data []byte) error {
	item := d.key(name)
	item["payload"] = &types.AttributeValueMemberS{Value: string(data)}
	item["updated_at"] = &types.AttributeValueMemberS{Value: d.now().UTC().Format(time.RFC3339)}

	_, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}
	return nil
}
