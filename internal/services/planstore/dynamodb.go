package planstore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBOptions configures the DynamoDB backend. Empty credentials fall
// back to the default AWS chain; Endpoint targets DynamoDB Local.
type DynamoDBOptions struct {
	Table           string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	DocumentID      string
}

type planItem struct {
	ID        string `dynamodbav:"id"`
	Body      string `dynamodbav:"body"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// DynamoDBBackend keeps the plan document as one item keyed by id
type DynamoDBBackend struct {
	client *dynamodb.Client
	table  string
	id     string
}

// NewDynamoDB builds a client from opts
func NewDynamoDB(ctx context.Context, opts DynamoDBOptions) (*DynamoDBBackend, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return &DynamoDBBackend{client: client, table: opts.Table, id: opts.DocumentID}, nil
}

func (b *DynamoDBBackend) Name() string { return "dynamodb" }

func (b *DynamoDBBackend) Load(ctx context.Context) ([]byte, error) {
	out, err := b.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(b.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: b.id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get plan item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var item planItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal plan item: %w", err)
	}
	return []byte(item.Body), nil
}

func (b *DynamoDBBackend) Save(ctx context.Context, data []byte) error {
	av, err := attributevalue.MarshalMap(planItem{
		ID:        b.id,
		Body:      string(data),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal plan item: %w", err)
	}
	_, err = b.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(b.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put plan item: %w", err)
	}
	return nil
}

func (b *DynamoDBBackend) Close() error { return nil }
