package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/d60-Lab/birdnest/internal/model"
)

// DynamoAPI 仓储用到的 DynamoDB 调用，便于测试替换
type DynamoAPI interface {
	dynamodb.ScanAPIClient
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// tableWaitTimeout 建表后等待表变为 ACTIVE 的上限
const tableWaitTimeout = 2 * time.Minute

type dynamoPostRepository struct {
	client DynamoAPI
	table  string
}

func NewDynamoPostRepository(client DynamoAPI, table string) PostRepository {
	if table == "" {
		table = model.Post{}.TableName()
	}
	return &dynamoPostRepository{client: client, table: table}
}

func idKey(id int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberN{Value: strconv.FormatInt(id, 10)},
	}
}

func (r *dynamoPostRepository) List(ctx context.Context) ([]*model.Post, error) {
	res := []*model.Post{}
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{TableName: aws.String(r.table)})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var posts []*model.Post
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &posts); err != nil {
			return nil, fmt.Errorf("unmarshal posts: %w", err)
		}
		res = append(res, posts...)
	}
	return res, nil
}

func (r *dynamoPostRepository) Get(ctx context.Context, id int64) (*model.Post, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       idKey(id),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrPostNotFound
	}
	var post model.Post
	if err := attributevalue.UnmarshalMap(out.Item, &post); err != nil {
		return nil, fmt.Errorf("unmarshal post %d: %w", id, err)
	}
	return &post, nil
}

func (r *dynamoPostRepository) Put(ctx context.Context, post *model.Post) error {
	item, err := attributevalue.MarshalMap(post)
	if err != nil {
		return fmt.Errorf("marshal post %d: %w", post.ID, err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	return err
}

// Update DynamoDB 的 UpdateItem 默认会插入不存在的 key，这里用条件表达式挡住
func (r *dynamoPostRepository) Update(ctx context.Context, id int64, edit, title, content string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.table),
		Key:                 idKey(id),
		UpdateExpression:    aws.String("SET #edit = :edit, #title = :title, #content = :content"),
		ConditionExpression: aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id":      "id",
			"#edit":    "edit",
			"#title":   "title",
			"#content": "content",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":edit":    &types.AttributeValueMemberS{Value: edit},
			":title":   &types.AttributeValueMemberS{Value: title},
			":content": &types.AttributeValueMemberS{Value: content},
		},
	})
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return nil
	}
	return err
}

func (r *dynamoPostRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       idKey(id),
	})
	return err
}

// InitSchema 建表：分区键 id（数字），预置吞吐 5/5；表已存在时忽略。
// 返回前等待表进入 ACTIVE，否则紧随其后的读写会失败
func (r *dynamoPostRepository) InitSchema(ctx context.Context) error {
	_, err := r.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(r.table),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeN},
		},
		ProvisionedThroughput: &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(5),
			WriteCapacityUnits: aws.Int64(5),
		},
	})
	var inUse *types.ResourceInUseException
	if err != nil && !errors.As(err, &inUse) {
		return fmt.Errorf("create table %s: %w", r.table, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(r.client)
	err = waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)}, tableWaitTimeout)
	if err != nil {
		return fmt.Errorf("wait for table %s: %w", r.table, err)
	}
	return nil
}
