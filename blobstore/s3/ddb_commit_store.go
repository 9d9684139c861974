package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/hfcand/blobstore"
)

// CurrentName is the blob that DDBCommitStore versions in DynamoDB.
const CurrentName = "CURRENT"

// ErrConcurrentModification is returned when another publisher committed the
// same CURRENT version first.
var ErrConcurrentModification = errors.New("s3: concurrent modification detected")

// DDBClient is the subset of *dynamodb.Client used by DDBCommitStore.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DDBCommitStore is a Store whose CURRENT pointer lives in DynamoDB.
//
// Every other blob is delegated to the wrapped S3 store. Writing CURRENT
// appends version n+1 with a conditional put, so two publishers racing on
// the same version cannot both succeed. Reading CURRENT returns the newest
// version.
//
// Table schema: partition key base_uri (S), sort key version (N).
//
//	aws dynamodb create-table \
//	  --table-name hfcand-commits \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBCommitStore struct {
	store   blobstore.Store
	ddb     DDBClient
	table   string
	baseURI string
}

// NewDDBCommitStore wraps store. baseURI partitions the table, usually
// "s3://bucket/prefix".
func NewDDBCommitStore(store blobstore.Store, ddb DDBClient, table, baseURI string) *DDBCommitStore {
	return &DDBCommitStore{store: store, ddb: ddb, table: table, baseURI: baseURI}
}

// Open reads CURRENT from DynamoDB and everything else from S3.
func (s *DDBCommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if name != CurrentName {
		return s.store.Open(ctx, name)
	}
	version, manifest, err := s.latest(ctx)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, blobstore.ErrNotFound
	}
	return blobstore.NewBytesBlob([]byte(manifest)), nil
}

// Put commits CURRENT conditionally and forwards other names.
func (s *DDBCommitStore) Put(ctx context.Context, name string, data []byte) error {
	if name == CurrentName {
		return s.commit(ctx, string(data))
	}
	return s.store.Put(ctx, name, data)
}

// Create forwards to S3. CURRENT must be written with Put.
func (s *DDBCommitStore) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	if name == CurrentName {
		return nil, fmt.Errorf("s3: %s must be written with Put", CurrentName)
	}
	return s.store.Create(ctx, name)
}

// Delete forwards to S3.
func (s *DDBCommitStore) Delete(ctx context.Context, name string) error {
	return s.store.Delete(ctx, name)
}

// List forwards to S3.
func (s *DDBCommitStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.store.List(ctx, prefix)
}

// Version returns the latest committed version, 0 before the first commit.
func (s *DDBCommitStore) Version(ctx context.Context) (uint64, error) {
	v, _, err := s.latest(ctx)
	return v, err
}

func (s *DDBCommitStore) latest(ctx context.Context) (uint64, string, error) {
	resp, err := s.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.baseURI},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, "", fmt.Errorf("s3: query commit table: %w", err)
	}
	if len(resp.Items) == 0 {
		return 0, "", nil
	}

	item := resp.Items[0]
	v, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("s3: commit item has no numeric version")
	}
	m, ok := item["manifest_path"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("s3: commit item has no manifest_path")
	}
	version, err := strconv.ParseUint(v.Value, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("s3: parse commit version: %w", err)
	}
	return version, m.Value, nil
}

func (s *DDBCommitStore) commit(ctx context.Context, manifest string) error {
	cur, _, err := s.latest(ctx)
	if err != nil {
		return err
	}

	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			"base_uri":      &types.AttributeValueMemberS{Value: s.baseURI},
			"version":       &types.AttributeValueMemberN{Value: strconv.FormatUint(cur+1, 10)},
			"manifest_path": &types.AttributeValueMemberS{Value: manifest},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var cond *types.ConditionalCheckFailedException
		if errors.As(err, &cond) {
			return ErrConcurrentModification
		}
		return fmt.Errorf("s3: commit version %d: %w", cur+1, err)
	}
	return nil
}
