// Package dynamo stores latest samples and device info records in DynamoDB.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/akhenakh/gridcube/storage"
)

const (
	AttrDeviceID  = "deviceId"
	AttrTimestamp = "timestamp"
	AttrUpdatedAt = "updatedAt"
)

// API is the part of the DynamoDB client used here.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

type Store struct {
	Client API
	// LatestTable is keyed by (deviceId, timestamp)
	LatestTable string
	// DeviceTable is keyed by deviceId
	DeviceTable string
}

func NewStore(client API, latestTable, deviceTable string) (*Store, error) {
	if client == nil {
		return nil, errors.New("dynamodb client is not initialized")
	}
	if latestTable == "" {
		return nil, errors.New("latest sample table name is not set")
	}
	if deviceTable == "" {
		return nil, errors.New("device table name is not set")
	}
	return &Store{
		Client:      client,
		LatestTable: latestTable,
		DeviceTable: deviceTable,
	}, nil
}

// PutLatest writes one item per sample, measures are top level numbers.
func (s *Store) PutLatest(ctx context.Context, ls storage.LatestSample) error {
	item, err := attributevalue.MarshalMap(ls.Measures)
	if err != nil {
		return fmt.Errorf("failed to marshal latest sample: %w", err)
	}
	item[AttrDeviceID] = &types.AttributeValueMemberS{Value: ls.DeviceID}
	item[AttrTimestamp] = &types.AttributeValueMemberN{Value: strconv.FormatInt(ls.Time.UnixMilli(), 10)}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.LatestTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to store latest sample into DynamoDB: %w", err)
	}
	return nil
}

// TouchDevice sets updatedAt, and attrs if any, on the device record.
// Other attributes written at provisioning time are left untouched.
func (s *Store) TouchDevice(ctx context.Context, deviceID string, at time.Time, attrs map[string]string) error {
	sets := []string{"#updatedAt = :updatedAt"}
	names := map[string]string{"#updatedAt": AttrUpdatedAt}
	values := map[string]types.AttributeValue{
		":updatedAt": &types.AttributeValueMemberS{Value: at.UTC().Format(time.RFC3339Nano)},
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		n, v := fmt.Sprintf("#a%d", i), fmt.Sprintf(":a%d", i)
		sets = append(sets, n+" = "+v)
		names[n] = k
		values[v] = &types.AttributeValueMemberS{Value: attrs[k]}
	}

	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.DeviceTable),
		Key: map[string]types.AttributeValue{
			AttrDeviceID: &types.AttributeValueMemberS{Value: deviceID},
		},
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return fmt.Errorf("failed to update device info: %w", err)
	}
	return nil
}
