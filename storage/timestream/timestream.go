// Package timestream writes time series points to Amazon Timestream.
package timestream

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/timestreamwrite"
	"github.com/aws/aws-sdk-go-v2/service/timestreamwrite/types"

	"github.com/akhenakh/gridcube/storage"
)

const DimensionDeviceID = "deviceId"

// API is the part of the Timestream write client used here.
type API interface {
	WriteRecords(ctx context.Context, params *timestreamwrite.WriteRecordsInput, optFns ...func(*timestreamwrite.Options)) (*timestreamwrite.WriteRecordsOutput, error)
}

type Writer struct {
	client   API
	database string
	table    string
}

func NewWriter(client API, database, table string) (*Writer, error) {
	if client == nil {
		return nil, errors.New("timestream client is not initialized")
	}
	if database == "" || table == "" {
		return nil, errors.New("timestream database and table must be set")
	}
	return &Writer{client: client, database: database, table: table}, nil
}

// WritePoint writes one BIGINT record per measure, device dimension and time
// are common to all of them.
func (w *Writer) WritePoint(ctx context.Context, p storage.Point) error {
	if len(p.Measures) == 0 {
		return nil
	}

	records := make([]types.Record, len(p.Measures))
	for i, m := range p.Measures {
		records[i] = types.Record{
			MeasureName:      aws.String(m.Name),
			MeasureValue:     aws.String(strconv.FormatInt(m.Value, 10)),
			MeasureValueType: types.MeasureValueTypeBigint,
		}
	}

	_, err := w.client.WriteRecords(ctx, &timestreamwrite.WriteRecordsInput{
		DatabaseName: aws.String(w.database),
		TableName:    aws.String(w.table),
		CommonAttributes: &types.Record{
			Dimensions: []types.Dimension{{
				Name:  aws.String(DimensionDeviceID),
				Value: aws.String(p.DeviceID),
			}},
			Time:     aws.String(strconv.FormatInt(p.Time.UnixMilli(), 10)),
			TimeUnit: types.TimeUnitMilliseconds,
		},
		Records: records,
	})
	if err != nil {
		return fmt.Errorf("failed to write records to timestream: %w", err)
	}
	return nil
}
