package timestream

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/timestreamwrite"
	"github.com/aws/aws-sdk-go-v2/service/timestreamwrite/types"
	"github.com/stretchr/testify/require"

	"github.com/akhenakh/gridcube/payload"
	"github.com/akhenakh/gridcube/storage"
)

type fakeAPI struct {
	calls []*timestreamwrite.WriteRecordsInput
}

func (f *fakeAPI) WriteRecords(ctx context.Context, params *timestreamwrite.WriteRecordsInput, optFns ...func(*timestreamwrite.Options)) (*timestreamwrite.WriteRecordsOutput, error) {
	f.calls = append(f.calls, params)
	return &timestreamwrite.WriteRecordsOutput{}, nil
}

func TestWritePoint(t *testing.T) {
	api := &fakeAPI{}
	w, err := NewWriter(api, "gridcube", "samples")
	require.NoError(t, err)

	ts := time.Unix(1684818475+315964800, 0)
	err = w.WritePoint(context.Background(), storage.Point{
		DeviceID: "dev1",
		Time:     ts,
		Measures: []payload.Measure{
			{Name: payload.MeasureNetworkType, Value: 2},
			{Name: payload.MeasureRSSI, Value: -50},
		},
	})
	require.NoError(t, err)
	require.Len(t, api.calls, 1)

	in := api.calls[0]
	require.Equal(t, "gridcube", aws.ToString(in.DatabaseName))
	require.Equal(t, "samples", aws.ToString(in.TableName))
	require.Equal(t, "2000783275000", aws.ToString(in.CommonAttributes.Time))
	require.Equal(t, types.TimeUnitMilliseconds, in.CommonAttributes.TimeUnit)
	require.Equal(t, "dev1", aws.ToString(in.CommonAttributes.Dimensions[0].Value))

	require.Len(t, in.Records, 2)
	require.Equal(t, "rssi", aws.ToString(in.Records[1].MeasureName))
	require.Equal(t, "-50", aws.ToString(in.Records[1].MeasureValue))
	require.Equal(t, types.MeasureValueTypeBigint, in.Records[1].MeasureValueType)
}

func TestWriteEmptyPoint(t *testing.T) {
	api := &fakeAPI{}
	w, err := NewWriter(api, "gridcube", "samples")
	require.NoError(t, err)
	require.NoError(t, w.WritePoint(context.Background(), storage.Point{DeviceID: "dev1"}))
	require.Empty(t, api.calls)
}
