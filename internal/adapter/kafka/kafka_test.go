package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/covid-series-service/internal/domain"
	"github.com/couchcryptid/covid-series-service/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(t *testing.T) *snapshot.Snapshot {
	t.Helper()
	days := []string{"2020-01-22", "2020-01-23"}
	series := func(a, b int64) *domain.Series {
		s, err := domain.NewSeries(days, []domain.Row{
			{Location: domain.Location{ProvinceState: "Hubei", CountryRegion: "China"}, Counts: []int64{a, b}},
		})
		require.NoError(t, err)
		return s
	}
	agg, err := domain.NewAggregator(domain.Tables{
		Confirmed: series(444, 446),
		Deaths:    series(17, 17),
		Recovered: series(30, 28),
	})
	require.NoError(t, err)
	return snapshot.New(agg, "testdata", time.Date(2020, time.March, 30, 6, 0, 0, 0, time.UTC))
}

func TestSummaryMessages(t *testing.T) {
	snap := testSnapshot(t)

	msgs, err := summaryMessages(snap)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, []byte("2020-01-22"), msgs[0].Key)
	assert.Equal(t, []byte("2020-01-23"), msgs[1].Key)

	var first DailySummary
	require.NoError(t, json.Unmarshal(msgs[0].Value, &first))
	assert.Equal(t, int64(444), first.Confirmed)
	assert.Nil(t, first.ConfirmedDelta, "first day has no previous day")
	assert.Nil(t, first.RecoveredDelta)
	assert.Equal(t, snap.ID.String(), first.SnapshotID)

	var second DailySummary
	require.NoError(t, json.Unmarshal(msgs[1].Value, &second))
	require.NotNil(t, second.ConfirmedDelta)
	assert.Equal(t, int64(2), *second.ConfirmedDelta)
	require.NotNil(t, second.DeathsDelta)
	assert.Equal(t, int64(0), *second.DeathsDelta)
	require.NotNil(t, second.RecoveredDelta)
	assert.Equal(t, int64(-2), *second.RecoveredDelta)
}

func TestSerializeToMessage(t *testing.T) {
	snap := testSnapshot(t)
	delta := int64(2)
	summary := DailySummary{
		Day:            "2020-01-23",
		Confirmed:      446,
		ConfirmedDelta: &delta,
		SnapshotID:     snap.ID.String(),
	}

	msg, err := serializeToMessage(summary, snap)
	require.NoError(t, err)

	assert.Equal(t, []byte("2020-01-23"), msg.Key)
	assert.Contains(t, string(msg.Value), `"confirmed_delta":2`)
	assert.Contains(t, string(msg.Value), `"deaths_delta":null`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "snapshot_id", msg.Headers[0].Key)
	assert.Equal(t, []byte(snap.ID.String()), msg.Headers[0].Value)
	assert.Equal(t, "loaded_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2020-03-30T06:00:00Z"), msg.Headers[1].Value)
}
