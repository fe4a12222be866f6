package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go-fcmap/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := InitDB(filepath.Join(t.TempDir(), "fcmap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func endpoint(wwpn string, ts time.Time) *models.Endpoint {
	return &models.Endpoint{
		WWPN:        wwpn,
		Vendor:      models.VendorBrocade,
		SwitchName:  "DCX_A",
		SwitchIP:    "10.1.1.11",
		FabricScope: "128",
		PortIndex:   "4/12",
		LoginType:   models.LoginLocal,
		AliasName:   "peer",
		Zones:       []string{"z_peer"},
		LinkSpeed:   "N16",
		Timestamp:   ts,
	}
}

func TestUpsertEndpointIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	t1 := time.Date(2026, 10, 19, 8, 0, 0, 0, time.FixedZone("UTC+8", 8*3600))

	created, err := s.UpsertEndpoint(ctx, endpoint("10:00:c4:f5:7c:39:66:e2", t1))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.UpsertEndpoint(ctx, endpoint("10:00:c4:f5:7c:39:66:e2", t1.Add(time.Minute)))
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, s.DB.Model(&models.Endpoint{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := s.FindEndpoint(ctx, "10:00:C4:F5:7C:39:66:E2")
	require.NoError(t, err)
	assert.True(t, got.Timestamp.Equal(t1.Add(time.Minute)))
	assert.Equal(t, []string{"z_peer"}, got.Zones)
}

func TestUpsertEndpointReplacesInFull(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now()

	_, err := s.UpsertEndpoint(ctx, endpoint("10:00:c4:f5:7c:39:66:e2", now))
	require.NoError(t, err)

	moved := &models.Endpoint{
		WWPN:      "10:00:c4:f5:7c:39:66:e2",
		Vendor:    models.VendorCisco,
		SwitchIP:  "10.2.2.2",
		PortIndex: "fc1/3",
		LoginType: models.LoginRemote,
		Zones:     []string{},
		Timestamp: now,
	}
	_, err = s.UpsertEndpoint(ctx, moved)
	require.NoError(t, err)

	got, err := s.FindEndpoint(ctx, moved.WWPN)
	require.NoError(t, err)
	assert.Equal(t, models.VendorCisco, got.Vendor)
	assert.Equal(t, "fc1/3", got.PortIndex)
	assert.Empty(t, got.AliasName)
	assert.Empty(t, got.LinkSpeed)
	assert.Empty(t, got.Zones)
}

func TestFindEndpointNotFound(t *testing.T) {
	_, err := openTestStore(t).FindEndpoint(context.Background(), "10:00:00:00:00:00:00:00")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchEndpoints(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	for _, w := range []string{"10:00:00:00:c9:12:34:56", "10:00:00:00:c9:99:99:99", "50:06:01:60:3e:a0:12:34"} {
		_, err := s.UpsertEndpoint(ctx, endpoint(w, time.Now()))
		require.NoError(t, err)
	}

	got, err := s.SearchEndpoints(ctx, "C9:", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "10:00:00:00:c9:12:34:56", got[0].WWPN)

	got, err = s.SearchEndpoints(ctx, "12:34", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.SearchEndpoints(ctx, "%", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpsertZone(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	z := &models.Zone{ZoneName: "z1", Members: []string{"host1 => NA"}, Timestamp: time.Now()}
	created, err := s.UpsertZone(ctx, z)
	require.NoError(t, err)
	assert.True(t, created)

	z2 := &models.Zone{ZoneName: "z1", Members: []string{"host1 => 10:00:00:00:c9:12:34:56"}, Timestamp: time.Now()}
	created, err = s.UpsertZone(ctx, z2)
	require.NoError(t, err)
	assert.False(t, created)

	got, err := s.FindZone(ctx, "z1")
	require.NoError(t, err)
	assert.Equal(t, z2.Members, got.Members)

	_, err = s.FindZone(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordPortStatusCountsChanges(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	sw := &models.Switch{Name: "DCX_A", IPAddress: "10.1.1.11"}
	require.NoError(t, s.UpsertSwitch(ctx, sw))
	require.NotZero(t, sw.ID)

	require.NoError(t, s.RecordPortStatus(ctx, sw.ID, 1, "fc1/1", "UP"))
	require.NoError(t, s.RecordPortStatus(ctx, sw.ID, 1, "fc1/1", "UP"))
	require.NoError(t, s.RecordPortStatus(ctx, sw.ID, 1, "fc1/1", "DOWN"))

	ports, err := s.PortStatuses(ctx, sw.ID)
	require.NoError(t, err)
	require.Len(t, ports, 1)
	assert.Equal(t, "DOWN", ports[0].Status)
	assert.Equal(t, 1, ports[0].StatusChanges)

	again := &models.Switch{Name: "DCX_A-renamed", IPAddress: "10.1.1.11"}
	require.NoError(t, s.UpsertSwitch(ctx, again))
	assert.Equal(t, sw.ID, again.ID)
	switches, err := s.ListSwitches(ctx)
	require.NoError(t, err)
	assert.Len(t, switches, 1)
}
