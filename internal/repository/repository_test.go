package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worktime/internal/model"
	"worktime/internal/store"
)

func strPtr(s string) *string { return &s }

func sampleLog(id, username string, at time.Time) model.WorkLog {
	return model.WorkLog{
		ID:              id,
		Username:        username,
		JobName:         "Site survey",
		CheckInTime:     at,
		CheckInLocation: model.Location{Lat: 13.7563, Lng: 100.5018},
		Status:          model.StatusCheckedIn,
	}
}

func TestUserRepository_EmptySlot(t *testing.T) {
	repo := NewUserRepository(store.NewMemory())

	user, err := repo.Current(context.Background())

	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(store.NewMemory())

	require.NoError(t, repo.Save(ctx, &model.User{Username: "alice", DeviceID: "d1", Role: model.RoleUser}))
	require.NoError(t, repo.Save(ctx, &model.User{Username: "bob", DeviceID: "d1", Role: model.RoleUser}))

	user, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
}

func TestUserRepository_Corrupt(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Set(ctx, KeyUser, "{not json"))

	_, err := NewUserRepository(kv).Current(ctx)

	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func TestDeviceRepository_StableFingerprint(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()

	first, err := NewDeviceRepository(kv).Fingerprint(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	// A new repository over the same store sees the persisted value
	second, err := NewDeviceRepository(kv).Fingerprint(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	raw, ok, _ := kv.Get(ctx, KeyDeviceID)
	assert.True(t, ok)
	assert.Equal(t, first, raw)
}

func TestWorkLogRepository_AppendAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkLogRepository(store.NewMemory())
	now := time.Now()

	require.NoError(t, repo.Append(ctx, ptr(sampleLog("a", "alice", now))))
	require.NoError(t, repo.Append(ctx, ptr(sampleLog("b", "bob", now))))

	logs, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "a", logs[0].ID)
	assert.Equal(t, "b", logs[1].ID)

	found, err := repo.FindByID(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "bob", found.Username)

	missing, err := repo.FindByID(ctx, "zzz")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestWorkLogRepository_DuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkLogRepository(store.NewMemory())

	require.NoError(t, repo.Append(ctx, ptr(sampleLog("a", "alice", time.Now()))))
	err := repo.Append(ctx, ptr(sampleLog("a", "bob", time.Now())))

	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestWorkLogRepository_ReplaceKeepsPosition(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkLogRepository(store.NewMemory())
	now := time.Now()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Append(ctx, ptr(sampleLog(id, "alice", now))))
	}

	updated := sampleLog("b", "alice", now)
	out := now.Add(time.Hour)
	updated.Status = model.StatusCheckedOut
	updated.CheckOutTime = &out
	updated.CheckOutLocation = &model.Location{Lat: 13.7570, Lng: 100.5018}
	require.NoError(t, repo.Replace(ctx, &updated))

	logs, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "b", logs[1].ID)
	assert.Equal(t, model.StatusCheckedOut, logs[1].Status)
}

func TestWorkLogRepository_ReplaceUnknown(t *testing.T) {
	repo := NewWorkLogRepository(store.NewMemory())

	err := repo.Replace(context.Background(), ptr(sampleLog("nope", "alice", time.Now())))

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWorkLogRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	repo := NewWorkLogRepository(kv)

	in := time.Date(2024, 3, 5, 8, 30, 0, 123000000, time.UTC)
	out := in.Add(95 * time.Minute)
	closed := sampleLog("closed", "alice", in)
	closed.Status = model.StatusCheckedOut
	closed.CheckOutTime = &out
	closed.CheckOutLocation = &model.Location{Lat: 13.757, Lng: 100.5018}
	closed.AISummary = strPtr("Completed survey in 1.58 hours.")
	closed.CheckInPlace = strPtr("Lumphini Park")
	open := sampleLog("open", "bob", in.Add(time.Hour))

	require.NoError(t, repo.Append(ctx, &closed))
	require.NoError(t, repo.Append(ctx, &open))

	// A fresh repository decodes exactly what was written
	logs, err := NewWorkLogRepository(kv).FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.True(t, logs[0].CheckInTime.Equal(closed.CheckInTime))
	assert.True(t, logs[0].CheckOutTime.Equal(*closed.CheckOutTime))
	logs[0].CheckInTime, logs[0].CheckOutTime = closed.CheckInTime, closed.CheckOutTime
	logs[1].CheckInTime = open.CheckInTime
	assert.Equal(t, closed, logs[0])
	assert.Equal(t, open, logs[1])
}

func TestWorkLogRepository_Corrupt(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Set(ctx, KeyLogs, `[{"id":`))

	_, err := NewWorkLogRepository(kv).FindAll(ctx)

	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func ptr(l model.WorkLog) *model.WorkLog { return &l }
