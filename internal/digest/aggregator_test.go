package digest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kudoslab/kudos-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var jst = time.FixedZone("JST", 9*60*60)

// MockStore is a mock implementation of the aggregator's store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListRecognitionsInRange(ctx context.Context, start, end time.Time) ([]models.Recognition, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Recognition), args.Error(1)
}

func (m *MockStore) ListUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStore) UpsertWeeklyDigest(ctx context.Context, digest *models.WeeklyDigest) (*models.WeeklyDigest, error) {
	args := m.Called(ctx, digest)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	if args.Get(0) == nil {
		// Echo the input back, like the real upsert's RETURNING clause.
		return digest, nil
	}
	return args.Get(0).(*models.WeeklyDigest), nil
}

func (m *MockStore) GetBadgeByKey(ctx context.Context, key string) (*models.Badge, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Badge), args.Error(1)
}

func (m *MockStore) AssignBadge(ctx context.Context, userID, badgeID, weekStart string) (*models.UserBadge, error) {
	args := m.Called(ctx, userID, badgeID, weekStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserBadge), args.Error(1)
}

// The sample week: Monday 2024-06-03 to Sunday 2024-06-09, business time.
func sampleWeek() (time.Time, time.Time) {
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, jst).UTC()
	end := time.Date(2024, 6, 9, 23, 59, 59, 999000000, jst).UTC()
	return start, end
}

func rec(id, from, to string, day int) models.Recognition {
	return models.Recognition{
		ID:         id,
		FromUserID: from,
		ToUserID:   to,
		CreatedAt:  time.Date(2024, 6, day, 10, 0, 0, 0, jst).UTC(),
	}
}

func passthroughUpsert(store *MockStore) {
	store.On("UpsertWeeklyDigest", mock.Anything, mock.Anything).Return(nil, nil)
}

func TestAggregator_Generate(t *testing.T) {
	// Seven events split 4/2/1 across recipients.
	recognitions := []models.Recognition{
		rec("r1", "userB", "userA", 3),
		rec("r2", "userC", "userA", 3),
		rec("r3", "userB", "userA", 4),
		rec("r4", "userC", "userA", 5),
		rec("r5", "userA", "userB", 6),
		rec("r6", "userC", "userB", 7),
		rec("r7", "userA", "userC", 8),
	}

	store := &MockStore{}
	store.On("ListRecognitionsInRange", mock.Anything, mock.Anything, mock.Anything).Return(recognitions, nil)
	store.On("ListUsersByIDs", mock.Anything, mock.Anything).Return([]models.User{
		{ID: "userA", Name: "Akari"},
		{ID: "userB", Name: "Ben"},
		{ID: "userC", Name: "Chika"},
	}, nil)
	passthroughUpsert(store)

	aggregator := NewAggregator(store, jst)
	weekStart, weekEnd := sampleWeek()

	digest, err := aggregator.Generate(context.Background(), weekStart, weekEnd)

	assert.NoError(t, err)
	assert.Equal(t, "2024-06-03", digest.WeekStart)
	assert.Equal(t, "2024-06-09", digest.WeekEnd)
	assert.Equal(t, 7, digest.Stats.TotalRecognitions)

	assert.Equal(t, []models.RankingEntry{
		{UserID: "userA", UserName: "Akari", Count: 4},
		{UserID: "userB", UserName: "Ben", Count: 2},
		{UserID: "userC", UserName: "Chika", Count: 1},
	}, digest.Stats.TopReceivers)

	// Givers: C sent 3, B and A sent 2 each; B was tallied before A.
	assert.Equal(t, []models.RankingEntry{
		{UserID: "userC", UserName: "Chika", Count: 3},
		{UserID: "userB", UserName: "Ben", Count: 2},
		{UserID: "userA", UserName: "Akari", Count: 2},
	}, digest.Stats.TopGivers)

	assert.Equal(t, []string{"r1", "r2", "r3"}, digest.Stats.FeaturedRecognitions)
}

func TestAggregator_GenerateRankingTieBreak(t *testing.T) {
	// Equal counts keep the order in which the ids were first encountered
	// while tallying: A and B both have 2, A was seen first.
	recognitions := []models.Recognition{
		rec("r1", "s1", "userA", 3),
		rec("r2", "s1", "userB", 3),
		rec("r3", "s1", "userA", 4),
		rec("r4", "s1", "userB", 4),
		rec("r5", "s1", "userC", 5),
	}

	store := &MockStore{}
	store.On("ListRecognitionsInRange", mock.Anything, mock.Anything, mock.Anything).Return(recognitions, nil)
	store.On("ListUsersByIDs", mock.Anything, mock.Anything).Return([]models.User{}, nil)
	passthroughUpsert(store)

	aggregator := NewAggregator(store, jst)
	weekStart, weekEnd := sampleWeek()

	digest, err := aggregator.Generate(context.Background(), weekStart, weekEnd)

	assert.NoError(t, err)
	assert.Len(t, digest.Stats.TopReceivers, 3)
	assert.Equal(t, "userA", digest.Stats.TopReceivers[0].UserID)
	assert.Equal(t, "userB", digest.Stats.TopReceivers[1].UserID)
	assert.Equal(t, "userC", digest.Stats.TopReceivers[2].UserID)
}

func TestAggregator_GenerateTopThreeOnly(t *testing.T) {
	// Four distinct recipients, only three ranking slots.
	recognitions := []models.Recognition{
		rec("r1", "s1", "userA", 3), rec("r2", "s1", "userA", 3),
		rec("r3", "s1", "userA", 4), rec("r4", "s1", "userA", 4),
		rec("r5", "s1", "userA", 5),
		rec("r6", "s1", "userB", 5), rec("r7", "s1", "userB", 6),
		rec("r8", "s1", "userB", 6), rec("r9", "s1", "userB", 7),
		rec("r10", "s1", "userB", 7),
		rec("r11", "s1", "userC", 8), rec("r12", "s1", "userC", 8),
		rec("r13", "s1", "userC", 8),
		rec("r14", "s1", "userD", 9),
	}

	store := &MockStore{}
	store.On("ListRecognitionsInRange", mock.Anything, mock.Anything, mock.Anything).Return(recognitions, nil)
	store.On("ListUsersByIDs", mock.Anything, mock.Anything).Return([]models.User{}, nil)
	passthroughUpsert(store)

	aggregator := NewAggregator(store, jst)
	weekStart, weekEnd := sampleWeek()

	digest, err := aggregator.Generate(context.Background(), weekStart, weekEnd)

	assert.NoError(t, err)
	assert.Len(t, digest.Stats.TopReceivers, 3)
	assert.Equal(t, 5, digest.Stats.TopReceivers[0].Count)
	assert.Equal(t, 5, digest.Stats.TopReceivers[1].Count)
	assert.Equal(t, 3, digest.Stats.TopReceivers[2].Count)
	// userA first-seen before userB despite the equal counts.
	assert.Equal(t, "userA", digest.Stats.TopReceivers[0].UserID)
}

func TestAggregator_GenerateUnknownUsers(t *testing.T) {
	recognitions := []models.Recognition{
		rec("r1", "ghost-sender", "ghost-receiver", 3),
	}

	store := &MockStore{}
	store.On("ListRecognitionsInRange", mock.Anything, mock.Anything, mock.Anything).Return(recognitions, nil)
	store.On("ListUsersByIDs", mock.Anything, mock.Anything).Return([]models.User{}, nil)
	passthroughUpsert(store)

	aggregator := NewAggregator(store, jst)
	weekStart, weekEnd := sampleWeek()

	digest, err := aggregator.Generate(context.Background(), weekStart, weekEnd)

	assert.NoError(t, err)
	assert.Equal(t, "Unknown", digest.Stats.TopReceivers[0].UserName)
	assert.Equal(t, "Unknown", digest.Stats.TopGivers[0].UserName)
}

func TestAggregator_GenerateEmptyWeek(t *testing.T) {
	store := &MockStore{}
	store.On("ListRecognitionsInRange", mock.Anything, mock.Anything, mock.Anything).Return([]models.Recognition{}, nil)
	passthroughUpsert(store)

	aggregator := NewAggregator(store, jst)
	weekStart, weekEnd := sampleWeek()

	digest, err := aggregator.Generate(context.Background(), weekStart, weekEnd)

	assert.NoError(t, err)
	assert.Equal(t, 0, digest.Stats.TotalRecognitions)
	assert.Empty(t, digest.Stats.TopReceivers)
	assert.Empty(t, digest.Stats.TopGivers)
	assert.Empty(t, digest.Stats.FeaturedRecognitions)

	// An empty week resolves no names at all.
	store.AssertNotCalled(t, "ListUsersByIDs", mock.Anything, mock.Anything)
}

func TestAggregator_GenerateReadFailureAborts(t *testing.T) {
	store := &MockStore{}
	store.On("ListRecognitionsInRange", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	aggregator := NewAggregator(store, jst)
	weekStart, weekEnd := sampleWeek()

	digest, err := aggregator.Generate(context.Background(), weekStart, weekEnd)

	assert.Error(t, err)
	assert.Nil(t, digest)
	store.AssertNotCalled(t, "UpsertWeeklyDigest", mock.Anything, mock.Anything)
}

func TestAggregator_GenerateNameLookupFailureAborts(t *testing.T) {
	store := &MockStore{}
	store.On("ListRecognitionsInRange", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Recognition{rec("r1", "userB", "userA", 3)}, nil)
	store.On("ListUsersByIDs", mock.Anything, mock.Anything).
		Return(nil, errors.New("timeout"))

	aggregator := NewAggregator(store, jst)
	weekStart, weekEnd := sampleWeek()

	digest, err := aggregator.Generate(context.Background(), weekStart, weekEnd)

	assert.Error(t, err)
	assert.Nil(t, digest)
	store.AssertNotCalled(t, "UpsertWeeklyDigest", mock.Anything, mock.Anything)
}

func TestAggregator_GenerateWriteFailurePropagates(t *testing.T) {
	store := &MockStore{}
	store.On("ListRecognitionsInRange", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Recognition{rec("r1", "userB", "userA", 3)}, nil)
	store.On("ListUsersByIDs", mock.Anything, mock.Anything).Return([]models.User{}, nil)
	store.On("UpsertWeeklyDigest", mock.Anything, mock.Anything).
		Return(nil, errors.New("unique constraint violation"))

	aggregator := NewAggregator(store, jst)
	weekStart, weekEnd := sampleWeek()

	digest, err := aggregator.Generate(context.Background(), weekStart, weekEnd)

	assert.Error(t, err)
	assert.Nil(t, digest)
}

func TestAggregator_GenerateRegenerationReplacesPayload(t *testing.T) {
	// Scenario E: a second run over the same window reflects only the new
	// event set; both upserts carry the identical week key.
	store := &MockStore{}
	store.On("ListRecognitionsInRange", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Recognition{rec("r1", "userB", "userA", 3)}, nil).Once()
	store.On("ListRecognitionsInRange", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Recognition{
			rec("r1", "userB", "userA", 3),
			rec("r2", "userC", "userA", 4),
		}, nil).Once()
	store.On("ListUsersByIDs", mock.Anything, mock.Anything).Return([]models.User{}, nil)
	passthroughUpsert(store)

	aggregator := NewAggregator(store, jst)
	weekStart, weekEnd := sampleWeek()

	first, err := aggregator.Generate(context.Background(), weekStart, weekEnd)
	assert.NoError(t, err)
	second, err := aggregator.Generate(context.Background(), weekStart, weekEnd)
	assert.NoError(t, err)

	assert.Equal(t, first.WeekStart, second.WeekStart)
	assert.Equal(t, first.WeekEnd, second.WeekEnd)
	assert.Equal(t, 1, first.Stats.TotalRecognitions)
	assert.Equal(t, 2, second.Stats.TotalRecognitions)
}

func TestAggregator_WeekFor(t *testing.T) {
	aggregator := NewAggregator(&MockStore{}, jst)

	start, end := aggregator.WeekFor(time.Date(2024, 6, 5, 12, 0, 0, 0, jst))

	expectedStart, expectedEnd := sampleWeek()
	assert.Equal(t, expectedStart, start)
	assert.Equal(t, expectedEnd, end)
}

func TestAggregator_AwardMVPBadge(t *testing.T) {
	digest := &models.WeeklyDigest{
		WeekStart: "2024-06-03",
		WeekEnd:   "2024-06-09",
		Stats: models.WeeklyStats{
			TopReceivers: []models.RankingEntry{{UserID: "userA", UserName: "Akari", Count: 4}},
		},
	}

	store := &MockStore{}
	store.On("GetBadgeByKey", mock.Anything, MVPBadgeKey).
		Return(&models.Badge{ID: "badge-1", Key: MVPBadgeKey}, nil)
	store.On("AssignBadge", mock.Anything, "userA", "badge-1", "2024-06-03").
		Return(&models.UserBadge{}, nil)

	aggregator := NewAggregator(store, jst)
	aggregator.AwardMVPBadge(context.Background(), digest)

	store.AssertExpectations(t)
}

func TestAggregator_AwardMVPBadgeNoReceivers(t *testing.T) {
	store := &MockStore{}
	aggregator := NewAggregator(store, jst)

	aggregator.AwardMVPBadge(context.Background(), &models.WeeklyDigest{})

	store.AssertNotCalled(t, "GetBadgeByKey", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "AssignBadge", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAggregator_AwardMVPBadgeMissingDefinition(t *testing.T) {
	digest := &models.WeeklyDigest{
		Stats: models.WeeklyStats{
			TopReceivers: []models.RankingEntry{{UserID: "userA", Count: 1}},
		},
	}

	store := &MockStore{}
	store.On("GetBadgeByKey", mock.Anything, MVPBadgeKey).
		Return(nil, errors.New("record not found"))

	aggregator := NewAggregator(store, jst)
	aggregator.AwardMVPBadge(context.Background(), digest)

	store.AssertNotCalled(t, "AssignBadge", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
