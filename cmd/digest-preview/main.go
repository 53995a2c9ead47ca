// Command digest-preview runs the weekly digest aggregation against an
// in-memory sample data set and prints the result, without touching a real
// database. Useful for checking the ranking and featured-event selection.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kudoslab/kudos-bot/internal/database"
	"github.com/kudoslab/kudos-bot/internal/digest"
	"github.com/kudoslab/kudos-bot/internal/models"
)

// memoryStore implements database.Store over fixed slices
type memoryStore struct {
	users        []models.User
	recognitions []models.Recognition
	digests      map[string]*models.WeeklyDigest
}

func (m *memoryStore) CreateRecognition(_ context.Context, rec *models.Recognition) error {
	m.recognitions = append(m.recognitions, *rec)
	return nil
}

func (m *memoryStore) CountRecognitions(_ context.Context, start, end time.Time) (int, error) {
	count := 0
	for _, rec := range m.recognitions {
		if !rec.CreatedAt.Before(start) && rec.CreatedAt.Before(end) {
			count++
		}
	}
	return count, nil
}

func (m *memoryStore) ListRecognitionsSince(_ context.Context, since time.Time) ([]models.Recognition, error) {
	var out []models.Recognition
	for _, rec := range m.recognitions {
		if !rec.CreatedAt.Before(since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memoryStore) ListRecognitionsInRange(_ context.Context, start, end time.Time) ([]models.Recognition, error) {
	var out []models.Recognition
	for _, rec := range m.recognitions {
		if !rec.CreatedAt.Before(start) && !rec.CreatedAt.After(end) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memoryStore) ListFeed(_ context.Context, _ models.FeedFilters, limit, offset int) ([]models.Recognition, error) {
	if offset >= len(m.recognitions) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.recognitions) {
		end = len(m.recognitions)
	}
	return m.recognitions[offset:end], nil
}

func (m *memoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	return m.users, nil
}

func (m *memoryStore) ListUsersByIDs(_ context.Context, ids []string) ([]models.User, error) {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var out []models.User
	for _, u := range m.users {
		if _, ok := wanted[u.ID]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memoryStore) UpsertWeeklyDigest(_ context.Context, d *models.WeeklyDigest) (*models.WeeklyDigest, error) {
	m.digests[d.WeekStart+"/"+d.WeekEnd] = d
	return d, nil
}

func (m *memoryStore) GetWeeklyDigest(_ context.Context, weekStart string) (*models.WeeklyDigest, error) {
	for _, d := range m.digests {
		if d.WeekStart == weekStart {
			return d, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memoryStore) ListWeeklyDigests(_ context.Context, _ int) ([]models.WeeklyDigest, error) {
	var out []models.WeeklyDigest
	for _, d := range m.digests {
		out = append(out, *d)
	}
	return out, nil
}

func (m *memoryStore) ListBadges(_ context.Context) ([]models.Badge, error) {
	return nil, nil
}

func (m *memoryStore) GetBadgeByKey(_ context.Context, _ string) (*models.Badge, error) {
	return nil, database.ErrNotFound
}

func (m *memoryStore) AssignBadge(_ context.Context, _, _, _ string) (*models.UserBadge, error) {
	return nil, database.ErrNotFound
}

func main() {
	fmt.Println("Kudos Bot - Weekly Digest Preview")
	fmt.Println("=================================")

	loc := time.FixedZone("JST", 9*60*60)

	// A sample week: Monday 2024-06-03 to Sunday 2024-06-09, business time.
	reference := time.Date(2024, 6, 5, 12, 0, 0, 0, loc)

	at := func(day, hour int) time.Time {
		return time.Date(2024, 6, day, hour, 0, 0, 0, loc).UTC()
	}

	store := &memoryStore{
		users: []models.User{
			{ID: "u-akari", Name: "Akari"},
			{ID: "u-ben", Name: "Ben"},
			{ID: "u-chika", Name: "Chika"},
			{ID: "u-daiki", Name: "Daiki"},
		},
		recognitions: []models.Recognition{
			{ID: "r1", FromUserID: "u-ben", ToUserID: "u-akari", Message: "障害対応ありがとう！", EffectKey: "confetti", CreatedAt: at(3, 10)},
			{ID: "r2", FromUserID: "u-chika", ToUserID: "u-akari", Message: "レビュー助かりました", EffectKey: "clap", CreatedAt: at(3, 15)},
			{ID: "r3", FromUserID: "u-daiki", ToUserID: "u-akari", Message: "ドキュメント最高", EffectKey: "sparkle", CreatedAt: at(4, 11)},
			{ID: "r4", FromUserID: "u-ben", ToUserID: "u-akari", Message: "いつも素早いレス", EffectKey: "none", CreatedAt: at(5, 9)},
			{ID: "r5", FromUserID: "u-akari", ToUserID: "u-ben", Message: "ナイス提案でした", EffectKey: "firework", CreatedAt: at(6, 14)},
			{ID: "r6", FromUserID: "u-chika", ToUserID: "u-ben", Message: "会議の進行ありがとう", EffectKey: "stamp", CreatedAt: at(7, 16)},
			{ID: "r7", FromUserID: "u-akari", ToUserID: "u-chika", Message: "新人サポート感謝です", EffectKey: "clap", CreatedAt: at(8, 18)},
		},
		digests: make(map[string]*models.WeeklyDigest),
	}

	aggregator := digest.NewAggregator(store, loc)
	weekStart, weekEnd := aggregator.WeekFor(reference)

	fmt.Printf("\nWeek window: %s - %s\n", weekStart.Format(time.RFC3339), weekEnd.Format(time.RFC3339))

	result, err := aggregator.Generate(context.Background(), weekStart, weekEnd)
	if err != nil {
		fmt.Printf("Error generating digest: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Printf("WEEKLY KUDOS DIGEST %s - %s\n", result.WeekStart, result.WeekEnd)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Total recognitions: %d\n", result.Stats.TotalRecognitions)

	fmt.Println("\nTop receivers:")
	for i, entry := range result.Stats.TopReceivers {
		fmt.Printf("   %d. %-10s %d\n", i+1, entry.UserName, entry.Count)
	}

	fmt.Println("\nTop givers:")
	for i, entry := range result.Stats.TopGivers {
		fmt.Printf("   %d. %-10s %d\n", i+1, entry.UserName, entry.Count)
	}

	fmt.Printf("\nFeatured recognitions: %s\n", strings.Join(result.Stats.FeaturedRecognitions, ", "))

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println("\nRaw digest record:")
	fmt.Println(string(data))
}
