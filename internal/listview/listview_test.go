// filepath: internal/listview/listview_test.go
package listview

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rec struct {
	ID       int64
	Name     string
	Email    string
	Status   string
	Group    string
	Estimate string
}

type recStats struct {
	Total, Active, Locked int
	Rate                  int
}

var recRules = Rules[rec]{
	Tabs: []Tab[rec]{
		{Key: "all", Label: "All"},
		{Key: "active", Label: "Active", Match: func(r rec) bool { return r.Status == "Active" }},
	},
	Filters: []FilterDef[rec]{
		Equals("status", "Status", func(r rec) string { return r.Status }),
		Equals("group", "Group", func(r rec) string { return r.Group }),
		{Key: "estimate", Match: func(r rec, v string) bool { return EstimatedTimeBucket(r.Estimate, v) }},
	},
	Searchable: func(r rec) []string { return []string{r.Name, r.Email} },
}

func sample(n int) []rec {
	out := make([]rec, n)
	statuses := []string{"Active", "Inactive", "Locked"}
	groups := []string{"Engineering", "QA", ""}
	for i := range out {
		out[i] = rec{
			ID:       int64(i + 1),
			Name:     fmt.Sprintf("user-%02d", i+1),
			Email:    fmt.Sprintf("u%d@example.com", i+1),
			Status:   statuses[i%3],
			Group:    groups[i%3],
			Estimate: fmt.Sprintf("%d hours", i%8),
		}
	}
	return out
}

func ids(list []rec) []int64 {
	out := make([]int64, 0, len(list))
	for _, r := range list {
		out = append(out, r.ID)
	}
	return out
}

func newRecController(fetch func(context.Context) ([]rec, error), sides ...SideFetch) *Controller[rec, recStats] {
	return New(Config[rec, recStats]{
		Name:     "records",
		PageSize: 5,
		Rules:    recRules,
		ID:       func(r rec) int64 { return r.ID },
		Fetch:    fetch,
		Sides:    sides,
		Stats: func(items []rec, _ Sides) recStats {
			s := recStats{Total: len(items)}
			for _, r := range items {
				switch r.Status {
				case "Active":
					s.Active++
				case "Locked":
					s.Locked++
				}
			}
			s.Rate = Rate(s.Active, s.Total)
			return s
		},
		Describe: func(err error, fallback string) string {
			if err.Error() != "" {
				return err.Error()
			}
			return fallback
		},
	})
}

func fixed(items []rec) func(context.Context) ([]rec, error) {
	return func(context.Context) ([]rec, error) { return items, nil }
}

func TestFilterIdempotent(t *testing.T) {
	items := sample(30)
	selectors := []Selector{
		{Tab: All},
		{Tab: "active", Query: "user-1"},
		{Tab: "all", Filters: map[string]string{"group": "QA"}},
		{Filters: map[string]string{"status": "Locked", "estimate": BucketMedium}, Query: "EXAMPLE"},
	}
	for i, sel := range selectors {
		once := Filter(items, recRules, sel)
		twice := Filter(once, recRules, sel)
		assert.Equal(t, ids(once), ids(twice), "selector %d", i)
	}
}

func TestAllFiltersEqualTabOnly(t *testing.T) {
	items := sample(20)
	for _, tab := range []string{All, "all", "active"} {
		tabOnly := Filter(items, recRules, Selector{Tab: tab})
		allSet := Filter(items, recRules, Selector{
			Tab:     tab,
			Filters: map[string]string{"status": All, "group": All, "estimate": All},
		})
		assert.ElementsMatch(t, ids(tabOnly), ids(allSet))
	}
}

func TestSearchMatchesAnyField(t *testing.T) {
	users := []rec{
		{ID: 1, Name: "alice"},
		{ID: 2, Name: "bob", Email: "alice@x.com"},
		{ID: 3, Name: "carol", Email: "carol@x.com"},
	}
	got := Filter(users, recRules, Selector{Query: "alice"})
	assert.Equal(t, []int64{1, 2}, ids(got))

	assert.Len(t, Filter(users, recRules, Selector{Query: "ALICE"}), 2)
	assert.Len(t, Filter(users, recRules, Selector{}), 3, "empty query matches everything")
}

func TestPaginationPartitions(t *testing.T) {
	for _, n := range []int{0, 1, 4, 5, 6, 12, 23} {
		for _, size := range []int{1, 5, 10} {
			items := sample(n)
			seen := map[int64]bool{}
			var union []int64
			pages := TotalPages(n, size)
			for p := 1; p <= pages; p++ {
				page := Paginate(items, p, size)
				assert.LessOrEqual(t, len(page), size)
				for _, r := range page {
					assert.False(t, seen[r.ID], "id %d on two pages", r.ID)
					seen[r.ID] = true
					union = append(union, r.ID)
				}
			}
			assert.Equal(t, len(items), len(union), "n=%d size=%d", n, size)
			assert.Empty(t, Paginate(items, pages+1, size))
		}
	}
}

func pagesOf(links []PageLink) []int {
	var out []int
	for _, l := range links {
		if l.Ellipsis {
			out = append(out, 0)
		} else {
			out = append(out, l.Page)
		}
	}
	return out
}

func TestPageWindow(t *testing.T) {
	tests := []struct {
		current, total int
		want           []int // 0 marks an ellipsis
	}{
		{2, 3, []int{1, 2, 3}},
		{1, 1, []int{1}},
		{1, 0, []int{1}},
		{1, 10, []int{1, 2, 0, 10}},
		{4, 10, []int{1, 0, 3, 4, 5, 0, 10}},
		{8, 10, []int{1, 0, 7, 8, 9, 10}},
		{10, 10, []int{1, 0, 9, 10}},
		{3, 5, []int{1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pagesOf(PageWindow(tt.current, tt.total)), "current=%d total=%d", tt.current, tt.total)
	}
}

func TestWindowScenario(t *testing.T) {
	items := sample(12)
	c := newRecController(fixed(items))
	require.NoError(t, c.Load(context.Background()))
	require.True(t, c.GoToPage(2))

	assert.Equal(t, ids(items[5:10]), ids(c.Page()))
	p := c.Pagination()
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, []int{1, 2, 3}, pagesOf(p.Window))
	assert.True(t, p.Window[1].Current)

	assert.False(t, c.GoToPage(0))
	assert.False(t, c.GoToPage(4))
	assert.Equal(t, 2, c.Pagination().Page)

	c.SetQuery("user")
	assert.Equal(t, 1, c.Pagination().Page, "re-filtering resets to page 1")
}

func TestStatsHelpers(t *testing.T) {
	assert.Equal(t, 0, ProgressPercent(0, 0, 0))
	assert.Equal(t, 50, ProgressPercent(1, 2, 4))
	assert.Equal(t, 100, ProgressPercent(3, 0, 3))
	assert.Equal(t, 0, Rate(0, 0), "zero division yields 0")
	assert.Equal(t, 67, Rate(2, 3))
	assert.Equal(t, 100, Rate(5, 3))
}

func TestParseLeadingFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3 hours", 3, true},
		{"  2.5h", 2.5, true},
		{"-1 day", -1, true},
		{".5", 0.5, true},
		{"4.", 4, true},
		{"1e2 minutes", 100, true},
		{"2e", 2, true},
		{"Infinity", math.Inf(1), true},
		{"about 3 hours", 0, false},
		{"", 0, false},
		{"-", 0, false},
		{".", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseLeadingFloat(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestEstimatedTimeBucket(t *testing.T) {
	assert.True(t, EstimatedTimeBucket("1.5 hours", BucketShort))
	assert.True(t, EstimatedTimeBucket("2 hours", BucketMedium))
	assert.True(t, EstimatedTimeBucket("5 hours", BucketMedium))
	assert.True(t, EstimatedTimeBucket("6 hours", BucketLong))
	assert.False(t, EstimatedTimeBucket("5.5 hours", BucketMedium))
	for _, b := range []string{BucketShort, BucketMedium, BucketLong} {
		assert.False(t, EstimatedTimeBucket("unknown", b))
	}
	assert.True(t, EstimatedTimeBucket("unknown", All))
}

func TestDateRangeStart(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

	start, ok := DateRangeStart(RangeToday, now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), start)

	start, _ = DateRangeStart(RangeYesterday, now)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), start)

	start, _ = DateRangeStart(RangeLast7Days, now)
	assert.Equal(t, time.Date(2024, 3, 3, 15, 30, 0, 0, time.UTC), start)

	_, ok = DateRangeStart(All, now)
	assert.False(t, ok)
}

func TestDistinctOptions(t *testing.T) {
	assert.Equal(t, []string{All, "QA", "Engineering"}, DistinctOptions([]string{"QA", "", "Engineering", "QA"}))
}

func TestLoadWithFailingSide(t *testing.T) {
	c := newRecController(fixed(sample(3)),
		SideFetch{Name: "groups", Fetch: func(context.Context) (any, error) { return nil, errors.New("boom") }},
		SideFetch{Name: "owners", Fetch: func(context.Context) (any, error) { return []string{"ops"}, nil }},
	)
	require.NoError(t, c.Load(context.Background()))

	assert.Len(t, c.Items(), 3)
	assert.Nil(t, c.Side("groups"))
	assert.Equal(t, []string{"ops"}, SideAs[[]string](c.Sides(), "owners"))
	assert.Nil(t, SideAs[[]string](c.Sides(), "groups"))
}

func TestLoadFailureKeepsCollection(t *testing.T) {
	fail := false
	c := newRecController(func(context.Context) ([]rec, error) {
		if fail {
			return nil, errors.New("unreachable")
		}
		return sample(4), nil
	})
	require.NoError(t, c.Load(context.Background()))
	fail = true
	assert.EqualError(t, c.Load(context.Background()), "unreachable")
	assert.Len(t, c.Items(), 4)
}

func TestMutateMerges(t *testing.T) {
	ctx := context.Background()
	c := newRecController(fixed(sample(3)))
	require.NoError(t, c.Load(ctx))
	assert.Equal(t, 1, c.Stats().Active)

	updated, err := c.Mutate(ctx, Mutation[rec]{Op: OpUpdate, Call: func(context.Context) (rec, error) {
		return rec{ID: 2, Name: "user-02", Status: "Active"}, nil
	}})
	require.NoError(t, err)
	assert.Equal(t, "Active", updated.Status)
	assert.Equal(t, 2, c.Stats().Active, "statistics follow the merged record")

	_, err = c.Mutate(ctx, Mutation[rec]{Op: OpCreate, Call: func(context.Context) (rec, error) {
		return rec{ID: 9, Name: "new", Status: "Locked"}, nil
	}})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 9}, ids(c.Items()))

	_, err = c.Mutate(ctx, Mutation[rec]{Op: OpDelete, ID: 1, Call: func(context.Context) (rec, error) {
		return rec{}, nil
	}})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 9}, ids(c.Items()))
	assert.Equal(t, 3, c.Stats().Total)
	assert.Equal(t, Idle, c.State())
}

func TestMutateWithoutRecordRefetches(t *testing.T) {
	ctx := context.Background()
	loads := 0
	c := newRecController(func(context.Context) ([]rec, error) {
		loads++
		items := sample(2)
		if loads > 1 {
			items[1].Status = "Active"
		}
		return items, nil
	})
	require.NoError(t, c.Load(ctx))

	got, err := c.Mutate(ctx, Mutation[rec]{Op: OpUpdate, Call: func(context.Context) (rec, error) {
		return rec{}, nil
	}})
	require.NoError(t, err)
	assert.Zero(t, got.ID)
	assert.Equal(t, 2, loads, "an empty answer reloads the collection")
	assert.Equal(t, []int64{1, 2}, ids(c.Items()), "no blank record is merged")
	assert.Equal(t, 2, c.Stats().Total)
	assert.Equal(t, 2, c.Stats().Active, "statistics follow the refetched collection")
	assert.Equal(t, Idle, c.State())
}

func TestMutateRefetch(t *testing.T) {
	ctx := context.Background()
	loads := 0
	c := newRecController(func(context.Context) ([]rec, error) {
		loads++
		return sample(3), nil
	})
	require.NoError(t, c.Load(ctx))

	_, err := c.Mutate(ctx, Mutation[rec]{Op: OpUpdate, Refetch: true, Call: func(context.Context) (rec, error) {
		return rec{ID: 2, Name: "renamed"}, nil
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
	assert.Equal(t, sample(3), c.Items(), "the refetched collection replaces the merged one")
}

func TestFailedDeleteKeepsItem(t *testing.T) {
	ctx := context.Background()
	c := newRecController(fixed(sample(2)))
	require.NoError(t, c.Load(ctx))

	_, err := c.Mutate(ctx, Mutation[rec]{Op: OpDelete, ID: 1, Fallback: "Failed to delete user",
		Call: func(context.Context) (rec, error) {
			return rec{}, errors.New("User is referenced by 2 repositories")
		}})
	require.Error(t, err)
	assert.Equal(t, "User is referenced by 2 repositories", err.Error())

	var mErr *MutationError
	assert.ErrorAs(t, err, &mErr)
	assert.Equal(t, []int64{1, 2}, ids(c.Filtered()))
	assert.Equal(t, Idle, c.State())
}

func TestMutationInFlightRejected(t *testing.T) {
	ctx := context.Background()
	c := newRecController(fixed(sample(2)))
	require.NoError(t, c.Load(ctx))

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := c.Mutate(ctx, Mutation[rec]{Op: OpUpdate, Call: func(context.Context) (rec, error) {
			close(entered)
			<-release
			return rec{ID: 1, Status: "Locked"}, nil
		}})
		done <- err
	}()

	<-entered
	assert.Equal(t, InFlight, c.State())
	_, err := c.Mutate(ctx, Mutation[rec]{Op: OpDelete, ID: 2, Call: func(context.Context) (rec, error) {
		t.Error("second mutation must not reach the backend")
		return rec{}, nil
	}})
	assert.ErrorIs(t, err, ErrMutationInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, Idle, c.State())
	assert.Len(t, c.Items(), 2)
}
