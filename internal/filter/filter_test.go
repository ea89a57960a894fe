package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskflow/domain"
)

var now = time.Date(2026, time.March, 8, 14, 30, 0, 0, time.UTC)

func at(t time.Time) *time.Time { return &t }

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, All, got)

	_, err = ParseKind("someday")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestBounds(t *testing.T) {
	local := time.FixedZone("UTC+10", 10*60*60)
	// 2026-03-09 02:00 at +10 is still 2026-03-08 in UTC.
	start, end := Bounds(time.Date(2026, time.March, 9, 2, 0, 0, 0, local))
	assert.Equal(t, time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC), end)
}

func TestMatches(t *testing.T) {
	const me, other = "user-u", "user-v"
	startOfToday := time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC)
	yesterday := startOfToday.Add(-time.Hour)
	lateToday := startOfToday.Add(23*time.Hour + 59*time.Minute)
	tomorrow := startOfToday.AddDate(0, 0, 1)

	tests := []struct {
		name string
		task domain.Task
		kind Kind
		want bool
	}{
		{"all includes anything", domain.Task{CreatedBy: other}, All, true},
		{"assigned to me", domain.Task{AssignedTo: me, CreatedBy: other}, AssignedToMe, true},
		{"assigned to someone else", domain.Task{AssignedTo: other, CreatedBy: me}, AssignedToMe, false},
		{"created by me", domain.Task{AssignedTo: other, CreatedBy: me}, CreatedByMe, true},
		{"created by someone else", domain.Task{AssignedTo: me, CreatedBy: other}, CreatedByMe, false},
		{"self assigned matches assigned", domain.Task{AssignedTo: me, CreatedBy: me}, AssignedToMe, true},
		{"self assigned matches created", domain.Task{AssignedTo: me, CreatedBy: me}, CreatedByMe, true},
		{"overdue yesterday incomplete", domain.Task{AssignedTo: me, DueDate: at(yesterday)}, Overdue, true},
		{"overdue skips complete", domain.Task{AssignedTo: me, DueDate: at(yesterday), IsComplete: true}, Overdue, false},
		{"overdue skips other assignee", domain.Task{AssignedTo: other, DueDate: at(yesterday)}, Overdue, false},
		{"overdue skips today", domain.Task{AssignedTo: me, DueDate: at(startOfToday)}, Overdue, false},
		{"overdue skips no due date", domain.Task{AssignedTo: me}, Overdue, false},
		{"due today at midnight", domain.Task{DueDate: at(startOfToday)}, DueToday, true},
		{"due today late", domain.Task{DueDate: at(lateToday)}, DueToday, true},
		{"due today skips yesterday", domain.Task{AssignedTo: me, DueDate: at(yesterday)}, DueToday, false},
		{"due today skips tomorrow", domain.Task{DueDate: at(tomorrow)}, DueToday, false},
		{"due today skips no due date", domain.Task{AssignedTo: me}, DueToday, false},
		{"unknown kind", domain.Task{}, Kind("later"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.task, tt.kind, me, now))
		})
	}
}

func TestMatchesWithoutDueDate(t *testing.T) {
	for _, complete := range []bool{false, true} {
		for _, assignee := range []string{"", "user-u", "user-v"} {
			task := domain.Task{AssignedTo: assignee, CreatedBy: "user-u", IsComplete: complete}
			assert.False(t, Matches(task, Overdue, "user-u", now))
			assert.False(t, Matches(task, DueToday, "user-u", now))
		}
	}
}

func TestMatchesDueTodayNeverOverdue(t *testing.T) {
	due := time.Date(2026, time.March, 8, 9, 0, 0, 0, time.UTC)
	task := domain.Task{AssignedTo: "user-u", CreatedBy: "user-u", DueDate: &due}
	assert.True(t, Matches(task, DueToday, "user-u", now))
	assert.False(t, Matches(task, Overdue, "user-u", now))
}

func TestApplyKeepsOrder(t *testing.T) {
	tasks := []domain.Task{
		{ID: "1", AssignedTo: "a"},
		{ID: "2", AssignedTo: "b"},
		{ID: "3", AssignedTo: "a"},
	}
	got := Apply(tasks, AssignedToMe, "a", now)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
}
