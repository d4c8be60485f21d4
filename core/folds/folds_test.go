package folds

import (
	"testing"

	"github.com/huangsam/eegstudy/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	subjects = []string{"s2", "s1", "s3"}
	sessions = []string{"session_T", "session_E"}
)

func defaultOptions() Options {
	return Options{Seed: 1234, ValidRatio: 0.2, KFolds: 5, Repeats: 2}
}

func tails(plans []schema.FoldPlan) []string {
	out := make([]string, len(plans))
	for i, p := range plans {
		out[i] = p.TailPath
	}
	return out
}

func TestPlanTailPaths(t *testing.T) {
	tests := []struct {
		name     string
		paradigm schema.Paradigm
		opts     Options
		expected []string
	}{
		{
			name:     "leave one subject out",
			paradigm: schema.LeaveOneSubjectOut,
			opts:     defaultOptions(),
			expected: []string{"s1", "s2", "s3"},
		},
		{
			name:     "leave one session out",
			paradigm: schema.LeaveOneSessionOut,
			opts:     defaultOptions(),
			expected: []string{
				"s1/session_E", "s1/session_T",
				"s2/session_E", "s2/session_T",
				"s3/session_E", "s3/session_T",
			},
		},
		{
			name:     "cross session",
			paradigm: schema.CrossSession,
			opts:     defaultOptions(),
			expected: []string{"s1/0", "s1/1", "s2/0", "s2/1", "s3/0", "s3/1"},
		},
		{
			name:     "within session",
			paradigm: schema.WithinSession,
			opts:     Options{KFolds: 2},
			expected: []string{
				"fold-0/session_E/s1", "fold-0/session_E/s2", "fold-0/session_E/s3",
				"fold-0/session_T/s1", "fold-0/session_T/s2", "fold-0/session_T/s3",
				"fold-1/session_E/s1", "fold-1/session_E/s2", "fold-1/session_E/s3",
				"fold-1/session_T/s1", "fold-1/session_T/s2", "fold-1/session_T/s3",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plans, err := Plan(tt.paradigm, subjects, sessions, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tails(plans))
			for _, p := range plans {
				assert.Equal(t, tt.paradigm, p.Paradigm)
			}
		})
	}
}

func TestPlanZeroPadsIndexes(t *testing.T) {
	plans, err := Plan(schema.WithinSession, []string{"s1"}, []string{"a"}, Options{KFolds: 12})
	require.NoError(t, err)
	require.Len(t, plans, 12)
	assert.Equal(t, "fold-00/a/s1", plans[0].TailPath)
	assert.Equal(t, "fold-11/a/s1", plans[11].TailPath)
}

func TestUnitLevelPlansAreDisjoint(t *testing.T) {
	for _, p := range []schema.Paradigm{schema.LeaveOneSubjectOut, schema.LeaveOneSessionOut} {
		t.Run(string(p), func(t *testing.T) {
			plans, err := Plan(p, []string{"s1", "s2", "s3", "s4", "s5"}, []string{"a", "b", "c"}, defaultOptions())
			require.NoError(t, err)
			for _, plan := range plans {
				seen := map[schema.Unit]string{}
				for split, units := range map[string][]schema.Unit{"train": plan.Train, "valid": plan.Valid, "test": plan.Test} {
					for _, u := range units {
						prev, dup := seen[u]
						assert.False(t, dup, "unit %s in %s and %s", u, prev, split)
						seen[u] = split
					}
				}
				require.NotEmpty(t, plan.Test)
				for _, u := range plan.Test {
					if p == schema.LeaveOneSubjectOut {
						assert.Equal(t, plan.HeldOut, u.Subject)
					} else {
						assert.Equal(t, plan.HeldOut, u.Session)
					}
				}
			}
		})
	}
}

func TestLeaveOneSubjectOutSplits(t *testing.T) {
	plans, err := Plan(schema.LeaveOneSubjectOut, subjects, sessions, defaultOptions())
	require.NoError(t, err)
	require.Len(t, plans, 3)

	first := plans[0]
	assert.Equal(t, "s1", first.HeldOut)
	assert.Equal(t, []schema.Unit{{Subject: "s1", Session: "session_E"}, {Subject: "s1", Session: "session_T"}}, first.Test)
	// 4 training units at ratio 0.2 move one unit to validation.
	assert.Len(t, first.Valid, 1)
	assert.Len(t, first.Train, 3)
}

func TestTrialLevelPlansShareUnits(t *testing.T) {
	plans, err := Plan(schema.CrossSession, []string{"s1"}, sessions, defaultOptions())
	require.NoError(t, err)
	for _, plan := range plans {
		assert.Equal(t, []schema.Unit{{Subject: "s1", Session: "session_E"}, {Subject: "s1", Session: "session_T"}}, plan.Test)
		assert.Equal(t, plan.Test, plan.Train)
		assert.Equal(t, plan.Test, plan.Valid)
	}
}

func TestPlanIsDeterministic(t *testing.T) {
	many := []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8"}
	a, err := Plan(schema.LeaveOneSubjectOut, many, sessions, defaultOptions())
	require.NoError(t, err)
	b, err := Plan(schema.LeaveOneSubjectOut, many, sessions, defaultOptions())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPlanErrors(t *testing.T) {
	tests := []struct {
		name        string
		paradigm    schema.Paradigm
		subjects    []string
		sessions    []string
		opts        Options
		expectError string
	}{
		{"no subjects", schema.CrossSession, nil, sessions, defaultOptions(), "at least one subject"},
		{"no sessions", schema.CrossSession, subjects, nil, defaultOptions(), "at least one session"},
		{"one subject", schema.LeaveOneSubjectOut, []string{"s1", "s1"}, sessions, defaultOptions(), "needs at least 2 subjects"},
		{"one session", schema.LeaveOneSessionOut, subjects, []string{"a"}, defaultOptions(), "needs at least 2 sessions"},
		{"no repeats", schema.CrossSession, subjects, sessions, Options{}, "repeats must be at least 1"},
		{"one fold", schema.WithinSession, subjects, sessions, Options{KFolds: 1}, "k-folds must be at least 2"},
		{"unknown", schema.Paradigm("bogus"), subjects, sessions, defaultOptions(), "unknown paradigm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(tt.paradigm, tt.subjects, tt.sessions, tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestSplitValid(t *testing.T) {
	units := []schema.Unit{{Subject: "a", Session: "x"}, {Subject: "b", Session: "x"}, {Subject: "c", Session: "x"}, {Subject: "d", Session: "x"}, {Subject: "e", Session: "x"}}

	tests := []struct {
		name      string
		units     []schema.Unit
		ratio     float64
		wantValid int
	}{
		{"zero ratio keeps all", units, 0, 0},
		{"single unit stays in train", units[:1], 0.5, 0},
		{"minimum of one", units[:2], 0.1, 1},
		{"rounded share", units, 0.4, 2},
		{"at least one left in train", units, 0.99, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			train, valid := splitValid(tt.units, Options{Seed: 7, ValidRatio: tt.ratio}, 0)
			assert.Len(t, valid, tt.wantValid)
			assert.Len(t, train, len(tt.units)-tt.wantValid)
			assert.ElementsMatch(t, tt.units, append(append([]schema.Unit{}, train...), valid...))
		})
	}
}

func TestPadded(t *testing.T) {
	assert.Equal(t, "0", padded(0, 1))
	assert.Equal(t, "3", padded(3, 10))
	assert.Equal(t, "03", padded(3, 11))
	assert.Equal(t, "099", padded(99, 101))
}
