// Package folds plans the train/valid/test partitions of every paradigm
// and lays out the results tree the aggregators read.
package folds

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"

	"github.com/huangsam/eegstudy/schema"
)

// Options tune the partitioning.
type Options struct {
	Seed       int64
	ValidRatio float64 // share of training units moved to validation
	KFolds     int     // within-session folds
	Repeats    int     // cross-session CV repeats
}

// Plan returns the folds of paradigm p over the given subjects and sessions.
// Names are sorted first so the plan only depends on its inputs and seed.
func Plan(p schema.Paradigm, subjects, sessions []string, opts Options) ([]schema.FoldPlan, error) {
	subjects, sessions = sortedUnique(subjects), sortedUnique(sessions)
	if len(subjects) == 0 {
		return nil, errors.New("at least one subject is required")
	}
	if len(sessions) == 0 {
		return nil, errors.New("at least one session is required")
	}

	switch p {
	case schema.LeaveOneSubjectOut:
		if len(subjects) < 2 {
			return nil, fmt.Errorf("%s needs at least 2 subjects (received %d)", p, len(subjects))
		}
		return leaveOneSubjectOut(subjects, sessions, opts), nil
	case schema.LeaveOneSessionOut:
		if len(sessions) < 2 {
			return nil, fmt.Errorf("%s needs at least 2 sessions (received %d)", p, len(sessions))
		}
		return leaveOneSessionOut(subjects, sessions, opts), nil
	case schema.CrossSession:
		if opts.Repeats < 1 {
			return nil, fmt.Errorf("repeats must be at least 1 (received %d)", opts.Repeats)
		}
		return crossSession(subjects, sessions, opts), nil
	case schema.WithinSession:
		if opts.KFolds < 2 {
			return nil, fmt.Errorf("k-folds must be at least 2 (received %d)", opts.KFolds)
		}
		return withinSession(subjects, sessions, opts), nil
	}
	return nil, &schema.UnknownParadigmError{Name: string(p)}
}

// leaveOneSubjectOut holds out every session of one subject per fold.
func leaveOneSubjectOut(subjects, sessions []string, opts Options) []schema.FoldPlan {
	plans := make([]schema.FoldPlan, 0, len(subjects))
	for i, held := range subjects {
		var train, test []schema.Unit
		for _, subject := range subjects {
			for _, session := range sessions {
				u := schema.Unit{Subject: subject, Session: session}
				if subject == held {
					test = append(test, u)
				} else {
					train = append(train, u)
				}
			}
		}
		train, valid := splitValid(train, opts, i)
		plans = append(plans, schema.FoldPlan{
			Paradigm: schema.LeaveOneSubjectOut,
			TailPath: held,
			HeldOut:  held,
			Index:    i,
			Train:    train,
			Valid:    valid,
			Test:     test,
		})
	}
	return plans
}

// leaveOneSessionOut holds out one session of a subject per fold and
// trains on that subject's other sessions.
func leaveOneSessionOut(subjects, sessions []string, opts Options) []schema.FoldPlan {
	plans := make([]schema.FoldPlan, 0, len(subjects)*len(sessions))
	for _, subject := range subjects {
		for j, held := range sessions {
			var train []schema.Unit
			for _, session := range sessions {
				if session != held {
					train = append(train, schema.Unit{Subject: subject, Session: session})
				}
			}
			index := len(plans)
			train, valid := splitValid(train, opts, index)
			plans = append(plans, schema.FoldPlan{
				Paradigm: schema.LeaveOneSessionOut,
				TailPath: subject + "/" + held,
				HeldOut:  held,
				Index:    j,
				Train:    train,
				Valid:    valid,
				Test:     []schema.Unit{{Subject: subject, Session: held}},
			})
		}
	}
	return plans
}

// crossSession merges the sessions of a subject and repeats a trial-level
// split; every list names the same units.
func crossSession(subjects, sessions []string, opts Options) []schema.FoldPlan {
	plans := make([]schema.FoldPlan, 0, len(subjects)*opts.Repeats)
	for _, subject := range subjects {
		units := make([]schema.Unit, len(sessions))
		for i, session := range sessions {
			units[i] = schema.Unit{Subject: subject, Session: session}
		}
		for r := range opts.Repeats {
			plans = append(plans, schema.FoldPlan{
				Paradigm: schema.CrossSession,
				TailPath: subject + "/" + padded(r, opts.Repeats),
				HeldOut:  subject,
				Index:    r,
				Train:    units,
				Valid:    units,
				Test:     units,
			})
		}
	}
	return plans
}

// withinSession splits the trials of each (subject, session) into k folds.
func withinSession(subjects, sessions []string, opts Options) []schema.FoldPlan {
	plans := make([]schema.FoldPlan, 0, opts.KFolds*len(sessions)*len(subjects))
	for k := range opts.KFolds {
		fold := "fold-" + padded(k, opts.KFolds)
		for _, session := range sessions {
			for _, subject := range subjects {
				unit := []schema.Unit{{Subject: subject, Session: session}}
				plans = append(plans, schema.FoldPlan{
					Paradigm: schema.WithinSession,
					TailPath: fold + "/" + session + "/" + subject,
					HeldOut:  fold,
					Index:    k,
					Train:    unit,
					Valid:    unit,
					Test:     unit,
				})
			}
		}
	}
	return plans
}

// splitValid moves a seeded share of train into a validation list. At
// least one unit is moved when the ratio is positive and train has two or
// more units; at least one always stays in train. Both keep input order.
func splitValid(train []schema.Unit, opts Options, index int) ([]schema.Unit, []schema.Unit) {
	if opts.ValidRatio <= 0 || len(train) < 2 {
		return train, nil
	}
	n := int(math.Round(opts.ValidRatio * float64(len(train))))
	n = min(max(n, 1), len(train)-1)

	rng := rand.New(rand.NewPCG(uint64(opts.Seed), uint64(index)))
	picked := make([]bool, len(train))
	for _, i := range rng.Perm(len(train))[:n] {
		picked[i] = true
	}

	var kept, valid []schema.Unit
	for i, u := range train {
		if picked[i] {
			valid = append(valid, u)
		} else {
			kept = append(kept, u)
		}
	}
	return kept, valid
}

// padded formats i with enough leading zeros for n entries to sort
// lexicographically in numeric order.
func padded(i, n int) string {
	width := len(strconv.Itoa(max(n-1, 0)))
	return fmt.Sprintf("%0*d", width, i)
}

func sortedUnique(names []string) []string {
	out := slices.Clone(names)
	slices.Sort(out)
	return slices.Compact(out)
}
