// Package committer applies the mutations planned by the element stores in
// one Spanner transaction.
//
// Stores never write directly. They turn a record's dirty fields into
// mutations, the mutations of every field flushed together are collected
// into a CommitPlan, and the plan is applied atomically:
//
//	plan := committer.NewPlan()
//	plan.AddMultiple(repo.Mutations(flush))
//	return c.Apply(ctx, plan)
//
// Mutations run in the order they were added, so a plan may delete a key
// range and write the same keys again.
package committer

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
)

// CommitPlan is an ordered list of mutations applied together.
type CommitPlan struct {
	mutations []*spanner.Mutation
}

func NewPlan() *CommitPlan {
	return &CommitPlan{}
}

// Add appends a mutation. Nil mutations are ignored.
func (cp *CommitPlan) Add(mut *spanner.Mutation) {
	if mut != nil {
		cp.mutations = append(cp.mutations, mut)
	}
}

func (cp *CommitPlan) AddMultiple(muts []*spanner.Mutation) {
	for _, mut := range muts {
		cp.Add(mut)
	}
}

func (cp *CommitPlan) Mutations() []*spanner.Mutation {
	return cp.mutations
}

func (cp *CommitPlan) IsEmpty() bool {
	return len(cp.mutations) == 0
}

func (cp *CommitPlan) Count() int {
	return len(cp.mutations)
}

// Committer applies plans through a Spanner client.
type Committer struct {
	client *spanner.Client
}

func NewCommitter(client *spanner.Client) *Committer {
	return &Committer{client: client}
}

// Apply commits the plan atomically. An empty plan does nothing.
func (c *Committer) Apply(ctx context.Context, plan *CommitPlan) error {
	if plan.IsEmpty() {
		return nil
	}
	if _, err := c.client.Apply(ctx, plan.Mutations()); err != nil {
		return fmt.Errorf("failed to apply commit plan: %w", err)
	}
	return nil
}
