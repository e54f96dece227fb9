// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import "testing"

func TestCounterGroupSiblingsCopySemantics(t *testing.T) {
	leader := &Counter{}
	s1 := &Counter{}
	s2 := &Counter{}
	g := &CounterGroup{leader: leader, siblings: []*Counter{s1, s2}}

	got := g.Siblings()
	if len(got) != 2 || got[0] != s1 || got[1] != s2 {
		t.Fatalf("Siblings() = %v, want [s1 s2]", got)
	}

	// Mutating the returned slice must not affect the group's own
	// bookkeeping.
	got[0] = nil
	if g.siblings[0] != s1 {
		t.Error("Siblings() leaked its backing array; mutation affected the group")
	}
}

func TestCounterGroupLeader(t *testing.T) {
	leader := &Counter{}
	g := &CounterGroup{leader: leader}
	if g.Leader() != leader {
		t.Error("Leader() did not return the constructed leader")
	}
}
