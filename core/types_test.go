package core

import "testing"

func TestNormalizeUsername(t *testing.T) {
	u, err := NormalizeUsername("  Alice ")
	if err != nil {
		t.Fatal(err)
	}
	if u != "alice" {
		t.Fatalf("expected alice, got %s", u)
	}
	if _, err := NormalizeUsername("   "); err == nil {
		t.Fatal("expected error for blank username")
	}
}

func TestValidateUsername(t *testing.T) {
	if err := ValidateUsername("player_1"); err != nil {
		t.Fatalf("valid username rejected: %v", err)
	}
	for _, bad := range []Username{"ab", "has space", "semi;colon", "x@y"} {
		if err := ValidateUsername(bad); err == nil {
			t.Fatalf("expected rejection for %q", bad)
		}
	}
}

func TestChallengeCounts(t *testing.T) {
	c := Challenge{1, 1, 2, 3}
	counts := c.Counts()
	if counts[1] != 2 || counts[2] != 1 || counts[3] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestRanked(t *testing.T) {
	entries := []RankEntry{{Username: "a", Score: 30}, {Username: "b", Score: 20}}
	ranked := Ranked(entries)
	if ranked[0].Rank != 1 || ranked[1].Rank != 2 {
		t.Fatalf("unexpected ranks: %#v", ranked)
	}
	if ranked[1].Username != "b" || ranked[1].Score != 20 {
		t.Fatalf("unexpected entry: %#v", ranked[1])
	}
}
