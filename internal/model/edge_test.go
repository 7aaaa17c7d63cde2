package model

import (
	"testing"

	"github.com/devscout/github-leadgen/pkg/log"
)

func newTestEdgeMd(t *testing.T) *Edge {
	t.Helper()
	config, conn := newTestConn(t)
	logger, _ := log.NewNopLogger()
	edgeMd, err := NewEdge(config, logger, conn)
	if err != nil {
		t.Fatalf("failed to create edge model: %v", err)
	}
	return edgeMd
}

func TestInsertPageDuplicatesIgnored(t *testing.T) {
	edgeMd := newTestEdgeMd(t)

	page := [][2]string{
		{"alice", "bob"},
		{"alice", "carol"},
	}
	if err := edgeMd.InsertPage(page); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	// Re-fetching the same page after a crash must be harmless.
	if err := edgeMd.InsertPage(page); err != nil {
		t.Fatalf("duplicate insert failed: %v", err)
	}

	count, err := edgeMd.Count()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("edge count = %d, want 2", count)
	}
}

func TestOutboundInbound(t *testing.T) {
	edgeMd := newTestEdgeMd(t)

	if err := edgeMd.InsertPage([][2]string{
		{"alice", "bob"},
		{"alice", "carol"},
		{"dave", "alice"},
	}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	following, err := edgeMd.Outbound("alice")
	if err != nil {
		t.Fatalf("outbound failed: %v", err)
	}
	if len(following) != 2 {
		t.Errorf("outbound = %v, want bob and carol", following)
	}

	followers, err := edgeMd.Inbound("alice")
	if err != nil {
		t.Fatalf("inbound failed: %v", err)
	}
	if len(followers) != 1 || followers[0] != "dave" {
		t.Errorf("inbound = %v, want [dave]", followers)
	}
}

func TestInsertPageEmpty(t *testing.T) {
	edgeMd := newTestEdgeMd(t)
	if err := edgeMd.InsertPage(nil); err != nil {
		t.Errorf("empty page insert failed: %v", err)
	}
}
