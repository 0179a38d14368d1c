package actor

import (
	"fmt"
	"testing"
	"time"
)

func TestScoreImportance(t *testing.T) {
	tests := []struct {
		content string
		want    Importance
	}{
		{"The deadline moved to Friday", ImportanceHigh},
		{"URGENT: server is down", ImportanceHigh},
		{"I'm so frustrated with the printer", ImportanceNormal},
		{"Nice weather today", ImportanceLow},
		{"bossanova playlist", ImportanceLow},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			if got := ScoreImportance(tt.content); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestMemory_FIFOAndPromotion(t *testing.T) {
	m := NewMemory(3, 2)
	base := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	add := func(i int, content string) (*MemoryEntry, bool) {
		return m.Add(NewMemoryEntry(MemoryThought, content, base.Add(time.Duration(i)*time.Minute)))
	}

	add(0, "urgent: call the client")
	add(1, "had a sandwich")
	add(2, "the printer is jammed")

	if len(m.ShortTerm()) != 3 {
		t.Fatalf("expected 3 short-term entries, got %d", len(m.ShortTerm()))
	}

	evicted, promoted := add(3, "looked out the window")
	if evicted == nil || evicted.Content != "urgent: call the client" {
		t.Fatalf("expected oldest entry evicted, got %+v", evicted)
	}
	if !promoted {
		t.Error("expected high-importance entry to be promoted")
	}

	evicted, promoted = add(4, "checked email")
	if evicted == nil || evicted.Content != "had a sandwich" {
		t.Fatalf("expected sandwich evicted, got %+v", evicted)
	}
	if promoted {
		t.Error("low-importance entry must not be promoted")
	}

	st := m.ShortTerm()
	if len(st) != 3 {
		t.Fatalf("short-term must stay at cap, got %d", len(st))
	}
	if st[0].Content != "the printer is jammed" || st[2].Content != "checked email" {
		t.Errorf("unexpected short-term order: %+v", st)
	}

	lt := m.LongTerm()
	if len(lt) != 1 || lt[0].Content != "urgent: call the client" {
		t.Errorf("unexpected long-term contents: %+v", lt)
	}
}

func TestMemory_LongTermBounded(t *testing.T) {
	m := NewMemory(1, 2)
	now := time.Now()
	for i := 0; i < 6; i++ {
		m.Add(NewMemoryEntry(MemoryDialogue, fmt.Sprintf("meeting %d", i), now))
	}

	lt := m.LongTerm()
	if len(lt) != 2 {
		t.Fatalf("expected long-term capped at 2, got %d", len(lt))
	}
	if lt[0].Content != "meeting 3" || lt[1].Content != "meeting 4" {
		t.Errorf("expected oldest long-term entries dropped, got %+v", lt)
	}
}

func TestMemory_SearchAndRecent(t *testing.T) {
	m := NewMemory(0, 0)
	short, long := m.Caps()
	if short != DefaultShortTermCap || long != DefaultLongTermCap {
		t.Fatalf("expected default caps, got %d/%d", short, long)
	}

	now := time.Now()
	m.Add(NewMemoryEntry(MemoryDialogue, "Talked about the Coffee machine", now))
	m.Add(NewMemoryEntry(MemoryThought, "need more coffee", now))
	m.Add(NewMemoryEntry(MemoryThought, "lunch soon", now))

	if got := m.Search("coffee"); len(got) != 2 {
		t.Errorf("expected 2 matches, got %d", len(got))
	}
	if got := m.Search("   "); got != nil {
		t.Errorf("expected nil for blank keyword, got %v", got)
	}

	recent := m.Recent(2)
	if len(recent) != 2 || recent[1].Content != "lunch soon" {
		t.Errorf("unexpected recent entries: %+v", recent)
	}
	if got := m.Recent(10); len(got) != 3 {
		t.Errorf("expected Recent to cap at stored entries, got %d", len(got))
	}
}
