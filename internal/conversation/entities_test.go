package conversation

import (
	"context"
	"reflect"
	"testing"
)

func TestEntityExtractorFindsProperNounsAndQuotedTerms(t *testing.T) {
	e := NewEntityExtractor()
	entities := e.Extract(context.Background(), `The "Acme Widget" launched alongside Project Orion in 2024.`, 10)

	want := map[string]bool{"Acme Widget": true, "Project Orion": true, "2024": true}
	for _, got := range entities {
		delete(want, got)
	}
	if len(want) != 0 {
		t.Errorf("missing expected entities: %v (got %v)", want, entities)
	}
}

func TestEntityExtractorSkipsLeadingStopWords(t *testing.T) {
	e := NewEntityExtractor()
	entities := e.Extract(context.Background(), "What about Microsoft Azure pricing?", 10)

	for _, ent := range entities {
		if ent == "What" {
			t.Fatalf("entities = %v, want leading stop word \"What\" excluded", entities)
		}
	}
	found := false
	for _, ent := range entities {
		if ent == "Microsoft Azure" {
			found = true
		}
	}
	if !found {
		t.Errorf("entities = %v, want \"Microsoft Azure\" present", entities)
	}
}

func TestEntityExtractorTruncatesToMax(t *testing.T) {
	e := NewEntityExtractor()
	entities := e.Extract(context.Background(), `Alpha Beta Gamma Delta Epsilon Zeta Eta Theta Iota Kappa Lambda Mu`, 3)
	if len(entities) > 3 {
		t.Fatalf("len(entities) = %d, want <= 3", len(entities))
	}
}

func TestEntityExtractorCachesByExactText(t *testing.T) {
	e := NewEntityExtractor()
	text := `Quick note about "Project Falcon".`
	first := e.Extract(context.Background(), text, 10)
	second := e.Extract(context.Background(), text, 10)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("cached extraction mismatch: first=%v second=%v", first, second)
	}
}

func TestEntityExtractorEmptyText(t *testing.T) {
	e := NewEntityExtractor()
	entities := e.Extract(context.Background(), "", 10)
	if len(entities) != 0 {
		t.Fatalf("entities = %v, want empty for empty input", entities)
	}
}
