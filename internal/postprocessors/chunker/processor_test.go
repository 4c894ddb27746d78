package chunker

import (
	"context"
	"testing"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.minTagLength != DefaultMinTagLength {
			t.Errorf("expected minTagLength %d, got %d", DefaultMinTagLength, p.minTagLength)
		}
	})

	t.Run("custom tag length", func(t *testing.T) {
		p := New(WithMinTagLength(2))
		if p.minTagLength != 2 {
			t.Errorf("expected minTagLength 2, got %d", p.minTagLength)
		}
	})

	t.Run("zero value ignored", func(t *testing.T) {
		p := New(WithMinTagLength(0))
		if p.minTagLength != DefaultMinTagLength {
			t.Errorf("expected default minTagLength, got %d", p.minTagLength)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	p := New()
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}

func TestSplit_TitleConsumesOrdinal(t *testing.T) {
	raws := New().Split("===== Report Title =====\n\nBody one.\n\nBody two.")

	if len(raws) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(raws))
	}
	if !raws[0].Title || raws[0].Ordinal != 1 {
		t.Errorf("expected title at ordinal 1, got %+v", raws[0])
	}
	if len(raws[0].Tags) != 2 || raws[0].Tags[0] != "report" || raws[0].Tags[1] != "title" {
		t.Errorf("expected tags [report title], got %v", raws[0].Tags)
	}
	if raws[1].Ordinal != 2 || raws[2].Ordinal != 3 {
		t.Errorf("expected ordinals 2 and 3, got %d and %d", raws[1].Ordinal, raws[2].Ordinal)
	}
}

func TestSplit_BlankParagraphConsumesOrdinal(t *testing.T) {
	raws := New().Split("\n\nfirst\n \t\nsecond")

	if len(raws) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(raws))
	}
	if raws[0].Ordinal != 2 || raws[0].Content != "first" {
		t.Errorf("unexpected first paragraph %+v", raws[0])
	}
	if raws[1].Ordinal != 3 || raws[1].Content != "second" {
		t.Errorf("unexpected second paragraph %+v", raws[1])
	}
}

func TestSplit_ShortWordsAreNotTags(t *testing.T) {
	raws := New().Split("== A tale of the city CITY ==")

	if len(raws) != 1 || !raws[0].Title {
		t.Fatalf("expected a single title, got %+v", raws)
	}
	if len(raws[0].Tags) != 2 || raws[0].Tags[0] != "tale" || raws[0].Tags[1] != "city" {
		t.Errorf("expected tags [tale city], got %v", raws[0].Tags)
	}
}

func TestSplit_WindowsLineEndings(t *testing.T) {
	raws := New().Split("one\r\n\r\ntwo")
	if len(raws) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(raws))
	}
}

func TestProcessor_Process_EmptyContent(t *testing.T) {
	p := New()
	doc := &domain.Document{ID: "reports:x", Content: "  \n\n  "}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty content, got %d", len(chunks))
	}
}

func TestProcessor_Process_AllTitles(t *testing.T) {
	doc := &domain.Document{ID: "reports:x", Content: "== One ==\n\n=== Two ==="}

	chunks, err := New().Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}

func TestProcessor_Process_IDsAndTags(t *testing.T) {
	doc := &domain.Document{
		ID:      "reports:mri:2024:g287-jane-doe",
		Content: "===Title===\n\nBody one.\n\nBody two.",
	}

	chunks, err := New().Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}

	wantIDs := []string{"reports:mri:2024:g287-jane-doe@2", "reports:mri:2024:g287-jane-doe@3"}
	for i, c := range chunks {
		if c.ID != wantIDs[i] {
			t.Errorf("chunk %d: expected id %s, got %s", i, wantIDs[i], c.ID)
		}
		if c.DocumentID != doc.ID {
			t.Errorf("chunk %d: expected document id %s, got %s", i, doc.ID, c.DocumentID)
		}
		if len(c.Tags) != 1 || c.Tags[0] != "title" {
			t.Errorf("chunk %d: expected tags [title], got %v", i, c.Tags)
		}
	}
}

func TestProcessor_Process_TagsCarryForward(t *testing.T) {
	doc := &domain.Document{
		ID:      "reports:x",
		Content: "intro\n\n== Findings ==\n\nfirst\n\n== ok ==\n\nsecond\n\n== Impression ==\n\nthird",
	}

	chunks, err := New().Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}

	if len(chunks[0].Tags) != 0 {
		t.Errorf("expected no tags before the first title, got %v", chunks[0].Tags)
	}
	if len(chunks[1].Tags) != 1 || chunks[1].Tags[0] != "findings" {
		t.Errorf("expected [findings], got %v", chunks[1].Tags)
	}
	// "== ok ==" yields no tags, so findings persists.
	if len(chunks[2].Tags) != 1 || chunks[2].Tags[0] != "findings" {
		t.Errorf("expected [findings], got %v", chunks[2].Tags)
	}
	if len(chunks[3].Tags) != 1 || chunks[3].Tags[0] != "impression" {
		t.Errorf("expected [impression], got %v", chunks[3].Tags)
	}
}
