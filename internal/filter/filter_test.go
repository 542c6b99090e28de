package filter

import (
	"reflect"
	"testing"

	"paperdeck/internal/paper"
	"paperdeck/internal/tagstore"
)

func TestExtractTerms(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"", nil},
		{"   ", nil},
		{"transformer", []string{"transformer"}},
		{"Attention IS all", []string{"attention", "is", "all"}},
		{`"large language model"`, []string{"large language model"}},
		{`"large language model" reasoning`, []string{"large language model", "reasoning"}},
		{`before "a b" after`, []string{"a b", "before", "after"}},
		{`""  word`, []string{"word"}},
		{`"unclosed phrase`, []string{"unclosed", "phrase"}},
	}
	for _, tt := range tests {
		got := ExtractTerms(tt.query)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ExtractTerms(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestEmptyFilterMatchesEverything(t *testing.T) {
	p := paper.Paper{Title: "Anything", Summary: "At all", Categories: []string{"cs.AI"}}
	if !(Filter{}).Match(p, tagstore.Tags{}) {
		t.Error("expected empty filter to match")
	}
}

func TestTextMatchConjunctive(t *testing.T) {
	p := paper.Paper{
		Title:   "Chain-of-Thought Prompting in Large Language Models",
		Summary: "We study reasoning behaviour under prompting.",
	}

	f := Filter{Terms: ExtractTerms(`"large language model" reasoning`)}
	if !f.Match(p, tagstore.Tags{}) {
		t.Error("expected match: phrase in title, word in summary")
	}

	f.TitleOnly = true
	if f.Match(p, tagstore.Tags{}) {
		t.Error("expected no match in title-only mode: 'reasoning' only in summary")
	}

	f = Filter{Terms: ExtractTerms(`"large language model" quantum`)}
	if f.Match(p, tagstore.Tags{}) {
		t.Error("expected no match: one term absent fails the conjunction")
	}
}

func TestTextMatchCaseInsensitive(t *testing.T) {
	p := paper.Paper{Title: "DIFFUSION Models", Summary: ""}
	f := Filter{Terms: []string{"diffusion"}}
	if !f.Match(p, tagstore.Tags{}) {
		t.Error("expected case-insensitive match")
	}
}

func TestChipsUnionWithTerms(t *testing.T) {
	p := paper.Paper{Title: "Reinforcement learning for robots", Summary: ""}

	f := Filter{Chips: []string{"reinforcement learning"}}
	if !f.Match(p, tagstore.Tags{}) {
		t.Error("expected chip term to match")
	}

	f.Terms = []string{"vision"}
	if f.Match(p, tagstore.Tags{}) {
		t.Error("expected chip and text terms to be conjunctive")
	}
}

func TestCategoryMatch(t *testing.T) {
	p := paper.Paper{Title: "X", Categories: []string{"cs.CV", "cs.LG"}}

	if !(Filter{}).Match(p, tagstore.Tags{}) {
		t.Error("empty selection accepts every paper")
	}
	if !(Filter{Categories: []string{"cs.LG", "stat.ML"}}).Match(p, tagstore.Tags{}) {
		t.Error("expected match on category intersection")
	}
	if (Filter{Categories: []string{"stat.ML"}}).Match(p, tagstore.Tags{}) {
		t.Error("expected no match with empty intersection")
	}

	empty := paper.Paper{Title: "No categories"}
	if (Filter{Categories: []string{"cs.AI"}}).Match(empty, tagstore.Tags{}) {
		t.Error("expected paper without categories rejected by non-empty selection")
	}
}

func TestTagPredicates(t *testing.T) {
	p := paper.Paper{ID: "2401.00001", Title: "Tagged"}
	tags := tagstore.Tags{
		ReadLater: map[string]bool{"2401.00001": true},
		Topics:    []string{"agents"},
		Stars:     map[string]map[string]bool{"agents": {"2401.00001": true}},
	}
	other := paper.Paper{ID: "2401.00002", Title: "Untagged"}

	f := Filter{ReadLaterOnly: true}
	if !f.Match(p, tags) || f.Match(other, tags) {
		t.Error("read-later predicate mismatch")
	}

	f = Filter{Topic: "agents"}
	if !f.Match(p, tags) || f.Match(other, tags) {
		t.Error("topic predicate mismatch")
	}

	f = Filter{StarredOnly: true}
	if !f.Match(p, tags) || f.Match(other, tags) {
		t.Error("starred predicate mismatch")
	}
}

func TestApplyPreservesOrder(t *testing.T) {
	papers := []paper.Dated{
		{Paper: paper.Paper{Title: "keep one"}, Date: "2026-02-06"},
		{Paper: paper.Paper{Title: "drop"}, Date: "2026-02-06"},
		{Paper: paper.Paper{Title: "keep two"}, Date: "2026-02-05"},
	}
	out := Apply(Filter{Terms: []string{"keep"}}, papers, tagstore.Tags{})
	if len(out) != 2 || out[0].Title != "keep one" || out[1].Title != "keep two" {
		t.Errorf("unexpected filtered result: %v", out)
	}
}
