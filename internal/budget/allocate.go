package budget

import "strings"

// Category names a source of the correlator prompt
type Category int

// Composition order of the assembled prompt
const (
	CategoryProfile Category = iota
	CategoryCommits
	CategoryIssues
	CategoryDiscussions
)

// DefaultWeights are the relative shares of each category
var DefaultWeights = map[Category]int{
	CategoryProfile:     1,
	CategoryCommits:     4,
	CategoryIssues:      4,
	CategoryDiscussions: 2,
}

var categoryLabels = map[Category]string{
	CategoryProfile:     "project profile",
	CategoryCommits:     "commit logs",
	CategoryIssues:      "issue posts",
	CategoryDiscussions: "discussion posts",
}

// String returns the prompt label of the category
func (c Category) String() string {
	return categoryLabels[c]
}

// Source is one optional block of text competing for the shared budget
type Source struct {
	Category Category
	Text     string
	Present  bool
}

// Sources enumerates the four correlator inputs and which of them are present
type Sources struct {
	Profile     Source
	Commits     Source
	Issues      Source
	Discussions Source
}

// NewSources builds the correlator inputs; an empty string marks a category absent
func NewSources(profile, commits, issues, discussions string) Sources {
	mk := func(c Category, text string) Source {
		return Source{Category: c, Text: text, Present: strings.TrimSpace(text) != ""}
	}
	return Sources{
		Profile:     mk(CategoryProfile, profile),
		Commits:     mk(CategoryCommits, commits),
		Issues:      mk(CategoryIssues, issues),
		Discussions: mk(CategoryDiscussions, discussions),
	}
}

// Ordered returns the sources in composition order
func (s Sources) Ordered() []Source {
	return []Source{s.Profile, s.Commits, s.Issues, s.Discussions}
}

// AnyActivity reports whether at least one of commits, issues or discussions is present
func (s Sources) AnyActivity() bool {
	return s.Commits.Present || s.Issues.Present || s.Discussions.Present
}

// Allocation is the share of the budget given to one present source
type Allocation struct {
	Category Category
	Units    int
}

// Allocator splits a fixed unit budget across present sources by weight
type Allocator struct {
	TotalUnits   int
	CharsPerUnit int
	Weights      map[Category]int
}

// NewAllocator returns an allocator with the correlator defaults
func NewAllocator() *Allocator {
	return &Allocator{
		TotalUnits:   CorrelatorUnits,
		CharsPerUnit: CharsPerUnit,
		Weights:      DefaultWeights,
	}
}

// Allocate returns one allocation per present source in composition order.
// Each source gets TotalUnits*weight/sum(present weights); leftover units
// from integer division go one at a time to sources in composition order so
// that the allocations sum to TotalUnits.
func (a *Allocator) Allocate(sources Sources) []Allocation {
	var present []Source
	sum := 0
	for _, src := range sources.Ordered() {
		if !src.Present {
			continue
		}
		w := a.Weights[src.Category]
		if w <= 0 {
			continue
		}
		present = append(present, src)
		sum += w
	}
	if sum == 0 {
		return nil
	}

	allocs := make([]Allocation, len(present))
	given := 0
	for i, src := range present {
		units := a.TotalUnits * a.Weights[src.Category] / sum
		allocs[i] = Allocation{Category: src.Category, Units: units}
		given += units
	}
	for i := 0; given < a.TotalUnits; i = (i + 1) % len(allocs) {
		allocs[i].Units++
		given++
	}

	return allocs
}

// Assemble truncates each present source to its allocation and joins them as
// labeled blocks in composition order. Absent sources are omitted entirely.
func (a *Allocator) Assemble(sources Sources) string {
	allocs := a.Allocate(sources)
	if len(allocs) == 0 {
		return ""
	}

	texts := make(map[Category]string, 4)
	for _, src := range sources.Ordered() {
		texts[src.Category] = src.Text
	}

	blocks := make([]string, 0, len(allocs))
	for _, alloc := range allocs {
		text := TruncateRunes(strings.TrimSpace(texts[alloc.Category]), alloc.Units*a.CharsPerUnit)
		blocks = append(blocks, alloc.Category.String()+": "+text)
	}
	return strings.Join(blocks, "\n\n")
}
