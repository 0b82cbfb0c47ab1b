package analysis

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestThemeClusterCount(t *testing.T) {
	testCases := []struct {
		n    int
		want int
	}{
		{1, 1},
		{2, 2},
		{3, 2},
		{4, 2},
		{9, 3},
		{25, 5},
		{100, 8},
		{1000, 8},
	}

	for _, tc := range testCases {
		if got := themeClusterCount(tc.n); got != tc.want {
			t.Errorf("themeClusterCount(%d) = %d, want %d", tc.n, got, tc.want)
		}
	}
}

func TestKMeansLabels_Deterministic(t *testing.T) {
	embeddings := [][]float64{
		unit(0, 0), unit(0, 0.05), unit(0, 0.1),
		unit(1, 0), unit(1, 0.05),
		unit(2, 0), unit(2, 0.05), unit(2, 0.1),
	}
	weights := []int{1, 2, 1, 1, 1, 3, 1, 1}

	first := kMeansLabels(embeddings, weights, 3, kmeansSeed)
	for run := 0; run < 5; run++ {
		again := kMeansLabels(embeddings, weights, 3, kmeansSeed)
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("run %d: labels diverged: %v vs %v", run, again, first)
			}
		}
	}
}

func TestKMeansLabels_SeparatesGroups(t *testing.T) {
	embeddings := [][]float64{
		unit(0, 0), unit(0, 0.05),
		unit(1, 0), unit(1, 0.05),
	}
	weights := []int{1, 1, 1, 1}

	labels := kMeansLabels(embeddings, weights, 2, kmeansSeed)
	if labels[0] != labels[1] || labels[2] != labels[3] {
		t.Errorf("group members split across clusters: %v", labels)
	}
	if labels[0] == labels[2] {
		t.Errorf("distinct groups share a cluster: %v", labels)
	}
}

func TestKMeansLabels_KAtLeastN(t *testing.T) {
	embeddings := [][]float64{unit(0, 0), unit(1, 0)}
	labels := kMeansLabels(embeddings, []int{1, 1}, 5, kmeansSeed)
	if labels[0] == labels[1] {
		t.Errorf("k >= n must keep points separate: %v", labels)
	}
}

func newTestThemer(embedder *fakeEmbedder, gen *fakeGenerator) *ThemeSummarizer {
	extractor := NewIdeaExtractor(embedder, zap.NewNop())
	return NewThemeSummarizer(embedder, gen, extractor, zap.NewNop())
}

func TestTopIdeas_SingleDistinctAnswer(t *testing.T) {
	// Duplicates collapse to one distinct answer: the clustering model must
	// never run, so an erroring embedder only exercises the frequency path.
	themer := newTestThemer(
		&fakeEmbedder{err: errors.New("embedder down")},
		&fakeGenerator{err: errors.New("generator down")})

	ideas, err := themer.TopIdeas(context.Background(),
		[]string{"slow wifi", "slow  wifi", " slow wifi "}, "", 5)
	if err != nil {
		t.Fatalf("TopIdeas error: %v", err)
	}
	if len(ideas) != 2 || ideas[0] != "slow" || ideas[1] != "wifi" {
		t.Errorf("expected [slow wifi], got %v", ideas)
	}
}

func TestTopIdeas_EmptyAnswers(t *testing.T) {
	themer := newTestThemer(&fakeEmbedder{}, &fakeGenerator{})

	ideas, err := themer.TopIdeas(context.Background(), []string{"", "  "}, "", 5)
	if err != nil {
		t.Fatalf("TopIdeas error: %v", err)
	}
	if len(ideas) != 0 {
		t.Errorf("expected no ideas, got %v", ideas)
	}

	ideas, err = themer.TopIdeas(context.Background(), []string{"anything"}, "", 0)
	if err != nil {
		t.Fatalf("TopIdeas error: %v", err)
	}
	if len(ideas) != 0 {
		t.Errorf("limit 0 must yield no ideas, got %v", ideas)
	}
}

func TestTopIdeas_HeaviestClusterFirst(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float64{
		"more parking spaces": unit(0, 0),
		"better food":         unit(1, 0),
	}}
	gen := &fakeGenerator{response: "Parking capacity falls short of demand"}
	themer := newTestThemer(embedder, gen)

	answers := []string{
		"more parking spaces", "more parking spaces", "more parking spaces",
		"better food",
	}

	ideas, err := themer.TopIdeas(context.Background(), answers, "", 1)
	if err != nil {
		t.Fatalf("TopIdeas error: %v", err)
	}
	if len(ideas) != 1 {
		t.Fatalf("expected 1 idea, got %v", ideas)
	}
	// The repeated answer dominates by weight and is labeled through the
	// abstractive summary.
	if ideas[0] != "Parking capacity falls short of demand." {
		t.Errorf("ideas[0] = %q", ideas[0])
	}
}

func TestWeightedClusterText_CapsRepetition(t *testing.T) {
	texts := []NormalizedText{
		{Text: "slow wifi", Weight: 10},
		{Text: "old laptops", Weight: 1},
	}

	got := weightedClusterText(texts, []int{0, 1})
	want := "slow wifi. slow wifi. slow wifi. old laptops"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestClustersByWeight_Ordering(t *testing.T) {
	labels := []int{0, 1, 1, 2}
	weights := []int{2, 1, 1, 5}

	clusters := clustersByWeight(labels, weights)
	if len(clusters) != 3 {
		t.Fatalf("expected 3 clusters, got %d", len(clusters))
	}
	if clusters[0].weight != 5 || clusters[1].weight != 2 || clusters[2].weight != 2 {
		t.Errorf("unexpected weight order: %+v", clusters)
	}
	// Equal-weight clusters order by first member index
	if clusters[1].members[0] != 0 || clusters[2].members[0] != 1 {
		t.Errorf("tie-break by first member failed: %+v", clusters)
	}
}
