package veclust

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/happyhackingspace/veclust/internal/config"
)

func writeDocs(t *testing.T, docs map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range docs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestBuildClustersTwoObviousGroups(t *testing.T) {
	dir := writeDocs(t, map[string]string{
		"a.txt": "apple banana apple",
		"b.txt": "apple banana banana",
		"c.txt": "rocket engine fuel",
		"d.txt": "rocket fuel engine",
	})

	cfg := config.Default()
	cfg.NumClusters = 2
	cfg.MaxIterations = 50
	cfg.RandomSeed = 1

	p := New(cfg)
	result, err := p.Build(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Clusters) != 4 {
		t.Fatalf("got %d assignments, want 4", len(result.Clusters))
	}
	if result.Clusters[0] != result.Clusters[1] {
		t.Errorf("a.txt and b.txt should share a cluster, got %v", result.Clusters)
	}
	if result.Clusters[2] != result.Clusters[3] {
		t.Errorf("c.txt and d.txt should share a cluster, got %v", result.Clusters)
	}
	if result.Clusters[0] == result.Clusters[2] {
		t.Errorf("the two topic groups should not share a cluster, got %v", result.Clusters)
	}
	if len(result.Centroids) != 2 {
		t.Errorf("got %d centroids, want 2", len(result.Centroids))
	}
}

func TestBuildOnEmptyDirectoryFailsWithEmptyInput(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.NumClusters = 1

	p := New(cfg)
	if _, err := p.Build(context.Background(), dir); err == nil {
		t.Fatal("expected an error for an empty corpus")
	}
}

func TestBuildNgramMode(t *testing.T) {
	dir := writeDocs(t, map[string]string{
		"a.txt": "the cat sat",
		"b.txt": "the cat ran",
	})

	cfg := config.Default()
	cfg.ByWords = false
	cfg.NgramSize = 2
	cfg.NumClusters = 1
	cfg.MaxIterations = 10

	p := New(cfg)
	result, err := p.Build(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Clusters) != 2 {
		t.Fatalf("got %d assignments, want 2", len(result.Clusters))
	}
}
