package slideshow

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/ManuGH/roadcam/internal/catalog"
)

func TestShuffleIsPermutation(t *testing.T) {
	cams := make([]catalog.Camera, 50)
	for i := range cams {
		cams[i] = catalog.Camera{ID: string(rune('0' + i%10)) + string(rune('a'+i/10))}
	}
	before := idMultiset(cams)

	Shuffle(cams, rand.New(rand.NewSource(1)))

	after := idMultiset(cams)
	if len(before) != len(after) {
		t.Fatalf("length changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("id multiset changed at %d: %q vs %q", i, before[i], after[i])
		}
	}
}

func TestShuffleDeterministicWithSeed(t *testing.T) {
	a := numberedCameras(20)
	b := numberedCameras(20)

	Shuffle(a, rand.New(rand.NewSource(7)))
	Shuffle(b, rand.New(rand.NewSource(7)))

	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("same seed diverged at %d: %q vs %q", i, a[i].ID, b[i].ID)
		}
	}
}

func TestShuffleActuallyMoves(t *testing.T) {
	cams := numberedCameras(100)
	Shuffle(cams, rand.New(rand.NewSource(3)))

	moved := 0
	for i, c := range cams {
		if c.ID != numberedCameras(100)[i].ID {
			moved++
		}
	}
	if moved == 0 {
		t.Fatal("permutation left every element in place")
	}
}

func numberedCameras(n int) []catalog.Camera {
	cams := make([]catalog.Camera, n)
	for i := range cams {
		cams[i] = catalog.Camera{ID: string(rune('A' + i/26)) + string(rune('a'+i%26))}
	}
	return cams
}

func idMultiset(cams []catalog.Camera) []string {
	ids := make([]string, len(cams))
	for i, c := range cams {
		ids[i] = c.ID
	}
	sort.Strings(ids)
	return ids
}
