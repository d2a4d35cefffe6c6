package slideshow

import (
	"math/rand"
	"time"

	"github.com/ManuGH/roadcam/internal/catalog"
)

// Shuffle applies one uniform Fisher-Yates permutation in place. It runs at
// most once per session, when the session is created. A nil rng seeds from
// the wall clock; tests pass a fixed source.
func Shuffle(cams []catalog.Camera, rng *rand.Rand) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	rng.Shuffle(len(cams), func(i, j int) {
		cams[i], cams[j] = cams[j], cams[i]
	})
}
