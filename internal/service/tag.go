package service

import (
	"fmt"
	"math/rand/v2"
)

// maxTagAttempts bounds retries after an asset tag collision.
const maxTagAttempts = 5

// tagNumber returns the numeric part of an asset tag, in [100000, 999999].
// Tests replace it to force collisions.
var tagNumber = func() int {
	return 100000 + rand.IntN(900000)
}

func newAssetTag(prefix string) string {
	return fmt.Sprintf("%s-%06d", prefix, tagNumber())
}
