// Package randutil bridges the classic math/rand.Rand used throughout this
// module (to match the teacher's seeded-RNG style) to the math/rand/v2
// Source interface gonum's stat/distmv package expects.
package randutil

import "math/rand"

// V2Source adapts a *rand.Rand to satisfy math/rand/v2.Source.
type V2Source struct{ R *rand.Rand }

// Uint64 implements math/rand/v2.Source.
func (s V2Source) Uint64() uint64 { return s.R.Uint64() }
