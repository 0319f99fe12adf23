package ply

import (
	"iter"

	"github.com/arloliu/gsplat/gaussian"
)

// Gaussians is an in-memory collection of PLY records.
type Gaussians []Pod

// FromGaussians converts canonical records to PLY records.
func FromGaussians(seq iter.Seq[gaussian.Gaussian]) Gaussians {
	var pods Gaussians
	for g := range seq {
		pods = append(pods, FromGaussian(g))
	}

	return pods
}

// FromSlice converts a slice of canonical records to PLY records.
func FromSlice(gs []gaussian.Gaussian) Gaussians {
	pods := make(Gaussians, len(gs))
	for i := range gs {
		pods[i] = FromGaussian(gs[i])
	}

	return pods
}

// Len returns the number of records.
func (g Gaussians) Len() int {
	return len(g)
}

// All yields every record in canonical form. It can be ranged over repeatedly.
func (g Gaussians) All() iter.Seq[gaussian.Gaussian] {
	return func(yield func(gaussian.Gaussian) bool) {
		for i := range g {
			if !yield(g[i].Gaussian()) {
				return
			}
		}
	}
}
