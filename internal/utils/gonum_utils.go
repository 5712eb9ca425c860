package utils

import "gonum.org/v1/gonum/mat"

func AddVec(a, b *mat.VecDense) *mat.VecDense {
	if a.Len() != b.Len() {
		panic("Two vectors should have the same length.")
	}

	ret := mat.NewVecDense(a.Len(), nil)
	ret.AddVec(a, b)

	return ret
}

func SubVec(a, b *mat.VecDense) *mat.VecDense {
	if a.Len() != b.Len() {
		panic("Two vectors should have the same length.")
	}

	ret := mat.NewVecDense(a.Len(), nil)
	ret.SubVec(a, b)

	return ret
}

// ScaledVec returns s*a without touching a.
func ScaledVec(s float64, a *mat.VecDense) *mat.VecDense {
	ret := mat.NewVecDense(a.Len(), nil)
	ret.ScaleVec(s, a)

	return ret
}

func CloneVec(a *mat.VecDense) *mat.VecDense {
	ret := mat.NewVecDense(a.Len(), nil)
	ret.CopyVec(a)

	return ret
}

// Centroid averages three equally weighted vectors.
func Centroid(a, b, c *mat.VecDense) *mat.VecDense {
	return ScaledVec(1.0/3.0, AddVec(AddVec(a, b), c))
}
