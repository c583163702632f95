package mask

import (
	"slices"

	apperrors "github.com/xXAI-botXx/3xM/errors"
)

// Verify checks that labels is a faithful conversion of raw: first the number of
// objects, then the per-object pixel counts. It stops at the first failure.
//
// The pixel check only requires every label's pixel count to occur among the source
// color counts. Two colors with equal pixel counts can swap labels and still pass.
func Verify(raw *RawMask, labels *LabelMask) error {
	colorCounts := countsOf(raw.Histogram())
	labelCounts := countsOf(labels.Histogram())

	if err := verifyObjectCount(colorCounts, labelCounts); err != nil {
		return err
	}
	return verifyPixelCounts(colorCounts, labelCounts)
}

// VerifyObjectCount checks that labels holds as many distinct values as raw holds
// distinct colors, background included on both sides.
func VerifyObjectCount(raw *RawMask, labels *LabelMask) error {
	return verifyObjectCount(countsOf(raw.Histogram()), countsOf(labels.Histogram()))
}

// VerifyPixelCounts checks that every label's pixel count occurs among the
// pixel counts of raw's colors.
func VerifyPixelCounts(raw *RawMask, labels *LabelMask) error {
	return verifyPixelCounts(countsOf(raw.Histogram()), countsOf(labels.Histogram()))
}

func verifyObjectCount(colorCounts, labelCounts []int) error {
	if len(colorCounts) != len(labelCounts) {
		return apperrors.NewObjectCountMismatch(len(colorCounts), len(labelCounts))
	}
	return nil
}

func verifyPixelCounts(colorCounts, labelCounts []int) error {
	for _, n := range labelCounts {
		if _, found := slices.BinarySearch(colorCounts, n); !found {
			return apperrors.NewPixelCountMismatch(colorCounts, labelCounts)
		}
	}
	return nil
}

// countsOf returns the histogram's pixel counts in ascending order.
func countsOf[K comparable](hist map[K]int) []int {
	counts := make([]int, 0, len(hist))
	for _, n := range hist {
		counts = append(counts, n)
	}
	slices.Sort(counts)
	return counts
}
