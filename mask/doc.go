// Package mask converts per-instance RGB segmentation masks into 8-bit label maps
// and verifies that a conversion preserved every instance.
//
// A RawMask encodes one object per distinct color. Assign builds a ColorLabelMap
// for a single image, ordering colors canonically so the same input always yields
// the same LabelMask, and substitutes every pixel in one pass. Black (0,0,0) is the
// background and always maps to label 0. Verify checks the object count and the
// per-object pixel counts of the result against the source.
package mask
