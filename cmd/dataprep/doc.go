// Command dataprep prepares the 3xM instance segmentation dataset: it resizes
// the rgb and depth images, converts color-coded masks into verified 8-bit
// label images, watches a mask directory for new files and publishes the
// prepared directories to object storage.
package main
