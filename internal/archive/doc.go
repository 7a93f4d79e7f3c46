// Package archive builds the application archive embedded into a packaged
// executable and extracts runtime distributions.
//
// Application archives are zip files whose entries are stored without
// compression. Entries are queued in order and only read from disk when the
// archive is finalized; the output appears under its final name only after
// the zip stream has been completely written and closed.
package archive
