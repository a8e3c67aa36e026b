// Package reassemble rebuilds logical log entries from sanitized fragments.
//
// Captured fragments carry no record delimiter, so entry boundaries are
// inferred from the shape of each line:
//
//  1. Normalize cuts leading garbage in front of a known keyword.
//  2. Decide classifies a line as noise, a new entry, or a continuation of the
//     previous entry, using canonical prefixes, leading digits and the
//     presence of a DD/DD/DDDD date.
//  3. Repair fixes a handful of recurring decode corruptions.
//
// Reassemble runs all three over a batch. Builder exposes the same merge
// logic incrementally for callers that receive fragments over time.
package reassemble
