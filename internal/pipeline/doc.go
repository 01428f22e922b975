// Package pipeline orchestrates archive discovery, job planning, sequential
// export, and batch reporting.
//
// A batch runs in three phases:
//
//  1. Discover walks the input directory for .xcarchive bundles.
//  2. Plan builds every export.Job up front so destination directories are
//     allocated deterministically and never shared.
//  3. Run hands each job to a JobRunner in discovery order, records one
//     export.Result per job in a BatchReport and prints the summary.
package pipeline
