// Package xcodebuild runs the export delegate (xcodebuild -exportArchive)
// for one job.
//
//   - Build turns a Job into the delegate's argument vector.
//   - Execute runs it as a child process, streaming output line by line to
//     the caller's sink (through pipes, or a pseudo terminal so the tool
//     does not block-buffer) while keeping a tail for error reports.
//   - Classify picks the most useful line out of a failed run's output.
//   - Runner ties these together and turns the outcome into an
//     export.Result: success only when the delegate exits 0 and a .ipa is
//     present in the destination directory.
package xcodebuild
