// Package export defines the immutable export job handed to the delegate,
// the method-specific ExportOptions payload, and the per-job result.
//
// A [Builder] turns one discovered archive into a [Job]: it allocates the
// job's destination directory through a naming.CollisionResolver and
// resolves the options variant for the configured method once. The rest of
// the pipeline treats [Options] as opaque and only threads it through to
// the runner, which encodes it with [EncodePlist].
package export
