// Package rsync wraps the rsync command-line tool for fluxcast-backup.
//
// All transfers are performed via os/exec calls to the rsync binary rather
// than a Go reimplementation of the protocol, so the mirror behaves exactly
// like the rsync the user runs by hand (archive mode, --delete, and
// --exclude-from semantics included).
//
// The package provides:
//   - BuildArgs, the fixed argument vector for one mirroring pass
//   - Executor, the seam between callers and the OS process layer
//   - Version/CheckVersion, used by the doctor command
package rsync
