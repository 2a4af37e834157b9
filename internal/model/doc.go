// Package model defines the small set of shared types for fluxcast-backup.
//
// There is no persistent data model: a backup pass only deals with a source
// path, a destination path and the captured result of one rsync run. What
// lives here are the process exit codes and CLIError, the error type that
// carries an exit code from deep inside the runner up to main.
package model
