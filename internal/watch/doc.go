// Package watch re-runs the pipeline whenever watched asset inputs
// change on disk. It monitors input files and directories, debounces
// rapid event bursts, and triggers a fresh batch run per quiet period.
package watch
