// Package proc stops every running instance of a named process before a
// reset touches the application's state.
//
// A Terminator enumerates matches through a Table, force-kills each one and
// polls until none remain or the retry budget is spent. Running out of
// retries is reported as a *StillRunningError; callers must not mutate the
// application's files while it may still be writing them.
package proc
