// Package task compiles the `exec` block of a process into a component body.
//
// Invoking a process does not run its statements inline. The body creates
// one single-use channel per declared output, binds those channels as the
// invocation's outputs and schedules the statements as a runtime task. The
// task waits for the first value of every input channel, evaluates the
// statements in source order and binds each output channel with the value
// of the same name. When the task fails, every output it did not bind is
// closed so downstream readers see an empty channel instead of blocking.
package task
