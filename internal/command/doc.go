// Package command wraps external process invocation behind a synchronous
// run-and-capture API.
//
// Every stage of the pipeline shells out to collaborating tools (the package
// manager, the runtime, the bundled CLI). Run returns a Result with the exit
// code and both output streams; RunChecked turns a non-zero exit into a
// structured *ExitError so failure messages always carry the command line and
// its captured output. Raw exec errors never cross this boundary.
package command
