// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the command lifecycle: every command runs
// inside the pipeline session, and missing prerequisites are remediated
// before the command is run again. It is decoupled from any specific
// entrypoint like a CLI.
package app
