package main

import "os"

// osExit wraps os.Exit so tests can intercept process termination.
var osExit = os.Exit
