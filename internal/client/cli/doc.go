// Package cli implements the interactive Heirloom command-line client.
//
// The App type wires the REST API client, the local SQLite cache and the
// terminal prompts together; runREPL dispatches user commands to it. A
// background watcher probes server reachability and flips the App between
// online and offline modes, so locally cached messages stay readable when
// the server is down.
package cli
