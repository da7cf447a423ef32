// Package journal persists batch run history in a SQLite database so
// completed work survives restarts and can be reviewed later.
package journal
