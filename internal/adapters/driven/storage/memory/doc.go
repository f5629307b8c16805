// Package memory provides in-process implementations of the audit stores.
// Contents are lost on restart.
package memory
