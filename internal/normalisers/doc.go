// Package normalisers provides implementations of the Normaliser interface
// for the upload formats the audit accepts, plus the shared text cleanup and
// section detection applied to every normalised document.
//
// Normalisers are registered with the NormaliserRegistry at startup.
package normalisers
