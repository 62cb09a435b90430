// Package sources contains the content source implementations and the
// filesystem helpers they share. Each source kind lives in its own
// subpackage and conforms to the driven.ContentSource contract.
package sources
