// Package archive plans and writes release zip archives: one per staged
// component (optionally bundling declared companion files) and one combined
// archive carrying the whole staging tree plus the license.
package archive
