// Package page holds the generator screen as an in-memory HTML document.
//
// Regions of the document are addressed with CSS selectors. Asynchronous
// fragment loads take a Ticket with Begin and apply their response with
// CommitHTML; only the most recent ticket of a region may commit, and
// replacing or emptying a region invalidates the tickets of every region it
// contains. Late responses therefore never overwrite newer state, regardless
// of the order in which they arrive.
package page
