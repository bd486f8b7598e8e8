// Package generator implements the widget code generator screen: picking a
// widget and skin loads their forms into the page, Generate compiles the
// forms into an embeddable code string, and Decompile turns a code string
// back into populated forms.
//
// Every region that receives asynchronous content is guarded by a page
// ticket. Only the most recently issued request for a region may write to it;
// earlier responses are discarded with ErrSuperseded.
package generator
