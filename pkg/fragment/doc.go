// Package fragment loads HTML fragments that replace regions of the
// generator page.
//
// HTTPLoader issues GET requests with the request data encoded as query
// parameters, tags each request with an X-Request-ID, and reports failures as
// *Error. FormPolicy returns a bluemonday policy that keeps form markup so
// fetched fragments can be sanitized before injection.
package fragment
