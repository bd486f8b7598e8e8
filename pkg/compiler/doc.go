// Package compiler turns the widget and skin forms into an embeddable widget
// code string by calling the remote compile endpoint.
//
// The request body is the widget form payload followed by one synthetic
// "skin" field carrying the skin form payload, encoded as JSON:
//
//	[{"name":"title","value":"Hello"},{"name":"skin","value":[{"name":"color","value":"red"}]}]
//
// A successful response is {"code": "..."}; an error response is
// {"type": "...", "message": "..."} and surfaces as *ServerError.
package compiler
