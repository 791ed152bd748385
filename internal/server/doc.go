// Package server exposes the roster split over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Endpoints
//
//	POST /extract   upload one spreadsheet, receive the per-category export summary as JSON
//	GET  /health    liveness probe
//
// The upload is read from the multipart field "planilha" when the request is multipart/form-data,
// otherwise the raw request body is used. The format is sniffed from content unless the "format"
// query parameter is set.
//
// # Middleware
//
// [RequestLogger] logs one line per request, [RateLimit] applies a token bucket shared by all clients,
// and [Recoverer] turns panics into 500 responses.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
