// Package server provides HTTP routing, middleware, and the endpoint handlers of the migration API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
// Requests matching no registered pattern receive a JSON 404 listing the available routes.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// Endpoint handlers:
//   - [AuthHandler] : administrator verification and session checks
//   - [BackupHandler] : encrypted payload persistence and status lookups
//   - [MigrationHandler] : migration creation, polling, cancellation
//   - [ExportHandler] : text/vCard/media renderings of stored backups
//   - [HealthHandler] : health probe and API index
//
// # Response Shapes
//
// Every endpoint answers with a tagged struct, so success and error bodies are
// statically known. Error statuses follow the shared error taxonomy: bad input
// is 400, a failed session check is 401, policy denials are 403, unknown
// records are 404, finished migrations answer 409 to cancellation.
package server
