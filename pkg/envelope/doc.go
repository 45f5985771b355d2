// Package envelope renders handler results into the JSON envelopes the
// dashboard expects.
//
// Two wire conventions coexist and every route declares which one it uses:
//
//	Convention A: {"success": true, "message": "...", "data": ..., "pagination": {...}}
//	Convention B: {"status": {"success": true, "message": "...", "errorCode": "..."}, "data": ...}
//
// Handlers never build either shape directly. They return a *Reply, the
// canonical internal form, and the route's Convention decides how it is
// rendered. The mapping is:
//
//	Reply.Success    -> success            | status.success
//	Reply.Message    -> message            | status.message
//	Reply.ErrorCode  -> (dropped)          | status.errorCode
//	Reply.Data       -> data               | data
//	Reply.Pagination -> pagination         | data.pagination (data becomes {items, pagination})
//
// Errors returned by handlers are typed (ValidationError, NotFoundError,
// ConflictError, ParseError, UnauthorizedError). FromError converts any
// error into a failed Reply carrying the right HTTP status code.
package envelope
