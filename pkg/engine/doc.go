// Package engine is the interception runtime of nspass-mockd.
//
// A Handler decides, per request, whether the mock answers it:
//
//  1. Paths under /__mock are the control API and are always served.
//  2. With interception disabled, the request passes through.
//  3. A path matching a bypass glob passes through.
//  4. A path matching a registered route is answered from the fixture store.
//  5. Anything else follows the unmatched policy: pass through with a
//     warning, or reject with a 404 envelope.
//
// Transport applies the same decision to an in-process http.Client, and
// Server wires the Handler, middleware, background tasks and the
// system-info websocket into one listener.
package engine
