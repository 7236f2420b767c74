// Package routeerr defines the structured errors produced by a navigation.
//
// Every failure inside a navigation attempt is classified into a
// *RouteError carrying a code (an HTTP-like status or a symbolic string),
// a human readable message, a timestamp and the original cause:
//
//	err := routeerr.NotFound("/does-not-exist")
//	err.Code  // 404
//	err.Kind  // routeerr.KindNotFound
//
// Classification of arbitrary values is done with Wrap:
//
//	rerr := routeerr.Wrap(err) // already a *RouteError → returned as is
//
// Kinds compare with errors.Is through the kind sentinels:
//
//	errors.Is(rerr, routeerr.ErrNotFound)
package routeerr
