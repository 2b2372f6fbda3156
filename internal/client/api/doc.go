// Package api is the Daybook client's proxy for the remote entry store.
//
// It speaks the server's REST surface: entries are listed, fetched, upserted
// and deleted by date key; signup, login, export and ping round it out. Every
// /entries call carries the bearer token of the current session. Failures
// are returned as errors wrapping the sentinels in package common:
// ErrorNotFound for 404, ErrTransport for network failures and every other
// non-2xx status, with ErrorUnauthorized additionally on 401.
package api
