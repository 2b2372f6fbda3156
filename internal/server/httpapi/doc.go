// Package httpapi exposes the Daybook REST surface: signup and token
// login, per-day entry CRUD under /entries, diary export and a liveness
// ping. Routing uses gorilla/mux; every request is access-logged with
// httpsnoop metrics.
package httpapi
