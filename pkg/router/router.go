package router

import (
	"context"
	"net/http"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)
type MiddlewareFunc func(ctx context.Context) (context.Context, error)
type CloserFunc func(ctx context.Context)

type Router struct {
	ctx context.Context
	mux *http.ServeMux

	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc
}

// New creates a root Router. The given context must carry the configs,
// logger, database, and token engine. Every request context derives from it.
func New(ctx context.Context) *Router {
	return &Router{
		ctx: ctx,
		mux: http.NewServeMux(),
	}
}

// Branch creates a new Router sharing the same mux but with an independent
// middleware chain. Middlewares added to the branch do not affect the parent.
func (r *Router) Branch() *Router {
	return &Router{
		ctx:     r.ctx,
		mux:     r.mux,
		befores: r.befores[:len(r.befores):len(r.befores)],
		afters:  r.afters[:len(r.afters):len(r.afters)],
		closers: r.closers[:len(r.closers):len(r.closers)],
	}
}

// Before registers a middleware running before the handler. If it returns an
// error, the handler is skipped and the error is written to the client.
func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

// After registers a middleware running after the handler, before the
// response is written.
func (r *Router) After(middleware MiddlewareFunc) {
	r.afters = append(r.afters, middleware)
}

// AddCloser registers a function running after the response is written.
func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

func (r *Router) Static(pattern, root string) {
	r.mux.Handle(pattern, http.FileServer(http.Dir(root)))
}

// Handle mounts a plain http.Handler, bypassing the middleware chain.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

func (r *Router) Handler() http.Handler {
	return r.mux
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc(pattern, wrapHandler(r, http.MethodPost, handler))
}
