package routing

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/km-arc/go-inject/framework/container"
	gohttp "github.com/km-arc/go-inject/framework/http"
)

// RequestObserver receives one call per served request.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Router wraps chi.Router and serves handlers looked up in a container.
type Router struct {
	mux      chi.Router
	ctx      container.Context
	logger   *zap.Logger
	observer RequestObserver
}

// Option configures a Router.
type Option func(*Router)

// WithLogger logs every request through logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver reports every request to observer.
func WithObserver(observer RequestObserver) Option {
	return func(r *Router) { r.observer = observer }
}

// New creates a Router with sane defaults (RequestID, RealIP, request logging, Recoverer).
// Component routes resolve their handlers from ctx.
func New(ctx container.Context, opts ...Option) *Router {
	r := &Router{mux: chi.NewRouter(), ctx: ctx, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	r.mux.Use(middleware.RequestID)
	r.mux.Use(middleware.RealIP)
	r.mux.Use(r.logRequests)
	r.mux.Use(middleware.Recoverer)
	r.mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		gohttp.NewResponse(w).NotFound()
	})
	return r
}

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func (r *Router) Get(pattern string, h http.HandlerFunc)    { r.mux.Get(pattern, h) }
func (r *Router) Post(pattern string, h http.HandlerFunc)   { r.mux.Post(pattern, h) }
func (r *Router) Put(pattern string, h http.HandlerFunc)    { r.mux.Put(pattern, h) }
func (r *Router) Delete(pattern string, h http.HandlerFunc) { r.mux.Delete(pattern, h) }

// Mount attaches a plain handler under pattern.
func (r *Router) Mount(pattern string, h http.Handler) { r.mux.Mount(pattern, h) }

// ── Component handlers ───────────────────────────────────────────────────────

// Handle routes method+pattern to the http.Handler bound under ref. The
// handler is looked up on every request, so its scope decides whether a
// request gets a fresh instance.
func (r *Router) Handle(method, pattern string, ref container.Ref) {
	r.mux.Method(method, pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		res := gohttp.NewResponse(w)
		v, ok, err := r.ctx.Get(ref)
		switch {
		case err != nil:
			res.Fail(err)
		case !ok:
			r.logger.Warn("handler not bound", zap.Stringer("ref", ref))
			res.ServerError(fmt.Sprintf("no handler bound for %s", ref))
		default:
			h, isHandler := v.(http.Handler)
			if !isHandler {
				res.ServerError(fmt.Sprintf("%s is not an http.Handler", ref))
				return
			}
			h.ServeHTTP(w, req)
		}
	}))
}

// Component routes method+pattern to the handler bound under T and qualifier.
func Component[T http.Handler](r *Router, method, pattern string, qualifier ...container.Annotation) {
	r.Handle(method, pattern, container.RefOf[T](qualifier...))
}

// ── Groups & Prefixes ────────────────────────────────────────────────────────

// Group creates an inline group sharing the parent's middleware stack.
func (r *Router) Group(fn func(r *Router)) {
	r.mux.Group(func(mx chi.Router) {
		fn(r.with(mx))
	})
}

// Prefix creates a sub-router with a URL prefix.
func (r *Router) Prefix(pattern string, fn func(r *Router)) {
	r.mux.Route(pattern, func(mx chi.Router) {
		fn(r.with(mx))
	})
}

func (r *Router) with(mx chi.Router) *Router {
	return &Router{mux: mx, ctx: r.ctx, logger: r.logger, observer: r.observer}
}

// ── Middleware ───────────────────────────────────────────────────────────────

// Middleware adds one or more middleware to the router.
func (r *Router) Middleware(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

func (r *Router) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		start := time.Now()
		defer func() {
			elapsed := time.Since(start)
			route := req.URL.Path
			if rctx := chi.RouteContext(req.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			r.logger.Info("request",
				zap.String("method", req.Method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Duration("elapsed", elapsed),
				zap.String("request_id", middleware.GetReqID(req.Context())),
			)
			if r.observer != nil {
				r.observer.ObserveRequest(req.Method, route, status, elapsed)
			}
		}()
		next.ServeHTTP(ww, req)
	})
}

// ── Params ───────────────────────────────────────────────────────────────────

// Param extracts a URL param.
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// ── Serve ────────────────────────────────────────────────────────────────────

// ServeHTTP implements http.Handler so Router can be passed to http.ListenAndServe.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the underlying http.Handler (for testing etc.).
func (r *Router) Handler() http.Handler {
	return r.mux
}
