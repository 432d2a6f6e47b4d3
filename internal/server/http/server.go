package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/kittors/simple-message-service/internal/runtime"
	"github.com/kittors/simple-message-service/internal/server/http/controllers"
	messagesvc "github.com/kittors/simple-message-service/internal/services/messages"
	"github.com/kittors/simple-message-service/internal/ui"
	logpkg "github.com/kittors/simple-message-service/pkg/log"
)

// Server is the HTTP transport: JSON endpoints for push, history, and
// delete, an SSE endpoint for live subscriptions, and the embedded demo
// page at the root.
type Server struct {
	rt  *runtime.Runtime
	srv *http.Server
	lis net.Listener
	svc *messagesvc.Service
}

// New wires the controllers onto a mux and returns the server. The service
// is built here so the HTTP and CLI layers share one construction path.
func New(rt *runtime.Runtime, logger logpkg.Logger) *Server {
	mux := http.NewServeMux()
	svc := messagesvc.NewWithLogger(rt, logger.WithComponent("messages"))
	s := &Server{rt: rt, svc: svc, srv: &http.Server{Handler: cors(mux)}}

	reg := controllers.NewControllerRegistry(rt, svc, logger.WithComponent("http"))
	reg.RegisterAllRoutes(mux)
	mux.Handle("/", ui.Handler())
	return s
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Addr returns the bound listen address, or "" before ListenAndServe.
func (s *Server) Addr() string {
	if s.lis == nil {
		return ""
	}
	return s.lis.Addr().String()
}

func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
