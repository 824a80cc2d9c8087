package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/libp2p/go-reuseport"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Listen opens n TCP listeners sharing addr via SO_REUSEPORT. If addr has
// port 0, all listeners share the port chosen for the first one.
func Listen(addr string, n int) ([]net.Listener, error) {
	if n <= 1 {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, err
		}
		return []net.Listener{ln}, nil
	}
	lns := make([]net.Listener, 0, n)
	for i := 0; i != n; i++ {
		ln, err := reuseport.Listen("tcp", addr)
		if err != nil {
			for _, l := range lns {
				l.Close()
			}
			return nil, err
		}
		if i == 0 {
			addr = ln.Addr().String()
		}
		lns = append(lns, ln)
	}
	return lns, nil
}

// Serve serves h on every listener, one goroutine each, until ctx is done.
func Serve(ctx context.Context, log *zap.Logger, h http.Handler, lns []net.Listener) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, ln := range lns {
		log.Info("server listening via HTTP", zap.Stringer("local address", ln.Addr()))
		g.Go(func() error {
			err := srv.Serve(ln)
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
