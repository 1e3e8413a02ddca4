// Package rpc exposes an engine.Engine over JSON-RPC 2.0, the same
// async-request/push-notification shape the teacher's internal/lsp
// package uses for editor requests, repurposed here for scan/search
// jobs instead of definition/reference lookups.
package rpc

import (
	"context"
	"encoding/json"
	"io"
	"log"

	"go.lsp.dev/jsonrpc2"

	"github.com/evanhughes/trigrep/internal/engine"
	"github.com/evanhughes/trigrep/internal/events"
)

// Server adapts an Engine to three request methods (scan, search,
// cancel) and pushes the engine's event stream to the client as seven
// notification methods, one per events.Kind.
type Server struct {
	eng *engine.Engine
}

// NewServer wraps eng for serving over a connection.
func NewServer(eng *engine.Engine) *Server {
	return &Server{eng: eng}
}

// Serve runs the JSON-RPC connection on in/out and forwards engine
// events to the client until ctx is cancelled or the connection closes.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stream := jsonrpc2.NewStream(&readWriteCloser{in, out})
	conn := jsonrpc2.NewConn(stream)

	conn.Go(ctx, s.handler)
	go s.pumpEvents(ctx, conn)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-conn.Done():
		return conn.Err()
	}
}

func (s *Server) handler(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	log.Printf("rpc request: %s", req.Method())

	switch req.Method() {
	case "scan":
		return s.handleScan(ctx, reply, req)
	case "search":
		return s.handleSearch(ctx, reply, req)
	case "cancel":
		s.eng.Cancel()
		return reply(ctx, nil, nil)
	default:
		return reply(ctx, nil, &jsonrpc2.Error{
			Code:    jsonrpc2.MethodNotFound,
			Message: "method not supported: " + req.Method(),
		})
	}
}

func (s *Server) handleScan(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params ScanParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, &jsonrpc2.Error{Code: jsonrpc2.InvalidParams, Message: err.Error()})
	}
	if err := s.eng.Scan(params.Root); err != nil {
		return reply(ctx, nil, &jsonrpc2.Error{Code: jsonrpc2.InternalError, Message: err.Error()})
	}
	return reply(ctx, nil, nil)
}

func (s *Server) handleSearch(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params SearchParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, &jsonrpc2.Error{Code: jsonrpc2.InvalidParams, Message: err.Error()})
	}
	if err := s.eng.Search([]byte(params.Needle)); err != nil {
		return reply(ctx, nil, &jsonrpc2.Error{Code: jsonrpc2.InvalidParams, Message: err.Error()})
	}
	return reply(ctx, nil, nil)
}

// pumpEvents forwards every event the engine emits as the matching
// notification method, in emission order, until ctx is done.
func (s *Server) pumpEvents(ctx context.Context, conn jsonrpc2.Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.eng.Events():
			method, params := notificationFor(ev)
			if err := conn.Notify(ctx, method, params); err != nil {
				log.Printf("notify %s: %v", method, err)
			}
		}
	}
}

func notificationFor(ev events.Event) (string, interface{}) {
	switch ev.Kind {
	case events.InfoKind:
		return "event/info", InfoParams{Text: ev.Text}
	case events.ExceptionKind:
		return "event/exception", ExceptionParams{Text: ev.Text}
	case events.ProgressKind:
		return "event/progress", ProgressParams{Percent: ev.Percent}
	case events.NewTextFileKind:
		return "event/newTextFile", NewTextFileParams{Path: ev.Path}
	case events.IndexingFinishedKind:
		return "event/indexingFinished", struct{}{}
	case events.UpdateResultsKind:
		return "event/updateResults", UpdateResultsParams{Path: ev.Path, Offsets: ev.Offsets}
	case events.SearchingFinishedKind:
		return "event/searchingFinished", struct{}{}
	default:
		return "event/info", InfoParams{Text: "unknown event"}
	}
}

// readWriteCloser wraps a reader and writer into a ReadWriteCloser, the
// same adapter the teacher's LSP server uses to drive jsonrpc2 over
// plain stdio.
type readWriteCloser struct {
	io.Reader
	io.Writer
}

func (rwc *readWriteCloser) Close() error {
	return nil
}
