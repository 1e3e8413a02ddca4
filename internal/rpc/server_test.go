package rpc

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.lsp.dev/jsonrpc2"

	"github.com/evanhughes/trigrep/internal/engine"
)

func waitForEvent(t *testing.T, mu *sync.Mutex, seen *[]string, method string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		mu.Lock()
		for _, m := range *seen {
			if m == method {
				mu.Unlock()
				return
			}
		}
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", method)
}

func TestServerScanAndSearch(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("abcabcabc"), 0o644); err != nil {
		t.Fatal(err)
	}

	eng, err := engine.New(0)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	defer eng.Close()

	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	srv := NewServer(eng)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go srv.Serve(ctx, serverConn, serverConn)

	client := jsonrpc2.NewConn(jsonrpc2.NewStream(clientConn))

	var (
		mu   sync.Mutex
		seen []string
	)
	client.Go(ctx, func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		mu.Lock()
		seen = append(seen, req.Method())
		mu.Unlock()
		return reply(ctx, nil, nil)
	})

	if _, err := client.Call(ctx, "scan", ScanParams{Root: dir}, nil); err != nil {
		t.Fatalf("scan call: %v", err)
	}
	waitForEvent(t, &mu, &seen, "event/indexingFinished", 5*time.Second)

	if _, err := client.Call(ctx, "search", SearchParams{Needle: "abc"}, nil); err != nil {
		t.Fatalf("search call: %v", err)
	}
	waitForEvent(t, &mu, &seen, "event/updateResults", 5*time.Second)
	waitForEvent(t, &mu, &seen, "event/searchingFinished", 5*time.Second)
}

func TestServerCancel(t *testing.T) {
	eng, err := engine.New(0)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	defer eng.Close()

	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	srv := NewServer(eng)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go srv.Serve(ctx, serverConn, serverConn)

	client := jsonrpc2.NewConn(jsonrpc2.NewStream(clientConn))
	client.Go(ctx, func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		return reply(ctx, nil, nil)
	})

	if _, err := client.Call(ctx, "cancel", nil, nil); err != nil {
		t.Fatalf("cancel call: %v", err)
	}
}
