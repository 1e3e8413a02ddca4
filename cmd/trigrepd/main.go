package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/evanhughes/trigrep/internal/engine"
	"github.com/evanhughes/trigrep/internal/rpc"
)

func main() {
	var (
		rootPath string
		logFile  string
		debug    bool
		poolSize int
	)

	flag.StringVar(&rootPath, "root", "", "Root path to index (defaults to current directory)")
	flag.StringVar(&logFile, "log", "", "Log file path (defaults to stderr)")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.IntVar(&poolSize, "pool-size", 0, "Big-file scan worker pool size (0 sizes it to the number of CPUs)")
	flag.Parse()

	if poolSize == 0 {
		poolSize = runtime.NumCPU()
	}

	if rootPath == "" {
		var err error
		rootPath, err = os.Getwd()
		if err != nil {
			log.Fatalf("failed to get current directory: %v", err)
		}
	}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("failed to open log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	if debug {
		log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	}

	log.Printf("trigrepd starting, root=%s", rootPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	eng, err := engine.New(poolSize)
	if err != nil {
		log.Fatalf("failed to create engine: %v", err)
	}
	defer eng.Close()

	if err := eng.Scan(rootPath); err != nil {
		log.Fatalf("failed to start initial scan: %v", err)
	}

	server := rpc.NewServer(eng)
	if err := server.Serve(ctx, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("rpc server error: %v", err)
	}

	log.Println("trigrepd shutdown complete")
}
