// Command splinterbench drives the torn-read stress scenario from the
// specification (one writer hammering a key, many readers racing it) and
// reports the success/retry/corruption tallies.
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AlephTX/splinter/shm"
)

func main() {
	path := flag.String("path", "/dev/shm/splinterbench", "backing object path")
	readers := flag.Int("readers", 31, "concurrent reader goroutines")
	duration := flag.Duration("duration", 5*time.Second, "stress duration")
	flag.Parse()

	os.Remove(*path)
	r, err := shm.Create(*path, 64, 4096)
	if err != nil {
		log.Fatalf("splinterbench: create: %v", err)
	}
	defer r.Close()
	defer os.Remove(*path)

	if err := shm.Set(r, []byte("k"), []byte("seed")); err != nil {
		log.Fatalf("splinterbench: seed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *duration)
	defer cancelTimeout()

	var success, retry, corrupt atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		buf := make([]byte, 4096)
		for gctx.Err() == nil {
			if _, err := rand.Read(buf); err != nil {
				return err
			}
			if err := shm.Set(r, []byte("k"), buf); err != nil {
				log.Printf("writer: %v", err)
			}
		}
		return nil
	})

	for i := 0; i < *readers; i++ {
		g.Go(func() error {
			buf := make([]byte, 4096)
			for gctx.Err() == nil {
				_, err := shm.Get(r, []byte("k"), buf)
				switch {
				case err == nil:
					success.Add(1)
				case errors.Is(err, shm.ErrRetry):
					retry.Add(1)
				default:
					corrupt.Add(1)
				}
			}
			return nil
		})
	}

	_ = g.Wait()
	log.Printf("📊 success=%d retry=%d corrupt=%d", success.Load(), retry.Load(), corrupt.Load())
	if corrupt.Load() != 0 {
		os.Exit(1)
	}
}
