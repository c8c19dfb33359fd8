package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/longnd/toystore-service/internal/concurrency"
)

// smoketest drives the running API through the guest-cart flow with a few
// concurrent sessions: add, re-add, fetch, shipping quote, clear.
func main() {
	baseURL := flag.String("base", "http://localhost:8080", "service base URL")
	sessions := flag.Int("sessions", 4, "concurrent guest sessions")
	productID := flag.Int("product", 1, "product id to add")
	region := flag.String("region", "HaNoi", "shipping region to quote")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := get(ctx, client, *baseURL+"/health", ""); err != nil {
		fmt.Fprintf(os.Stderr, "health check failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("health ok")

	var failures int64
	concurrency.SimpleWorkerPool(ctx, *sessions, func(ctx context.Context, idx int) {
		session := uuid.New().String()

		steps := []struct {
			name string
			run  func() error
		}{
			{"add line", func() error {
				return post(ctx, client, *baseURL+"/cart/items", session,
					map[string]int{"product_id": *productID, "quantity": 2})
			}},
			{"re-add line", func() error {
				return post(ctx, client, *baseURL+"/cart/items", session,
					map[string]int{"product_id": *productID, "quantity": 3})
			}},
			{"fetch cart", func() error {
				return get(ctx, client, *baseURL+"/cart", session)
			}},
			{"shipping quote", func() error {
				return get(ctx, client, fmt.Sprintf("%s/shipping/fee?region=%s&subtotal=600000", *baseURL, *region), "")
			}},
			{"clear cart", func() error {
				return del(ctx, client, *baseURL+"/cart", session)
			}},
		}

		for _, step := range steps {
			if err := step.run(); err != nil {
				fmt.Fprintf(os.Stderr, "session %d: %s: %v\n", idx, step.name, err)
				atomic.AddInt64(&failures, 1)
				return
			}
		}
		fmt.Printf("session %d ok\n", idx)
	})

	if failures > 0 {
		fmt.Fprintf(os.Stderr, "%d session(s) failed\n", failures)
		os.Exit(1)
	}
	fmt.Println("smoke test passed")
}

func do(ctx context.Context, client *http.Client, method, url, session string, body interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set("X-Session-Token", session)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s -> %d", method, url, resp.StatusCode)
	}
	return nil
}

func get(ctx context.Context, client *http.Client, url, session string) error {
	return do(ctx, client, http.MethodGet, url, session, nil)
}

func post(ctx context.Context, client *http.Client, url, session string, body interface{}) error {
	return do(ctx, client, http.MethodPost, url, session, body)
}

func del(ctx context.Context, client *http.Client, url, session string) error {
	return do(ctx, client, http.MethodDelete, url, session, nil)
}
