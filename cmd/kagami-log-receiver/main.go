// kagami-log-receiver is a development stand-in for the log archive
// service: it accepts the webhook sink's POSTs and prints them.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

func main() {
	addr := flag.String("addr", ":8099", "listen address for the log receiver")
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("/archive", handleArchive)
	mux.HandleFunc("/", handleArchive)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("log receiver listening on %s (POST JSON to /archive)...", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("receiver error: %v", err)
	}
}

func handleArchive(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	_ = r.Body.Close()

	log.Printf("received archive event: path=%s content-type=%s len=%d\n%s", r.URL.Path, r.Header.Get("Content-Type"), len(body), string(body))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintln(w, `{"status":"ok"}`)
}
