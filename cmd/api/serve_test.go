package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type events struct {
	mu   sync.Mutex
	list []string
}

func (e *events) add(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.list = append(e.list, s)
}

func (e *events) all() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.list...)
}

func TestServe_AfterShutdownWaitsForInFlightRequests(t *testing.T) {
	var (
		log     events
		started = make(chan struct{})
		release = make(chan struct{})
	)

	srv := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			close(started)
			<-release
			log.add("request finished")
			_, _ = io.WriteString(w, "ok")
		}),
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	served := make(chan error, 1)
	go func() {
		served <- serve(ctx, srv, ln, 5*time.Second, func() { log.add("producer closed") })
	}()

	resp := make(chan *http.Response, 1)
	go func() {
		r, err := http.Get("http://" + ln.Addr().String())
		if err == nil {
			resp <- r
		}
		close(resp)
	}()

	<-started
	cancel()

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, log.all(), "producer closed while a request was in flight")

	close(release)

	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return")
	}

	r, ok := <-resp
	require.True(t, ok)
	defer r.Body.Close()
	assert.Equal(t, http.StatusOK, r.StatusCode)

	assert.Equal(t, []string{"request finished", "producer closed"}, log.all())
}

func TestServe_ServerFailureStillRunsHooks(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	called := false
	err = serve(context.Background(), &http.Server{}, ln, time.Second, func() { called = true })

	assert.Error(t, err)
	assert.True(t, called)
}
