package main

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

func TestInputLoopReturnsOnCancelWithBlockedRead(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	defer pr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	app := &chatApp{}

	done := make(chan error, 1)
	go func() { done <- app.inputLoop(ctx, pr) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("inputLoop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("inputLoop did not return after cancellation")
	}
}

func TestInputLoopQuitCommand(t *testing.T) {
	app := &chatApp{}
	err := app.inputLoop(context.Background(), strings.NewReader("/quit\n"))
	if err != nil {
		t.Fatalf("inputLoop: %v", err)
	}
}

func TestInputLoopEOF(t *testing.T) {
	app := &chatApp{}
	err := app.inputLoop(context.Background(), strings.NewReader(""))
	if err != nil {
		t.Fatalf("inputLoop at EOF: %v", err)
	}
}
