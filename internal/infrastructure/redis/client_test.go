package redis

import (
	"context"
	"fmt"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNewClientSuccess(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()

	ctx := context.Background()
	client, err := NewClient(ctx, fmt.Sprintf("redis://%s", s.Addr()))
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestNewClientInvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), "://bad-url")
	if err == nil {
		t.Fatalf("expected error for invalid URL")
	}
}

func TestNewClientPingFailure(t *testing.T) {
	s := miniredis.RunT(t)
	url := fmt.Sprintf("redis://%s", s.Addr())
	s.Close() // close before attempting to connect

	_, err := NewClient(context.Background(), url)
	if err == nil {
		t.Fatalf("expected ping error when server is down")
	}
	if !strings.Contains(err.Error(), s.Addr()) {
		t.Fatalf("expected error to name the address, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	s := miniredis.RunT(t)

	client, err := NewClient(context.Background(), fmt.Sprintf("redis://%s", s.Addr()))
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	defer client.Close()

	check := HealthCheck(client)
	if err := check(context.Background()); err != nil {
		t.Fatalf("expected healthy redis, got %v", err)
	}

	s.Close()

	err = check(context.Background())
	if err == nil {
		t.Fatal("expected health check to fail once redis is down")
	}
	if !strings.Contains(err.Error(), s.Addr()) {
		t.Fatalf("expected error to name the address, got %v", err)
	}
}

func TestNewClientHidesCredentials(t *testing.T) {
	s := miniredis.RunT(t)
	url := fmt.Sprintf("redis://user:s3cret@%s", s.Addr())
	s.Close()

	_, err := NewClient(context.Background(), url)
	if err == nil {
		t.Fatal("expected ping error when server is down")
	}
	if strings.Contains(err.Error(), "s3cret") {
		t.Fatalf("expected password to be kept out of the error, got %v", err)
	}
}
