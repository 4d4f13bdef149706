package tlsroots

import (
	"bytes"
	"context"
	"crypto/tls"
	"path/filepath"
	"testing"
	"time"
)

func TestNewWatcher(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "client.crt")
	keyFile := filepath.Join(dir, "client.key")
	writeKeyPair(t, certFile, keyFile)

	w, err := NewWatcher(certFile, keyFile)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	cert, err := w.GetClientCertificate(nil)
	if err != nil || cert == nil {
		t.Fatalf("GetClientCertificate() = %v, %v", cert, err)
	}
}

func TestNewWatcher_Invalid(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "client.crt")
	keyFile := filepath.Join(dir, "client.key")
	writeFile(t, certFile, []byte("invalid"))
	writeFile(t, keyFile, []byte("invalid"))

	if _, err := NewWatcher(certFile, keyFile); err == nil {
		t.Error("NewWatcher() expected error for invalid pair")
	}
	if _, err := NewWatcher(filepath.Join(dir, "none.crt"), filepath.Join(dir, "none.key")); err == nil {
		t.Error("NewWatcher() expected error for missing pair")
	}
}

func TestWatcher_Apply(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "client.crt")
	keyFile := filepath.Join(dir, "client.key")
	writeKeyPair(t, certFile, keyFile)

	w, err := NewWatcher(certFile, keyFile)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	tc := &tls.Config{Certificates: []tls.Certificate{{}}}
	w.Apply(tc)
	if tc.Certificates != nil {
		t.Error("Apply() should clear static certificates")
	}
	if tc.GetClientCertificate == nil {
		t.Fatal("Apply() did not set GetClientCertificate")
	}
	got, _ := tc.GetClientCertificate(nil)
	want, _ := w.GetClientCertificate(nil)
	if got != want {
		t.Error("GetClientCertificate via tls.Config differs from watcher")
	}
}

func TestWatcher_ReloadKeepsPreviousOnError(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "client.crt")
	keyFile := filepath.Join(dir, "client.key")
	writeKeyPair(t, certFile, keyFile)

	w, err := NewWatcher(certFile, keyFile)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	before, _ := w.GetClientCertificate(nil)

	writeFile(t, certFile, []byte("truncated"))
	if err := w.Reload(); err == nil {
		t.Fatal("Reload() expected error")
	}
	after, _ := w.GetClientCertificate(nil)
	if after != before {
		t.Error("failed Reload() replaced the certificate")
	}
}

func TestWatcher_RunReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "client.crt")
	keyFile := filepath.Join(dir, "client.key")
	writeKeyPair(t, certFile, keyFile)

	w, err := NewWatcher(certFile, keyFile, WithDebounce(0))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	initial, _ := w.GetClientCertificate(nil)
	initialLeaf := leafBytes(initial)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	writeKeyPair(t, certFile, keyFile)

	deadline := time.Now().Add(3 * time.Second)
	for {
		cur, _ := w.GetClientCertificate(nil)
		if !bytes.Equal(leafBytes(cur), initialLeaf) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("certificate was not reloaded after the files changed")
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestWatcher_Debounce(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "client.crt")
	keyFile := filepath.Join(dir, "client.key")
	writeKeyPair(t, certFile, keyFile)

	w, err := NewWatcher(certFile, keyFile, WithDebounce(time.Hour))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.debouncedReload(); err != nil {
		t.Fatalf("first debouncedReload() error = %v", err)
	}
	before, _ := w.GetClientCertificate(nil)

	writeKeyPair(t, certFile, keyFile)
	if err := w.debouncedReload(); err != nil {
		t.Fatalf("second debouncedReload() error = %v", err)
	}
	after, _ := w.GetClientCertificate(nil)
	if after != before {
		t.Error("reload inside the debounce window replaced the certificate")
	}
}
