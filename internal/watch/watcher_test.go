package watch

import (
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"
)

// eventually polls cond until it holds or the timeout expires
func eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestFileWatcher_DetectsDocumentsAndFragments(t *testing.T) {
	tmpDir := t.TempDir()
	includeDir := filepath.Join(tmpDir, "include")
	if err := os.MkdirAll(includeDir, 0o755); err != nil {
		t.Fatal(err)
	}

	document := filepath.Join(tmpDir, "system.xml.in")
	fragment := filepath.Join(includeDir, "host.xml.i")
	for _, f := range []string{document, fragment} {
		if err := os.WriteFile(f, []byte("initial"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var mu sync.Mutex
	seen := make(map[string]bool)

	watcher, err := NewFileWatcher(WatcherConfig{Root: tmpDir, Debounce: 30 * time.Millisecond}, func(files []string) error {
		mu.Lock()
		defer mu.Unlock()
		for _, f := range files {
			seen[f] = true
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Stop()

	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	for _, f := range []string{document, fragment, filepath.Join(tmpDir, "notes.txt")} {
		if err := os.WriteFile(f, []byte("modified"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	eventually(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen[document] && seen[fragment]
	}, "expected document and fragment changes to be reported")

	mu.Lock()
	defer mu.Unlock()
	if seen[filepath.Join(tmpDir, "notes.txt")] {
		t.Error("non-definition file should not be reported")
	}
}

func TestFileWatcher_WatchesNewDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	var mu sync.Mutex
	var changes []string

	watcher, err := NewFileWatcher(WatcherConfig{Root: tmpDir, Debounce: 30 * time.Millisecond}, func(files []string) error {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, files...)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Stop()

	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	newDir := filepath.Join(tmpDir, "include")
	if err := os.Mkdir(newDir, 0o755); err != nil {
		t.Fatal(err)
	}
	fragment := filepath.Join(newDir, "late.xml.i")

	// The new directory is added asynchronously; keep touching the fragment
	eventually(t, 2*time.Second, func() bool {
		_ = os.WriteFile(fragment, []byte("x"), 0o644)
		time.Sleep(50 * time.Millisecond)
		mu.Lock()
		defer mu.Unlock()
		for _, c := range changes {
			if c == fragment {
				return true
			}
		}
		return false
	}, "expected change in a newly created directory to be reported")
}

func TestDebouncer_Add(t *testing.T) {
	var mu sync.Mutex
	var called bool
	var files []string

	debouncer := NewDebouncer(50 * time.Millisecond)
	debouncer.SetCallback(func(f []string) {
		mu.Lock()
		defer mu.Unlock()
		called = true
		files = f
	})

	debouncer.Add("b.xml.in")
	debouncer.Add("a.xml.in")
	debouncer.Add("b.xml.in") // Duplicate

	eventually(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return called
	}, "Expected callback to be called")

	mu.Lock()
	defer mu.Unlock()
	if !reflect.DeepEqual(files, []string{"a.xml.in", "b.xml.in"}) {
		t.Errorf("Expected 2 unique sorted files, got %v", files)
	}
}

func TestDebouncer_MultipleFlushes(t *testing.T) {
	var mu sync.Mutex
	var callCount int

	debouncer := NewDebouncer(30 * time.Millisecond)
	debouncer.SetCallback(func(f []string) {
		mu.Lock()
		defer mu.Unlock()
		callCount++
	})

	// First batch
	debouncer.Add("a.xml.in")
	time.Sleep(100 * time.Millisecond)

	// Second batch
	debouncer.Add("b.xml.in")
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if callCount != 2 {
		t.Errorf("Expected 2 callback calls, got %d", callCount)
	}
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	var mu sync.Mutex
	called := false

	debouncer := NewDebouncer(30 * time.Millisecond)
	debouncer.SetCallback(func([]string) {
		mu.Lock()
		defer mu.Unlock()
		called = true
	})

	debouncer.Add("a.xml.in")
	debouncer.Stop()
	debouncer.Add("b.xml.in")
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if called {
		t.Error("Expected no callback after Stop")
	}
}

func TestFileWatcher_ShouldIgnore(t *testing.T) {
	watcher := &FileWatcher{}

	tests := []struct {
		path     string
		expected bool
	}{
		{"defs/system.xml.in", false},
		{"defs/.system.xml.in.swp", true},
		{"defs/system.xml.in~", true},
		{".hidden", true},
		{"defs/include/host.xml.i", false},
	}

	for _, tt := range tests {
		result := watcher.shouldIgnore(tt.path)
		if result != tt.expected {
			t.Errorf("shouldIgnore(%q) = %v, expected %v", tt.path, result, tt.expected)
		}
	}
}

func TestFileWatcher_MatchesPattern(t *testing.T) {
	tests := []struct {
		patterns []string
		path     string
		expected bool
	}{
		{DefaultPatterns, "defs/system.xml.in", true},
		{DefaultPatterns, "defs/include/host.xml.i", true},
		{DefaultPatterns, "defs/README.md", false},
		{[]string{"*.xml"}, "defs/system.xml", true},
		{[]string{"*.xml"}, "defs/system.xml.in", false},
	}

	for _, tt := range tests {
		watcher := &FileWatcher{patterns: tt.patterns}
		result := watcher.matchesPattern(tt.path)
		if result != tt.expected {
			t.Errorf("matchesPattern(%v, %q) = %v, expected %v",
				tt.patterns, tt.path, result, tt.expected)
		}
	}
}

func TestFileWatcher_Stop(t *testing.T) {
	watcher, err := NewFileWatcher(WatcherConfig{Root: t.TempDir()}, func(files []string) error { return nil })
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}

	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	if err := watcher.Stop(); err != nil {
		t.Errorf("Stop() returned error: %v", err)
	}

	// Second stop is a no-op
	if err := watcher.Stop(); err != nil {
		t.Errorf("second Stop() returned error: %v", err)
	}
}

func BenchmarkDebouncer_Add(b *testing.B) {
	debouncer := NewDebouncer(100 * time.Millisecond)
	debouncer.SetCallback(func(files []string) {})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		debouncer.Add("system.xml.in")
	}
}
