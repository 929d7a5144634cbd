package pipeline

import (
	"strings"
	"testing"
)

func TestKeyDeterminism(t *testing.T) {
	key1 := Key("job description text", DomainCoverLetter, "md", "default")
	key2 := Key("job description text", DomainCoverLetter, "md", "default")

	if key1 != key2 {
		t.Errorf("Expected identical keys, got %s and %s", key1, key2)
	}

	if len(key1) != 64 {
		t.Errorf("Expected 64-char hex digest, got %d chars", len(key1))
	}
}

func TestKeyDistinguishesInputs(t *testing.T) {
	base := Key("job description", DomainCoverLetter, "md", "default")

	tests := []struct {
		name string
		key  string
	}{
		{
			name: "different context",
			key:  Key("other description", DomainCoverLetter, "md", "default"),
		},
		{
			name: "different domain",
			key:  Key("job description", DomainResumeText, "md", "default"),
		},
		{
			name: "different format",
			key:  Key("job description", DomainCoverLetter, "tex", "default"),
		},
		{
			name: "different variant",
			key:  Key("job description", DomainCoverLetter, "md", "backend"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.key == base {
				t.Error("Expected distinct key")
			}
		})
	}
}

func TestKeyBoundedPrefix(t *testing.T) {
	// Contexts identical through the bounded prefix share a key even when
	// they diverge beyond it. This is the documented precision trade-off.
	prefix := strings.Repeat("a", keyContextPrefixLen)

	key1 := Key(prefix+"tail one", DomainResumeText, "md", "default")
	key2 := Key(prefix+"completely different tail", DomainResumeText, "md", "default")

	if key1 != key2 {
		t.Error("Expected contexts differing only beyond the prefix to share a key")
	}

	// But a difference inside the prefix must change the key.
	key3 := Key("b"+prefix[1:], DomainResumeText, "md", "default")
	if key3 == key1 {
		t.Error("Expected contexts differing inside the prefix to have distinct keys")
	}
}

func TestCacheGetPutClear(t *testing.T) {
	cache := NewCache()

	if _, hit := cache.Get("missing"); hit {
		t.Error("Expected miss on empty cache")
	}

	cache.Put("key1", Text("cached resume"))

	value, hit := cache.Get("key1")
	if !hit {
		t.Fatal("Expected hit after Put")
	}

	if value != Text("cached resume") {
		t.Errorf("Expected cached value, got %v", value)
	}

	if cache.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", cache.Len())
	}

	cache.Clear()

	if cache.Len() != 0 {
		t.Errorf("Expected empty cache after Clear, got %d entries", cache.Len())
	}

	if _, hit = cache.Get("key1"); hit {
		t.Error("Expected miss after Clear")
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	cache := NewCache()
	done := make(chan struct{})

	for i := 0; i < 4; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				cache.Put("shared", Text("value"))
				_, _ = cache.Get("shared")
			}
		}()
	}

	for i := 0; i < 4; i++ {
		<-done
	}

	if _, hit := cache.Get("shared"); !hit {
		t.Error("Expected entry to survive concurrent access")
	}
}
