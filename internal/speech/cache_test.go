package speech

import (
	"bytes"
	"os"
	"testing"

	"cookmode/internal/logger"
)

func TestCacheMemoryRoundTrip(t *testing.T) {
	c := NewAudioCache("en-US-AvaNeural", "", false, logger.New(logger.LevelOff, nil))

	if _, ok := c.Get("hello"); ok {
		t.Fatal("empty cache must miss")
	}
	c.Put("hello", []byte{1, 2, 3})
	got, ok := c.Get("hello")
	if !ok || !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Fatalf("expected cached bytes, got %v %v", got, ok)
	}
	if !c.Has("hello") {
		t.Fatal("Has must see the memory entry")
	}
	if c.Has("goodbye") {
		t.Fatal("Has must miss unknown text")
	}
}

func TestCacheKeyIncludesVoice(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	dir := t.TempDir()

	ava := NewAudioCache("en-US-AvaNeural", dir, true, log)
	ava.Put("next step", []byte("ava"))

	// A different voice must not see Ava's audio through the shared dir.
	andrew := NewAudioCache("en-US-AndrewNeural", dir, true, log)
	if _, ok := andrew.Get("next step"); ok {
		t.Fatal("voice change must invalidate the key")
	}
}

func TestCacheDiskLayerSurvivesRestart(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	dir := t.TempDir()

	first := NewAudioCache("v", dir, true, log)
	first.Put("step one", []byte("wav-bytes"))

	// Fresh cache over the same dir, as after a restart.
	second := NewAudioCache("v", dir, true, log)
	got, ok := second.Get("step one")
	if !ok || string(got) != "wav-bytes" {
		t.Fatalf("expected warm start from disk, got %q %v", got, ok)
	}

	// The disk hit is promoted: delete the file and the entry survives.
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one cache file, got %v %v", entries, err)
	}
	os.Remove(dir + "/" + entries[0].Name())
	if _, ok := second.Get("step one"); !ok {
		t.Fatal("disk hit must be promoted to memory")
	}
}

func TestCacheReadOnlyDiskLayer(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	dir := t.TempDir()

	writer := NewAudioCache("v", dir, true, log)
	writer.Put("warm", []byte("old"))

	// diskWrite off: reads the warm entry, never adds files.
	reader := NewAudioCache("v", dir, false, log)
	if _, ok := reader.Get("warm"); !ok {
		t.Fatal("read-only cache must still read the disk layer")
	}
	reader.Put("new line", []byte("new"))
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("read-only cache must not write files, dir has %d entries", len(entries))
	}
	if _, ok := reader.Get("new line"); !ok {
		t.Fatal("read-only cache still caches in memory")
	}
}
