package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"syscall"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"portfolioinsight/internal/config"
	"portfolioinsight/pkg/advisor"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestWatchParentExits(t *testing.T) {
	origGetppid := getppid
	origSleep := sleep
	origExit := exit
	defer func() {
		getppid = origGetppid
		sleep = origSleep
		exit = origExit
	}()

	getppid = func() int { return 1 }
	sleep = func(time.Duration) {}

	done := make(chan struct{})
	exit = func(code int) {
		close(done)
		runtime.Goexit()
	}

	go watchParent(discardLogger())

	select {
	case <-done:
		// ok
	case <-time.After(1 * time.Second):
		t.Fatalf("watchParent did not exit")
	}
}

func TestFlagsOverrideSettings(t *testing.T) {
	s := config.Defaults()
	s.Host = "0.0.0.0"
	s.Port = 9000

	f := cliFlags{dataDir: "/tmp/x", port: 7000, host: "127.0.0.1", set: map[string]bool{"port": true}}
	f.apply(&s)
	if s.Port != 7000 {
		t.Fatalf("expected flag port, got %d", s.Port)
	}
	if s.Host != "0.0.0.0" || s.DataDir != "" {
		t.Fatalf("unset flags must not override: %+v", s)
	}
}

func TestOpenNewsCacheBackends(t *testing.T) {
	ctx := context.Background()
	logger := discardLogger()

	s := config.Defaults()
	cache, closeFn, err := openNewsCache(ctx, s, t.TempDir(), logger)
	if err != nil || cache != nil || closeFn == nil {
		t.Fatalf("memory backend: cache=%v err=%v", cache, err)
	}

	dir := t.TempDir()
	s.News.CacheBackend = config.CacheSQLite
	cache, closeFn, err = openNewsCache(ctx, s, dir, logger)
	if err != nil {
		t.Fatalf("sqlite backend: %v", err)
	}
	sqliteCache, ok := cache.(*advisor.SQLiteNewsCache)
	if !ok {
		t.Fatalf("expected sqlite cache, got %T", cache)
	}
	if sqliteCache.DBPath() != filepath.Join(dir, "news_cache.db") {
		t.Fatalf("unexpected db path %q", sqliteCache.DBPath())
	}
	_ = closeFn()
	_ = sqliteCache.Close()

	mr := miniredis.RunT(t)
	s.News.CacheBackend = config.CacheRedis
	s.News.RedisURL = "redis://" + mr.Addr()
	cache, closeFn, err = openNewsCache(ctx, s, dir, logger)
	if err != nil {
		t.Fatalf("redis backend: %v", err)
	}
	if err := cache.Set(ctx, "k", []advisor.Headline{{Headline: "h"}}, time.Minute); err != nil {
		t.Fatalf("redis set: %v", err)
	}
	if !mr.Exists("portfolioinsight:news:k") {
		t.Fatalf("expected key in redis, have %v", mr.Keys())
	}
	if err := closeFn(); err != nil {
		t.Fatalf("close redis: %v", err)
	}

	s.News.CacheBackend = "memcached"
	if _, _, err := openNewsCache(ctx, s, dir, logger); err == nil {
		t.Fatalf("expected unknown backend error")
	}
}

func TestLLMWriteTimeout(t *testing.T) {
	if got := llmWriteTimeout(0); got != 150*time.Second {
		t.Fatalf("unexpected default %v", got)
	}
	if got := llmWriteTimeout(time.Minute); got != 90*time.Second {
		t.Fatalf("unexpected timeout %v", got)
	}
}

func TestMainLifecycle(t *testing.T) {
	tmp := t.TempDir()
	for _, key := range []string{
		config.EnvConfigPath, config.EnvOpenAIKey, config.EnvAnthropicKey, config.EnvGeminiKey,
		config.EnvFinnhubKey, config.EnvLLMAPIKey, config.EnvNewsCache, config.EnvPort, config.EnvHost,
	} {
		t.Setenv(key, "")
	}
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, ".config"))

	origArgs := os.Args
	origCommandLine := flag.CommandLine
	origDefault := slog.Default()
	defer func() {
		os.Args = origArgs
		flag.CommandLine = origCommandLine
		slog.SetDefault(origDefault)
		config.SetRuntimeDataDir("")
	}()

	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flag.CommandLine.SetOutput(io.Discard)
	os.Args = []string{
		"server",
		"--data-dir", tmp,
		"--port", "0",
		"--host", "127.0.0.1",
	}

	done := make(chan struct{})
	go func() {
		time.Sleep(150 * time.Millisecond)
		if p, err := os.FindProcess(os.Getpid()); err == nil {
			_ = p.Signal(syscall.SIGTERM)
		}
	}()

	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
		// ok
	case <-time.After(3 * time.Second):
		t.Fatalf("main did not exit")
	}

	entries, err := os.ReadDir(filepath.Join(tmp, "logs"))
	if err != nil || len(entries) == 0 {
		t.Fatalf("expected log files in data dir: %v", err)
	}
}
