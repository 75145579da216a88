package clickhouse

import (
	"context"
	"net/url"
	"testing"
	"time"
)

func TestBuildDSN(t *testing.T) {
	cfg := ClientConfig{
		Host: "ch.local", Port: 9000, Database: "market", User: "sim", Password: "p@ss",
		DialTimeout: 2 * time.Second, MaxExecTime: 30 * time.Second,
	}
	u, err := url.Parse(buildDSN(cfg))
	if err != nil {
		t.Fatalf("unparseable dsn: %v", err)
	}
	if u.Scheme != "clickhouse" || u.Host != "ch.local:9000" || u.Path != "/market" {
		t.Fatalf("unexpected dsn %s", u)
	}
	if pw, _ := u.User.Password(); pw != "p@ss" {
		t.Fatalf("expected password to round-trip, got %q", pw)
	}
	if u.Query().Get("dial_timeout") != "2s" || u.Query().Get("max_execution_time") != "30" {
		t.Fatalf("unexpected query %s", u.RawQuery)
	}

	cfg.UseHTTP = true
	if u, _ := url.Parse(buildDSN(cfg)); u.Scheme != "http" {
		t.Fatalf("expected http scheme, got %s", u.Scheme)
	}
}

func TestNewClientRequiresHost(t *testing.T) {
	if _, err := NewClient(context.Background()); err == nil {
		t.Fatalf("expected error without host")
	}
}
