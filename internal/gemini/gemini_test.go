package gemini

import "testing"

func TestStrategiesFromEnv_DirectOnly(t *testing.T) {
	t.Setenv("GEMINI_PROXY_URLS", "")
	strategies := StrategiesFromEnv()
	if len(strategies) != 1 || strategies[0].Name != "direct" {
		t.Fatalf("got %+v, want just the direct strategy", strategies)
	}
}

func TestStrategiesFromEnv_ProxiesPreserveOrder(t *testing.T) {
	t.Setenv("GEMINI_PROXY_URLS", "http://proxy-a:8080, http://proxy-b:8080")
	strategies := StrategiesFromEnv()
	if len(strategies) != 3 {
		t.Fatalf("got %d strategies, want 3", len(strategies))
	}
	if strategies[0].Name != "direct" || strategies[0].ProxyURL != "" {
		t.Fatalf("direct must come first: %+v", strategies[0])
	}
	if strategies[1].ProxyURL != "http://proxy-a:8080" || strategies[2].ProxyURL != "http://proxy-b:8080" {
		t.Fatalf("proxy order not preserved: %+v", strategies)
	}
}

func TestStrategiesFromEnv_SkipsEmptyEntries(t *testing.T) {
	t.Setenv("GEMINI_PROXY_URLS", ",http://proxy-a:8080,,")
	strategies := StrategiesFromEnv()
	if len(strategies) != 2 {
		t.Fatalf("got %d strategies, want 2: %+v", len(strategies), strategies)
	}
}
