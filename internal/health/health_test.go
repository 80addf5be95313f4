/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package health

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"craftwire/internal/config"
)

func TestNewChecker(t *testing.T) {
	checker := NewChecker("1.0.0")
	if checker == nil {
		t.Fatal("Expected non-nil checker")
	}
}

func TestRegisterCheck(t *testing.T) {
	checker := NewChecker("1.0.0")

	checker.RegisterCheck("test", func() CheckResult {
		return CheckResult{Status: StatusHealthy}
	})

	response := checker.RunChecks()
	if len(response.Checks) != 1 {
		t.Errorf("Expected 1 check, got %d", len(response.Checks))
	}
}

func TestRunChecksAllHealthy(t *testing.T) {
	checker := NewChecker("1.0.0")

	checker.RegisterCheck("check1", func() CheckResult {
		return CheckResult{Status: StatusHealthy}
	})
	checker.RegisterCheck("check2", func() CheckResult {
		return CheckResult{Status: StatusHealthy}
	})

	response := checker.RunChecks()
	if response.Status != StatusHealthy {
		t.Errorf("Expected status healthy, got %s", response.Status)
	}
}

func TestRunChecksWithUnhealthy(t *testing.T) {
	checker := NewChecker("1.0.0")

	checker.RegisterCheck("healthy", func() CheckResult {
		return CheckResult{Status: StatusHealthy}
	})
	checker.RegisterCheck("unhealthy", func() CheckResult {
		return CheckResult{Status: StatusUnhealthy, Message: "service down"}
	})

	response := checker.RunChecks()
	if response.Status != StatusUnhealthy {
		t.Errorf("Expected status unhealthy, got %s", response.Status)
	}
}

func TestRunChecksWithDegraded(t *testing.T) {
	checker := NewChecker("1.0.0")

	checker.RegisterCheck("healthy", func() CheckResult {
		return CheckResult{Status: StatusHealthy}
	})
	checker.RegisterCheck("degraded", func() CheckResult {
		return CheckResult{Status: StatusDegraded, Message: "high latency"}
	})

	response := checker.RunChecks()
	if response.Status != StatusDegraded {
		t.Errorf("Expected status degraded, got %s", response.Status)
	}
}

func TestIsHealthy(t *testing.T) {
	checker := NewChecker("1.0.0")

	checker.RegisterCheck("check", func() CheckResult {
		return CheckResult{Status: StatusHealthy}
	})

	if !checker.IsHealthy() {
		t.Error("Expected IsHealthy to return true")
	}

	checker.RegisterCheck("bad", func() CheckResult {
		return CheckResult{Status: StatusUnhealthy}
	})

	if checker.IsHealthy() {
		t.Error("Expected IsHealthy to return false")
	}
}

func TestListenerCheck(t *testing.T) {
	check := ListenerCheck(func() bool { return true })
	if result := check(); result.Status != StatusHealthy {
		t.Errorf("Expected healthy, got %s", result.Status)
	}

	check = ListenerCheck(func() bool { return false })
	if result := check(); result.Status != StatusUnhealthy {
		t.Errorf("Expected unhealthy, got %s", result.Status)
	}
}

func TestConnectionsCheck(t *testing.T) {
	tests := []struct {
		name  string
		max   int
		count int
		want  Status
	}{
		{"below limit", 10, 3, StatusHealthy},
		{"at limit", 10, 10, StatusDegraded},
		{"no limit", 0, 5000, StatusHealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConnectionsCheck(tt.max, func() int { return tt.count })()
			if result.Status != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, result.Status)
			}
			if result.Details["connections"] != tt.count {
				t.Errorf("Expected connections detail %d, got %v", tt.count, result.Details["connections"])
			}
		})
	}
}

func TestMemoryCheck(t *testing.T) {
	// Normal usage
	check := MemoryCheck(80.0, func() float64 { return 50.0 })
	result := check()
	if result.Status != StatusHealthy {
		t.Errorf("Expected healthy, got %s", result.Status)
	}

	// High usage
	check = MemoryCheck(80.0, func() float64 { return 90.0 })
	result = check()
	if result.Status != StatusDegraded {
		t.Errorf("Expected degraded, got %s", result.Status)
	}
}

func TestCheckPanicIsUnhealthy(t *testing.T) {
	checker := NewChecker("1.0.0")
	checker.RegisterCheck("boom", func() CheckResult { panic("nope") })

	result, ok := checker.RunCheck("boom")
	if !ok {
		t.Fatal("Expected check to be registered")
	}
	if result.Status != StatusUnhealthy || !strings.Contains(result.Message, "nope") {
		t.Errorf("unexpected result: %+v", result)
	}
	if _, ok := checker.RunCheck("missing"); ok {
		t.Error("Expected missing check to report ok=false")
	}
}

func TestHandlers(t *testing.T) {
	checker := NewChecker("1.0.0")
	var listening atomic.Bool
	listening.Store(true)
	checker.RegisterCheck("listener", ListenerCheck(listening.Load))
	checker.RegisterCheck("memory", MemoryCheck(50, func() float64 { return 75 }))

	srv := httptest.NewServer(NewServer(config.EndpointConfig{}, checker).Handler())
	defer srv.Close()

	get := func(path string) (int, map[string]interface{}) {
		t.Helper()
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Body.Close()
		var body map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
		return resp.StatusCode, body
	}

	code, body := get("/health")
	if code != http.StatusOK || body["status"] != "degraded" || body["version"] != "1.0.0" {
		t.Errorf("/health = %d %v", code, body)
	}
	if code, _ := get("/health/ready"); code != http.StatusOK {
		t.Errorf("degraded should be ready, got %d", code)
	}

	listening.Store(false)
	if code, body := get("/health/ready"); code != http.StatusServiceUnavailable || body["status"] != "unhealthy" {
		t.Errorf("/health/ready = %d %v", code, body)
	}
	if code, _ := get("/health"); code != http.StatusServiceUnavailable {
		t.Errorf("/health = %d, want 503", code)
	}
	if code, _ := get("/health/live"); code != http.StatusOK {
		t.Errorf("/health/live = %d, want 200", code)
	}
}

func TestNames(t *testing.T) {
	checker := NewChecker("1.0.0")
	checker.RegisterCheck("b", ListenerCheck(func() bool { return true }))
	checker.RegisterCheck("a", ListenerCheck(func() bool { return true }))
	if got := strings.Join(checker.Names(), ","); got != "a,b" {
		t.Errorf("Names() = %s, want a,b", got)
	}
}
