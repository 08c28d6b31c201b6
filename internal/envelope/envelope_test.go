package envelope

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestBuildDefaults(t *testing.T) {
	resp := New().Data("payload").Build()

	if resp.SchemaVersion != CurrentSchemaVersion {
		t.Errorf("schemaVersion = %q", resp.SchemaVersion)
	}
	if resp.Data != "payload" {
		t.Errorf("data = %v", resp.Data)
	}
	if resp.Meta == nil || resp.Meta.TraceID == "" {
		t.Fatal("expected a trace ID")
	}
	if resp.Error != nil {
		t.Errorf("unexpected error: %v", *resp.Error)
	}
}

func TestTraceIDsAreUnique(t *testing.T) {
	a := New().Build()
	b := New().Build()
	if a.Meta.TraceID == b.Meta.TraceID {
		t.Errorf("trace IDs collide: %s", a.Meta.TraceID)
	}
}

func TestCacheHit(t *testing.T) {
	resp := New().CacheHit("octocat_hello@abc123").Build()
	if resp.Meta.Cache == nil || !resp.Meta.Cache.Hit {
		t.Fatal("expected cache hit")
	}
	if resp.Meta.Cache.Key != "octocat_hello@abc123" {
		t.Errorf("key = %q", resp.Meta.Cache.Key)
	}
}

func TestWithTruncationNoOpWhenNotTruncated(t *testing.T) {
	resp := New().WithTruncation(false, 10, 10, "").Build()
	if resp.Meta.Truncation != nil {
		t.Error("truncation metadata added for untruncated response")
	}

	resp = New().WithTruncation(true, 50, 200, "max-symbols").Build()
	tr := resp.Meta.Truncation
	if tr == nil || !tr.IsTruncated || tr.Shown != 50 || tr.Total != 200 || tr.Reason != "max-symbols" {
		t.Errorf("truncation = %+v", tr)
	}
}

func TestErrorAndWarnings(t *testing.T) {
	resp := New().
		Error(errors.New("boom")).
		Warning("first").
		WarningWithCode("RATE_LIMITED", "second").
		Build()

	if resp.Error == nil || *resp.Error != "boom" {
		t.Errorf("error = %v", resp.Error)
	}
	if len(resp.Warnings) != 2 {
		t.Fatalf("warnings = %+v", resp.Warnings)
	}
	if resp.Warnings[1].Code != "RATE_LIMITED" {
		t.Errorf("warning code = %q", resp.Warnings[1].Code)
	}
}

func TestErrorNilIsNoOp(t *testing.T) {
	resp := New().Error(nil).Build()
	if resp.Error != nil {
		t.Errorf("error = %v", *resp.Error)
	}
}

func TestJSONShape(t *testing.T) {
	resp := New().Data(map[string]string{"text": "hello"}).WithRateLimit(4999, 29).Build()

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"schemaVersion":"1.0"`, `"traceId"`, `"coreRemaining":4999`, `"searchRemaining":29`} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %s in %s", want, s)
		}
	}
	if strings.Contains(s, `"error"`) {
		t.Errorf("empty error serialized: %s", s)
	}
}
