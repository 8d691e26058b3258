package health

import (
	"context"
	"errors"
	"testing"
)

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockProviderChecker struct {
	err error
}

func (m *mockProviderChecker) HealthCheck(_ context.Context) error { return m.err }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockProviderChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["database"] != CheckOK {
		t.Errorf("expected database %q, got %q", CheckOK, r.Checks["database"])
	}
	if r.Checks["provider"] != CheckOK {
		t.Errorf("expected provider %q, got %q", CheckOK, r.Checks["provider"])
	}
}

func TestCheck_DBError(t *testing.T) {
	svc := New(&mockDBPinger{err: errors.New("conn refused")}, &mockProviderChecker{})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks["database"])
	}
	if r.Checks["provider"] != CheckOK {
		t.Errorf("expected provider %q, got %q", CheckOK, r.Checks["provider"])
	}
}

func TestCheck_ProviderError(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockProviderChecker{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["provider"] != CheckError {
		t.Errorf("expected provider %q, got %q", CheckError, r.Checks["provider"])
	}
}

func TestCheck_NoProvider(t *testing.T) {
	svc := New(&mockDBPinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["provider"]; ok {
		t.Error("provider check should be absent when provider is nil")
	}
}

func TestCheck_NoProvider_DBError(t *testing.T) {
	svc := New(&mockDBPinger{err: errors.New("fail")}, nil)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Error("expected database error")
	}
}
