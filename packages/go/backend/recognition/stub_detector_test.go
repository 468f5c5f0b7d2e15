package recognition

import (
	"context"
	"slices"
	"testing"

	"lenslation/packages/go/backend/geometry"
	"lenslation/packages/go/backend/media"
)

func TestStubDetector_Detect(t *testing.T) {
	t.Parallel()

	hola := Region{Text: "Hola", Rect: geometry.Rect{X: 0.1, Y: 0.2, Width: 0.1, Height: 0.05}}
	adios := Region{Text: "Adiós", Rect: geometry.Rect{X: 0.5, Y: 0.5, Width: 0.1, Height: 0.05}}
	detector := NewStubDetector(&StubDetectorConfig{
		Frames:  map[int][]Region{1: {adios}},
		Default: []Region{hola},
	})

	frame, err := media.NewRGBBuffer(4, 4)
	if err != nil {
		t.Fatalf("NewRGBBuffer failed: %v", err)
	}
	ctx := context.Background()

	expected := [][]Region{{hola}, {adios}, {hola}}
	for i, want := range expected {
		seq, err := detector.Detect(ctx, frame)
		if err != nil {
			t.Fatalf("call %d: Detect failed: %v", i, err)
		}
		got := slices.Collect(seq)
		if !slices.Equal(got, want) {
			t.Errorf("call %d: got %+v, want %+v", i, got, want)
		}
	}

	if detector.Calls() != 3 {
		t.Errorf("expected 3 calls, got %d", detector.Calls())
	}
}

func TestStubDetector_ErrorAfter(t *testing.T) {
	t.Parallel()

	detector := NewStubDetector(&StubDetectorConfig{ErrorAfter: 1})
	frame, err := media.NewRGBBuffer(1, 1)
	if err != nil {
		t.Fatalf("NewRGBBuffer failed: %v", err)
	}

	if _, err := detector.Detect(context.Background(), frame); err != nil {
		t.Fatalf("first call should succeed: %v", err)
	}
	if _, err := detector.Detect(context.Background(), frame); err == nil {
		t.Fatal("expected scripted failure on second call")
	}
}

func TestStubDetector_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	frame, _ := media.NewRGBBuffer(1, 1)
	if _, err := NewStubDetector(nil).Detect(ctx, frame); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestStubDetector_Health(t *testing.T) {
	t.Parallel()

	if !NewStubDetector(nil).Health().Healthy {
		t.Error("expected healthy status")
	}
}
