package logging

import "testing"

func TestNewProgressSamplerDefaults(t *testing.T) {
	for _, size := range []float64{0, -5} {
		if s := NewProgressSampler(size); s.bucketSize != 10 || s.lastBucket != -1 {
			t.Fatalf("NewProgressSampler(%v) = %+v", size, s)
		}
	}
}

func TestProgressSamplerBuckets(t *testing.T) {
	const total = 1000
	s := NewProgressSampler(25)
	steps := []struct {
		copied int64
		want   bool
	}{
		{0, true},
		{100, false},
		{249, false},
		{250, true},
		{260, false},
		{700, true},
		{999, false},
		{1000, true},
		{1000, false},
	}
	for _, step := range steps {
		if got := s.ShouldLog(step.copied, total); got != step.want {
			t.Fatalf("ShouldLog(%d) = %v, want %v", step.copied, got, step.want)
		}
	}
}

func TestProgressSamplerEmptyFile(t *testing.T) {
	s := NewProgressSampler(10)
	if !s.ShouldLog(0, 0) {
		t.Fatal("empty file should log completion")
	}
	if s.ShouldLog(0, 0) {
		t.Fatal("completion should log once")
	}
}

func TestProgressSamplerNil(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(1, 2) {
		t.Fatal("nil sampler should always log")
	}
}
