package logging

// ProgressSampler thins copy progress callbacks for a single file down to
// one log line per bucket of completion. Completion is reported once.
type ProgressSampler struct {
	bucketSize float64
	lastBucket int
	done       bool
}

// NewProgressSampler returns a sampler for one copy. A non-positive
// bucketSize means 10 percent.
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether copied of total bytes starts a new bucket. A
// non-positive total counts as complete. A nil sampler logs everything.
func (s *ProgressSampler) ShouldLog(copied, total int64) bool {
	if s == nil {
		return true
	}
	if s.done {
		return false
	}
	if total <= 0 || copied >= total {
		s.done = true
		return true
	}
	bucket := int(float64(copied) * 100 / float64(total) / s.bucketSize)
	if bucket <= s.lastBucket {
		return false
	}
	s.lastBucket = bucket
	return true
}
