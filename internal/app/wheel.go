package app

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"emoji-quiz-service/internal/domain"
	"emoji-quiz-service/internal/identity"
)

const (
	// PaidSpinCost is the fixed star price of a non-free spin.
	PaidSpinCost = 20

	// Spin magnitudes are drawn uniformly from this range of degrees.
	spinMinDegrees = 1720.0
	spinMaxDegrees = 2440.0
)

// DefaultWheelSegments are the wheel's ten prize faces, clockwise from the
// pointer's home position.
var DefaultWheelSegments = []int{100, 25, 250, 10, 500, 50, 150, 20, 1000, 75}

// SegmentIndex maps a final normalized rotation (degrees in [0,360)) to the
// segment under the pointer. The prize is this pure function of the final
// rotation, never a separately drawn value, so the visual landing segment
// and the payout always agree.
func SegmentIndex(normalized float64, segments int) int {
	width := 360.0 / float64(segments)
	adjusted := math.Mod(360-normalized+width/2, 360)
	return int(math.Floor(adjusted/width)) % segments
}

// WheelService runs the reward wheel: a daily-gated free spin and a paid
// spin debited in stars.
type WheelService struct {
	profiles ProfileRepository
	segments []int
	settle   time.Duration
	now      func() time.Time

	mu       sync.Mutex
	rnd      *rand.Rand
	rotation map[string]float64
	inFlight map[string]struct{}
}

// WheelOption tweaks a WheelService at construction.
type WheelOption func(*WheelService)

// WithWheelClock overrides the wheel clock (test hook).
func WithWheelClock(now func() time.Time) WheelOption {
	return func(w *WheelService) { w.now = now }
}

// WithWheelRand seeds the rotation draw deterministically (test hook).
func WithWheelRand(rnd *rand.Rand) WheelOption {
	return func(w *WheelService) { w.rnd = rnd }
}

// WithSettleDelay sets how long a spin settles before the prize is read off.
func WithSettleDelay(d time.Duration) WheelOption {
	return func(w *WheelService) { w.settle = d }
}

func NewWheelService(profiles ProfileRepository, segments []int, opts ...WheelOption) *WheelService {
	if len(segments) == 0 {
		segments = DefaultWheelSegments
	}
	w := &WheelService{
		profiles: profiles,
		segments: segments,
		now:      time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		rotation: make(map[string]float64),
		inFlight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Segments returns the wheel's prize faces in pointer order.
func (w *WheelService) Segments() []int {
	out := make([]int, len(w.segments))
	copy(out, w.segments)
	return out
}

// Spin draws a rotation, settles, and pays out the segment under the
// pointer. A free spin requires the user not to have spun today; a paid spin
// debits PaidSpinCost stars before the wheel moves. Only one spin may be in
// flight per user; concurrent requests are rejected, not queued.
//
// The points credit and the free-spin timestamp are two sequential writes,
// not one transaction; the timestamp is only stamped after the credit
// succeeds so a consumed free spin is never recorded without its payout.
func (w *WheelService) Spin(ctx context.Context, free bool) (domain.SpinResult, error) {
	userID, err := identity.UserID(ctx)
	if err != nil {
		return domain.SpinResult{}, err
	}

	w.mu.Lock()
	if _, busy := w.inFlight[userID]; busy {
		w.mu.Unlock()
		return domain.SpinResult{}, domain.ErrSpinInFlight
	}
	w.inFlight[userID] = struct{}{}
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		delete(w.inFlight, userID)
		w.mu.Unlock()
	}()

	var profile domain.UserProfile
	if err := retryStore(func() error {
		var err error
		profile, err = w.profiles.Get(ctx, userID)
		return err
	}); err != nil {
		return domain.SpinResult{}, err
	}

	now := w.now()
	if free {
		if !profile.LastFreeSpin.IsZero() && domain.SameDay(profile.LastFreeSpin, now) {
			return domain.SpinResult{}, domain.ErrAlreadySpunToday
		}
	} else {
		if profile.Stars < PaidSpinCost {
			return domain.SpinResult{}, domain.ErrInsufficientFunds
		}
		if err := retryStore(func() error {
			return w.profiles.AddStars(ctx, userID, -PaidSpinCost)
		}); err != nil {
			return domain.SpinResult{}, err
		}
	}

	normalized := w.advanceRotation(userID)
	if w.settle > 0 {
		select {
		case <-time.After(w.settle):
		case <-ctx.Done():
			return domain.SpinResult{}, ctx.Err()
		}
	}

	index := SegmentIndex(normalized, len(w.segments))
	result := domain.SpinResult{
		SegmentIndex: index,
		PrizeValue:   w.segments[index],
		FreeSpin:     free,
	}

	if err := retryStore(func() error {
		return w.profiles.AddPoints(ctx, userID, result.PrizeValue)
	}); err != nil {
		return domain.SpinResult{}, err
	}
	if free {
		if err := retryStore(func() error {
			return w.profiles.SetLastFreeSpin(ctx, userID, now)
		}); err != nil {
			return domain.SpinResult{}, err
		}
	}
	return result, nil
}

// advanceRotation adds a fresh random magnitude to the user's cumulative
// rotation and returns the new rotation normalized to [0,360).
func (w *WheelService) advanceRotation(userID string) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	magnitude := spinMinDegrees + w.rnd.Float64()*(spinMaxDegrees-spinMinDegrees)
	w.rotation[userID] += magnitude
	return math.Mod(w.rotation[userID], 360)
}
