package monitor

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	// SlotsPerEpoch is the approximate number of slots in a post-warmup epoch,
	// used for skip-rate estimation.
	SlotsPerEpoch = 432_000

	// SlotsPerSecond is the approximate network slot rate, used to project
	// slots onto wall-clock time.
	SlotsPerSecond = 2.5
)

// CalculateSkipRate derives the cumulative credit total and the estimated
// skip-rate percentage from an epoch-credit history of [epoch, credits,
// previousCredits] triples. Only the last entry is considered. Degenerate
// input (empty history, or credits not above previousCredits) yields a zero
// skip rate, never an error.
func CalculateSkipRate(epochCredits [][]int64) (int64, float64) {
	if len(epochCredits) == 0 {
		return 0, 0
	}
	latest := epochCredits[len(epochCredits)-1]
	if len(latest) < 3 {
		return 0, 0
	}
	credits, prevCredits := latest[1], latest[2]
	if credits <= prevCredits {
		return credits, 0
	}
	votedSlots := credits - prevCredits
	voteRate := math.Min(float64(votedSlots)/float64(SlotsPerEpoch), 1)
	return credits, math.Max((1-voteRate)*100, 0)
}

// EpochStartSlot returns the absolute slot at which the target epoch begins.
// The branching encodes the network's warmup schedule: variable-length early
// epochs (approximated as half-size) followed by fixed-length normal epochs.
func EpochStartSlot(
	targetEpoch, currentEpoch, currentAbsoluteSlot, currentSlotIndex, slotsPerEpoch, firstNormalSlot int64,
) int64 {
	switch {
	case targetEpoch == currentEpoch:
		return currentAbsoluteSlot - currentSlotIndex
	case targetEpoch == 0:
		return 0
	case targetEpoch*slotsPerEpoch < firstNormalSlot:
		return targetEpoch * slotsPerEpoch / 2
	default:
		return firstNormalSlot + (targetEpoch-1)*slotsPerEpoch
	}
}

// SlotTime projects an absolute slot onto wall-clock time, assuming the
// constant SlotsPerSecond rate from the current slot at the given instant.
// The result is an estimate only: it drifts from on-chain truth near epoch
// boundaries and during network slowdowns.
func SlotTime(slot, currentSlot int64, now time.Time) time.Time {
	offset := math.Round(float64(slot-currentSlot) / SlotsPerSecond)
	return now.Add(time.Duration(offset) * time.Second)
}

// FormatTimeDelta renders the difference between two unix timestamps as a
// compact human string such as "2d 3h 17m" or "1m 30s ago". Seconds are shown
// only when days and hours are both zero; a delta with no non-zero units is "now".
func FormatTimeDelta(currentTimestamp, targetTimestamp int64) string {
	diff := targetTimestamp - currentTimestamp
	absDiff := diff
	if absDiff < 0 {
		absDiff = -absDiff
	}

	days := absDiff / 86400
	hours := (absDiff % 86400) / 3600
	minutes := (absDiff % 3600) / 60
	seconds := absDiff % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 && days == 0 && hours == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}

	if len(parts) == 0 {
		return "now"
	}
	formatted := strings.Join(parts, " ")
	if diff < 0 {
		return formatted + " ago"
	}
	return formatted
}
