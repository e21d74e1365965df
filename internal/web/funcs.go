package web

import (
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"

	"github.com/claude/koifit/internal/models"
)

// RestTime formats a rest period given in minutes: 3.0 is "3 min", 1.5 is
// "1 min 30 s", 0.5 is "30 s".
func RestTime(minutes float64) string {
	total := int(math.Round(minutes * 60))
	mins, secs := total/60, total%60
	switch {
	case secs == 0:
		return fmt.Sprintf("%d min", mins)
	case mins == 0:
		return fmt.Sprintf("%d s", secs)
	default:
		return fmt.Sprintf("%d min %d s", mins, secs)
	}
}

// Weight drops the fractional part of whole weights: 20.0 is "20", 20.25 stays "20.25".
func Weight(kg float64) string {
	return strconv.FormatFloat(kg, 'f', -1, 64)
}

// WarmupSets renders the warm-up prescription of a slot. No warm-up ("0" or
// empty) renders as "".
func WarmupSets(s string) string {
	switch strings.TrimSpace(s) {
	case "", "0":
		return ""
	case "1":
		return "Warmup: 1 set"
	}
	return fmt.Sprintf("Warmup: %s sets", s)
}

func restSeconds(minutes float64) int {
	return int(math.Round(minutes * 60))
}

// setNumbers lists 1..n, the working set rows a slot prescribes.
func setNumbers(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// setFor returns the working set with the given number, or nil.
func setFor(sets []models.SetEntry, n int) *models.SetEntry {
	for i := range sets {
		if sets[i].SetNumber == n && !sets[i].IsDrop {
			return &sets[i]
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func isTag(s *string, tag string) bool {
	return s != nil && strings.EqualFold(*s, tag)
}

var funcs = template.FuncMap{
	"restTime":    RestTime,
	"restSeconds": restSeconds,
	"weight":      Weight,
	"warmupSets":  WarmupSets,
	"setNumbers":  setNumbers,
	"setFor":      setFor,
	"deref":       deref,
	"isTag":       isTag,
}
