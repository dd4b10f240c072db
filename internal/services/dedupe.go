package services

import (
	"time"

	"github.com/soaringjerry/Informa/internal/models"
)

// DedupWindow is the tolerance for treating two legacy submissions as the
// same event.
const DedupWindow = 30 * time.Second

// Dedupe collapses near-duplicate entries of a legacy client-held submission
// log. Two entries are duplicates when name and team match exactly and their
// timestamps are less than DedupWindow apart; the one with more responses is
// kept, and on a tie the earlier kept entry stays.
//
// Server-stored submissions have unique ids and are never passed through
// here.
//
// An incoming entry can fall inside the window of several kept entries at
// once. Those entries are merged into a single survivor at the position of the
// earliest, so no two entries of the result are duplicates of each other and
// Dedupe(Dedupe(xs)) equals Dedupe(xs).
func Dedupe(subs []models.Submission) []models.Submission {
	out := make([]models.Submission, 0, len(subs))
	for _, s := range subs {
		var dups []int
		for i := range out {
			if isDuplicate(out[i], s) {
				dups = append(dups, i)
			}
		}
		if len(dups) == 0 {
			out = append(out, s)
			continue
		}
		winner := out[dups[0]]
		for _, i := range dups[1:] {
			if len(out[i].Responses) > len(winner.Responses) {
				winner = out[i]
			}
		}
		if len(s.Responses) > len(winner.Responses) {
			winner = s
		}
		out[dups[0]] = winner
		for j := len(dups) - 1; j >= 1; j-- {
			out = append(out[:dups[j]], out[dups[j]+1:]...)
		}
	}
	return out
}

func isDuplicate(a, b models.Submission) bool {
	if a.Name != b.Name || a.Team != b.Team {
		return false
	}
	d := a.Timestamp.Sub(b.Timestamp)
	if d < 0 {
		d = -d
	}
	return d < DedupWindow
}
