package assets

import "slices"

// TeamResult records which of a team's assets were downloaded.
type TeamResult struct {
	Logo bool
	Kit  bool
}

// Complete reports whether both assets were fetched.
func (r *TeamResult) Complete() bool {
	return r != nil && r.Logo && r.Kit
}

// Report summarizes a FetchAll result.
type Report struct {
	Total   int
	Full    int
	Partial int
	Failed  int
	// FailedTeams lists teams with no result, sorted.
	FailedTeams []string
}

// Summarize counts complete, partial and failed teams.
func Summarize(results map[string]*TeamResult) Report {
	rep := Report{Total: len(results)}
	for team, res := range results {
		switch {
		case res == nil:
			rep.Failed++
			rep.FailedTeams = append(rep.FailedTeams, team)
		case res.Complete():
			rep.Full++
		default:
			rep.Partial++
		}
	}
	slices.Sort(rep.FailedTeams)
	return rep
}
