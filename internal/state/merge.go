package state

// ApplyGame shallow-merges p into s and returns the result. s is not modified;
// the returned value shares no maps or slices with s or p.
func ApplyGame(s GameState, p GamePatch) GameState {
	next := s
	p.Players.apply(&next.Players)
	p.DraftComplete.apply(&next.DraftComplete)
	p.ResultsFinalized.apply(&next.ResultsFinalized)
	p.RosterLockTime.apply(&next.RosterLockTime)
	p.Rankings.apply(&next.Rankings)
	p.Teams.apply(&next.Teams)
	p.Results.apply(&next.Results)
	return next.Clone()
}

func ApplySession(s SessionState, p SessionPatch) SessionState {
	next := s
	p.Token.apply(&next.Token)
	p.TeamName.apply(&next.TeamName)
	p.PlayerCode.apply(&next.PlayerCode)
	p.OwnerName.apply(&next.OwnerName)
	p.ExpiresAt.apply(&next.ExpiresAt)
	return next.Clone()
}

func ApplyCommissioner(s CommissionerState, p CommissionerPatch) CommissionerState {
	next := s
	p.IsCommissioner.apply(&next.IsCommissioner)
	p.LoginTime.apply(&next.LoginTime)
	p.ExpiresAt.apply(&next.ExpiresAt)
	return next.Clone()
}

// MergeResults overlays results onto the game's existing results map.
func MergeResults(s GameState, results map[string]string) GameState {
	next := s.Clone()
	if next.Results == nil {
		next.Results = make(map[string]string, len(results))
	}
	for athlete, finish := range results {
		next.Results[athlete] = finish
	}
	return next
}
