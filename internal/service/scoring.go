package service

import "github.com/beaconlabs/beacon/internal/model"

// Scorer ranks an engaging account's significance. The formula lives outside
// this service; the pipeline only requires that the score be deterministic
// for a given engagement.
type Scorer interface {
	Score(e *model.Engagement) float64
}

// FollowerScorer is the default scorer: log-free follower weighting with a
// small bump for higher-signal interaction kinds. Deployments with a real
// scoring model replace it at wiring time.
type FollowerScorer struct{}

// Score implements Scorer
func (FollowerScorer) Score(e *model.Engagement) float64 {
	score := float64(e.ActorFollowers)
	switch e.Kind {
	case model.EngagementQuote:
		score *= 1.5
	case model.EngagementReply:
		score *= 1.2
	}
	return score
}
