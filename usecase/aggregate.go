package usecase

import "postpilot/domain/model"

// AggregateOutcomes merges per-platform outcomes into a PublicationResult.
// Overall success is true iff at least one outcome succeeded; an empty outcome
// set (nothing attempted) is never a success. Pure, no I/O.
func AggregateOutcomes(outcomes []model.PublishOutcome, videoURL, thumbnailURL string) *model.PublicationResult {
	result := &model.PublicationResult{
		Outcomes:     make([]model.PublishOutcome, len(outcomes)),
		VideoURL:     videoURL,
		ThumbnailURL: thumbnailURL,
	}
	copy(result.Outcomes, outcomes)
	for _, o := range outcomes {
		if o.Success {
			result.Success = true
			break
		}
	}
	return result
}
