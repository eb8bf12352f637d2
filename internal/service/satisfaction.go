package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/freedom_case_2/opsmetrics/internal/models"
	"github.com/freedom_case_2/opsmetrics/internal/utils"
)

const MaxHighlightedComments = 10

type SatisfactionService struct {
	Surveys SurveyStore
	Logger  zerolog.Logger
}

func (s *SatisfactionService) ComputeSatisfaction(ctx context.Context, window models.Window, siteID string) (models.SatisfactionSummary, error) {
	ctx, span := startSpan(ctx, "satisfaction.compute")
	defer span.End()

	if err := validateWindow(window, false); err != nil {
		return models.SatisfactionSummary{}, err
	}
	surveys, err := s.Surveys.ListCompletedSurveys(ctx, scope(window, siteID))
	if err != nil {
		span.RecordError(err)
		return models.SatisfactionSummary{}, storeErr("list completed surveys", err)
	}
	return Summarize(surveys), nil
}

// Summarize folds completed surveys into averages, a five-tier distribution and
// the first comments found in retrieval order.
func Summarize(surveys []models.Survey) models.SatisfactionSummary {
	summary := models.SatisfactionSummary{Highlights: []models.HighlightedComment{}}
	if len(surveys) == 0 {
		return summary
	}

	var quality, response, attention, overall float64
	for _, sv := range surveys {
		quality += sv.ServiceQuality
		response += sv.ResponseTime
		attention += sv.TechnicianAttention
		overall += sv.OverallAverage
		bucket(&summary.Distribution, sv.OverallAverage)

		if len(summary.Highlights) < MaxHighlightedComments && sv.Comment != nil && strings.TrimSpace(*sv.Comment) != "" {
			summary.Highlights = append(summary.Highlights, models.HighlightedComment{
				CaseNumber:  sv.CaseNumber,
				Score:       sv.OverallAverage,
				Comment:     *sv.Comment,
				RespondedAt: sv.RespondedAt,
			})
		}
	}

	n := float64(len(surveys))
	summary.TotalSurveys = len(surveys)
	summary.AvgServiceQuality = utils.Round2(quality / n)
	summary.AvgResponseTime = utils.Round2(response / n)
	summary.AvgTechnicianAttention = utils.Round2(attention / n)
	summary.AvgOverall = utils.Round2(overall / n)
	return summary
}

func bucket(d *models.ScoreDistribution, score float64) {
	switch {
	case score >= 4.5:
		d.Excellent++
	case score >= 3.5:
		d.VeryGood++
	case score >= 2.5:
		d.Good++
	case score >= 1.5:
		d.Fair++
	default:
		d.Poor++
	}
}
