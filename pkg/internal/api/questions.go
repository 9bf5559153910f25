package api

import (
	"context"
	"fmt"
	"time"

	localCache "github.com/agoraview/survey-client/pkg/internal/cache"
	"github.com/agoraview/survey-client/pkg/internal/models"
	"github.com/agoraview/survey-client/pkg/internal/session"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
)

const questionsCacheTTL = 5 * time.Minute

func questionsCacheKey(surveyID uint) string {
	return fmt.Sprintf("survey#%d:questions", surveyID)
}

// ListQuestions fetches the ordered question list, with choices inlined.
// Questions are immutable reference data, so they are cached per survey.
func (c *Client) ListQuestions(sctx session.Context, surveyID uint) ([]models.Question, error) {
	ctx := context.Background()

	var marshal *marshaler.Marshaler
	if localCache.S != nil {
		cacheManager := cache.New[any](localCache.S)
		marshal = marshaler.New(cacheManager)
		if val, err := marshal.Get(ctx, questionsCacheKey(surveyID), new([]models.Question)); err == nil {
			return *(val.(*[]models.Question)), nil
		}
	}

	path := "/api/questions/"
	if surveyID > 0 {
		path = fmt.Sprintf("%s?survey_id=%d", path, surveyID)
	}

	var questions []models.Question
	if err := c.getJSON(path, sctx, &questions); err != nil {
		return nil, err
	}

	if marshal != nil {
		_ = marshal.Set(
			ctx,
			questionsCacheKey(surveyID),
			questions,
			store.WithExpiration(questionsCacheTTL),
			store.WithTags([]string{"questions"}),
		)
	}

	return questions, nil
}
