package services

// TranslateEconomicScore buckets an economic score into the five position
// labels. Boundary behavior matters: -7 and -2 fall into the next bucket up,
// 2 and 7 stay in the lower one.
func TranslateEconomicScore(score float64) string {
	switch {
	case score < -7:
		return "보수"
	case score < -2:
		return "약간 보수"
	case score <= 2:
		return "중도"
	case score <= 7:
		return "약간 진보"
	default:
		return "진보"
	}
}

// TranslateSimilarity buckets a similarity percentage into the five distance
// labels, inclusive on the lower edge of each bucket.
func TranslateSimilarity(similarity float64) string {
	switch {
	case similarity >= 80:
		return "매우 가까운 편"
	case similarity >= 60:
		return "가까운 편"
	case similarity >= 40:
		return "가깝지도 멀지도 않은 편"
	case similarity >= 20:
		return "먼 편"
	default:
		return "매우 먼 편"
	}
}
