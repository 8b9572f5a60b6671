package services

const (
	cacheKeyPositions = "positions"
	cacheKeyStats     = "stats:overall"
)

func voteCodeKey(code string) string {
	return "vote:code:" + code
}
